// Package logger provides structured logging for testkit using zerolog.
//
// It supports JSON and console output, per-instance log levels, and
// component-scoped loggers with structured fields. Test fixtures use
// NewDebug to get a debug-level sink that writes wherever the test wants,
// io.Discard by default.
//
// # Usage
//
//	log := logger.NewDebug("orders-api", os.Stderr)
//	log.Info("operation completed", logger.Fields("key", "value"))
package logger
