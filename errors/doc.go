// Package errors provides the structured error type used across testkit.
//
// An AppError carries a machine-readable code and the HTTP status a host
// should answer with. Two AppErrors match under errors.Is when their codes
// match, so callers can test for a category without string matching:
//
//	if errors.Is(err, apperrors.NotFound("service", "")) { ... }
package errors
