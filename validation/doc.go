// Package validation validates configuration structs with go-playground
// struct tags and reports failures as *errors.AppError.
package validation
