// Package errors defines error types for the CLI transport.
//
// This package provides structured error types that wrap the failure
// scenarios of driving the Claude CLI as a subprocess. All error types
// support error unwrapping and can be checked using errors.Is, errors.As,
// and errors.AsType.
package errors
