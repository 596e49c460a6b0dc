// Package errors provides the classified error primitives used across the
// enhancement pipeline.
//
// Errors are built through a fluent builder and carry a category (config,
// parse, enhance, render, state, ...), a severity, a retry strategy and
// structured context. Adapters translate classifications into CLI exit codes
// and HTTP status codes so presentation stays consistent across frontends.
//
// Example:
//
//	err := errors.WrapError(cause, errors.CategoryParse, "parse page").
//		WithContext("path", pagePath).
//		Build()
package errors
