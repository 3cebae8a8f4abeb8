// Package errors provides the error taxonomy of the iockit container.
// Every failure surfaced by registration or resolution is an *AppError with a
// machine-readable code, a retryable flag, and structured details naming the
// definitions involved.
package errors
