package errors

import (
	stderrors "errors"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &AppError{Code: code})
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// CyclePath returns the cycle carried by a CYCLIC_DEPENDENCY error, or nil.
func CyclePath(err error) []string {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return nil
		}
		if appErr.Code == ErrCodeCyclicDependency {
			cycle, _ := appErr.Details[DetailCycle].([]string)
			return cycle
		}
		err = appErr.Cause
	}
	return nil
}

// DefinitionOf returns the definition name recorded on the outermost AppError, or "".
func DefinitionOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		name, _ := appErr.Details[DetailDefinition].(string)
		return name
	}
	return ""
}
