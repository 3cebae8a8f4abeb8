package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors
const (
	// ErrCodeDuplicateDefinition indicates a name is already registered.
	ErrCodeDuplicateDefinition ErrorCode = "DUPLICATE_DEFINITION"
	// ErrCodeInvalidDefinition indicates a definition cannot be registered as given.
	ErrCodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"
)

// Resolution errors
const (
	// ErrCodeUnknownDependency indicates a requested or required name has no definition.
	ErrCodeUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"
	// ErrCodeCyclicDependency indicates the dependency graph contains a cycle.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
	// ErrCodeAmbiguousBinding indicates several definitions match a role or type lookup.
	ErrCodeAmbiguousBinding ErrorCode = "AMBIGUOUS_BINDING"
	// ErrCodeTypeMismatch indicates an instance is not of the requested Go type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Construction errors
const (
	// ErrCodeFactoryFailed indicates a user-supplied factory returned an error or panicked.
	ErrCodeFactoryFailed ErrorCode = "FACTORY_FAILED"
)

// Lifecycle and input errors
const (
	// ErrCodeContainerClosed indicates the container has been torn down.
	ErrCodeContainerClosed ErrorCode = "CONTAINER_CLOSED"
	// ErrCodeInvalidInput indicates configuration or input failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// A failed factory is never cached, so the next lookup builds again.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeFactoryFailed:       true,
	ErrCodeDuplicateDefinition: false,
	ErrCodeUnknownDependency:   false,
	ErrCodeCyclicDependency:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
