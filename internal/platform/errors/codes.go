// Package errors provides structured error handling for the social ledger.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lifecycle errors
	CodeAlreadyInitialized Code = "ALREADY_INITIALIZED"
	CodeNotInitialized     Code = "NOT_INITIALIZED"

	// Indexed relation errors
	CodeOutOfRange        Code = "OUT_OF_RANGE"
	CodeCounterOverflow   Code = "COUNTER_OVERFLOW"
	CodeStoreInconsistent Code = "STORE_INCONSISTENT"

	// Social graph errors
	CodeSelfFollowNotAllowed Code = "SELF_FOLLOW_NOT_ALLOWED"

	// Caller errors
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// Category groups codes by how a caller should react to them.
type Category string

const (
	CategoryInvalidArgument    Category = "invalid_argument"
	CategoryFailedPrecondition Category = "failed_precondition"
	CategoryOutOfRange         Category = "out_of_range"
	CategoryPermissionDenied   Category = "permission_denied"
	CategoryInternal           Category = "internal"
)

// Category maps domain codes to caller-facing categories.
func (c Code) Category() Category {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidArgument,
		CodeSelfFollowNotAllowed:
		return CategoryInvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeAlreadyInitialized,
		CodeNotInitialized,
		CodeCounterOverflow:
		return CategoryFailedPrecondition

	case CodeOutOfRange:
		return CategoryOutOfRange

	case CodeUnauthorized:
		return CategoryPermissionDenied

	default:
		return CategoryInternal
	}
}
