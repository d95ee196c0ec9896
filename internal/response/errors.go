package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation   ErrCode = "VALIDATION_ERROR"
	ErrInvalidID    ErrCode = "INVALID_ID"
	ErrInvalidQuery ErrCode = "INVALID_QUERY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrRouteNotFound    ErrCode = "ROUTE_NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrInvalidReference ErrCode = "INVALID_REFERENCE"
	ErrRequiredRelation ErrCode = "REQUIRED_RELATION"
	ErrNullConstraint   ErrCode = "NULL_CONSTRAINT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrWriteRateExceeded ErrCode = "WRITE_RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
	ErrDatabase           ErrCode = "DATABASE_ERROR"
	ErrInternal           ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns the default human-readable message for a code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed."
	case ErrInvalidID:
		return "Invalid id, expected a positive integer."
	case ErrInvalidQuery:
		return "Invalid query parameters."

	case ErrNotFound:
		return "Record not found."
	case ErrRouteNotFound:
		return "Route not found."
	case ErrConflict:
		return "Duplicate entry."
	case ErrInvalidReference:
		return "Invalid reference."
	case ErrRequiredRelation:
		return "A required relation is missing."
	case ErrNullConstraint:
		return "A required field is missing."

	case ErrRateLimitExceeded:
		return "Too many requests from this IP, please try again later."
	case ErrWriteRateExceeded:
		return "Too many write operations, please slow down."

	case ErrServiceUnavailable:
		return "Database unavailable, please try again later."
	case ErrDatabase:
		return "Database error."
	case ErrInternal:
		return "Internal server error."
	default:
		return "Unexpected error."
	}
}
