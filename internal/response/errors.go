package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation         ErrCode = "VALIDATION_ERROR"
	ErrInvalidID          ErrCode = "INVALID_ID"
	ErrValidationMismatch ErrCode = "VALIDATION_MISMATCH"
	ErrIndexOutOfRange    ErrCode = "INDEX_OUT_OF_RANGE"

	// ─── Attempt flow ──────────────────────────────────────────────────
	ErrLoadFailed       ErrCode = "LOAD_FAILED"
	ErrSaveFailed       ErrCode = "SAVE_FAILED"
	ErrResultFailed     ErrCode = "RESULT_FAILED"
	ErrResultPending    ErrCode = "RESULT_PENDING"
	ErrAttemptNotFound  ErrCode = "ATTEMPT_NOT_FOUND"
	ErrAttemptCompleted ErrCode = "ATTEMPT_COMPLETED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An attempt token is required."
	case ErrTokenInvalid:
		return "The attempt token is invalid or has expired."
	case ErrForbidden:
		return "This token does not grant access to the requested attempt."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrValidationMismatch:
		return "The answer shape does not match the question type."
	case ErrIndexOutOfRange:
		return "The question index is outside the attempt."

	// ─── Attempt flow ──────────────────────────────────────────────────
	case ErrLoadFailed:
		return "Failed to load the test. Please return to your dashboard and try again."
	case ErrSaveFailed:
		return "Failed to save your answer. It is kept locally — please try again."
	case ErrResultFailed:
		return "Failed to compute the final result. Please retry submission."
	case ErrResultPending:
		return "The final result is not available yet."
	case ErrAttemptNotFound:
		return "No live attempt exists for this test."
	case ErrAttemptCompleted:
		return "This attempt is already completed."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
