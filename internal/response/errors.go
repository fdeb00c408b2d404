package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session / exam flow ───────────────────────────────────────────
	ErrExamNotActive     ErrCode = "EXAM_NOT_ACTIVE"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrAlreadyTaken      ErrCode = "ALREADY_TAKEN"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrUnanswered        ErrCode = "QUESTION_UNANSWERED"
	ErrInvalidOption     ErrCode = "INVALID_OPTION"
	ErrSessionExpired    ErrCode = "SESSION_EXPIRED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid username or password."
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrExamNotActive:
		return "This exam is not currently available."
	case ErrNoQuestions:
		return "This exam has no questions yet."
	case ErrAlreadyTaken:
		return "Access denied: you have already taken this exam."
	case ErrInvalidTransition:
		return "This action is not allowed in the current session state."
	case ErrUnanswered:
		return "Please answer the current question before continuing."
	case ErrInvalidOption:
		return "The selected option does not exist."
	case ErrSessionExpired:
		return "Your session has expired. Please start again."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
