package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Request ───────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrSurveyNotFound ErrCode = "SURVEY_NOT_FOUND"

	// ─── Survey definition ─────────────────────────────────────────────
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrTooManyQuestions    ErrCode = "TOO_MANY_QUESTIONS"
	ErrTooManyOptions      ErrCode = "TOO_MANY_OPTIONS"
	ErrDuplicateQuestion   ErrCode = "DUPLICATE_QUESTION"
	ErrInvalidQuestionType ErrCode = "INVALID_QUESTION_TYPE"
	ErrInvalidRatingBounds ErrCode = "INVALID_RATING_BOUNDS"

	// ─── Submission ────────────────────────────────────────────────────
	ErrMissingRequiredAnswer ErrCode = "MISSING_REQUIRED_ANSWER"
	ErrUnknownQuestion       ErrCode = "UNKNOWN_QUESTION"
	ErrDuplicateAnswer       ErrCode = "DUPLICATE_ANSWER"
	ErrTypeMismatch          ErrCode = "TYPE_MISMATCH"
	ErrInvalidOption         ErrCode = "INVALID_OPTION"
	ErrOutOfRange            ErrCode = "OUT_OF_RANGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Request ───────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrSurveyNotFound:
		return "Survey not found."

	// ─── Survey definition ─────────────────────────────────────────────
	case ErrNoQuestions:
		return "A survey needs at least one question."
	case ErrTooManyQuestions:
		return "The survey has too many questions."
	case ErrTooManyOptions:
		return "A question has too many options."
	case ErrDuplicateQuestion:
		return "Question IDs must be unique within a survey."
	case ErrInvalidQuestionType:
		return "Unsupported question type."
	case ErrInvalidRatingBounds:
		return "min_rating must not exceed max_rating."

	// ─── Submission ────────────────────────────────────────────────────
	case ErrMissingRequiredAnswer:
		return "A required question was not answered."
	case ErrUnknownQuestion:
		return "The answer refers to a question not in this survey."
	case ErrDuplicateAnswer:
		return "A question was answered more than once."
	case ErrTypeMismatch:
		return "The answer does not match the question type."
	case ErrInvalidOption:
		return "The answer is not one of the question's options."
	case ErrOutOfRange:
		return "The rating is outside the allowed range."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
