package service

import (
	"errors"
	"fmt"
)

// ErrSurveyNotFound is returned when a survey id is not in the store.
var ErrSurveyNotFound = errors.New("survey not found")

// ValidationRule names the contract a rejected survey or submission broke.
type ValidationRule string

const (
	// Submission rules.
	RuleMissingRequiredAnswer ValidationRule = "MISSING_REQUIRED_ANSWER"
	RuleUnknownQuestion       ValidationRule = "UNKNOWN_QUESTION"
	RuleDuplicateAnswer       ValidationRule = "DUPLICATE_ANSWER"
	RuleTypeMismatch          ValidationRule = "TYPE_MISMATCH"
	RuleInvalidOption         ValidationRule = "INVALID_OPTION"
	RuleOutOfRange            ValidationRule = "OUT_OF_RANGE"

	// Survey creation rules.
	RuleNoQuestions         ValidationRule = "NO_QUESTIONS"
	RuleTooManyQuestions    ValidationRule = "TOO_MANY_QUESTIONS"
	RuleTooManyOptions      ValidationRule = "TOO_MANY_OPTIONS"
	RuleDuplicateQuestion   ValidationRule = "DUPLICATE_QUESTION"
	RuleInvalidQuestionType ValidationRule = "INVALID_QUESTION_TYPE"
	RuleInvalidRatingBounds ValidationRule = "INVALID_RATING_BOUNDS"
)

// ValidationError rejects a whole survey draft or response submission.
type ValidationError struct {
	Rule       ValidationRule
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(rule ValidationRule, questionID, format string, args ...any) *ValidationError {
	return &ValidationError{
		Rule:       rule,
		QuestionID: questionID,
		Message:    fmt.Sprintf(format, args...),
	}
}

func surveyNotFound(id fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrSurveyNotFound, id)
}
