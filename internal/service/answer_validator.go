package service

import (
	"slices"

	"github.com/stemsi/polly-backend/internal/model"
)

// ValidateAnswers checks a submission against the survey's questions.
//
// Required questions are checked first. Then each answer, in submission
// order, must name a question of the survey, only once, with a value of the
// shape its question type expects. The first failure is returned.
func ValidateAnswers(survey *model.Survey, answers []model.Answer) error {
	questions := make(map[string]model.Question, len(survey.Questions))
	for _, q := range survey.Questions {
		if _, seen := questions[q.ID]; !seen {
			questions[q.ID] = q
		}
	}

	answered := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = struct{}{}
	}

	for _, q := range survey.Questions {
		if _, ok := answered[q.ID]; q.Required && !ok {
			return invalid(RuleMissingRequiredAnswer, q.ID, "required question '%s' was not answered", q.Text)
		}
	}

	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			return invalid(RuleUnknownQuestion, a.QuestionID, "question with ID %s not found in survey", a.QuestionID)
		}
		if _, dup := seen[a.QuestionID]; dup {
			return invalid(RuleDuplicateAnswer, a.QuestionID, "question %s was answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}

		if err := checkValue(q, a.Value); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(q model.Question, v model.AnswerValue) error {
	if v.IsZero() {
		return invalid(RuleTypeMismatch, q.ID, "answer value missing for question %s", q.ID)
	}

	switch q.Type {
	case model.QuestionTypeText:
		if _, ok := v.Text(); !ok {
			return invalid(RuleTypeMismatch, q.ID, "text answer expected for question %s", q.ID)
		}

	case model.QuestionTypeSingleChoice:
		if len(q.Options) == 0 {
			return nil
		}
		if s, ok := v.Text(); !ok || !slices.Contains(q.Options, s) {
			return invalid(RuleInvalidOption, q.ID, "invalid option '%s' for question %s", stringify(v), q.ID)
		}

	case model.QuestionTypeMultipleChoice:
		picked, ok := v.List()
		if !ok {
			return invalid(RuleTypeMismatch, q.ID, "list of options expected for question %s", q.ID)
		}
		if len(q.Options) == 0 {
			return nil
		}
		for _, p := range picked {
			if !slices.Contains(q.Options, p) {
				return invalid(RuleInvalidOption, q.ID, "invalid option '%s' for question %s", p, q.ID)
			}
		}

	case model.QuestionTypeRating:
		n, ok := v.Number()
		if !ok {
			return invalid(RuleTypeMismatch, q.ID, "numeric value expected for question %s", q.ID)
		}
		lo, hi := q.RatingBounds()
		if n < float64(lo) || n > float64(hi) {
			return invalid(RuleOutOfRange, q.ID, "rating must be between %d and %d", lo, hi)
		}

	case model.QuestionTypeYesNo:
		if _, ok := v.Bool(); ok {
			return nil
		}
		if s, ok := v.Text(); ok && (s == "yes" || s == "no") {
			return nil
		}
		return invalid(RuleTypeMismatch, q.ID, "yes/no answer expected for question %s", q.ID)

	default:
		return invalid(RuleInvalidQuestionType, q.ID, "question %s has unsupported type %q", q.ID, q.Type)
	}
	return nil
}
