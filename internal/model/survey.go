package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeYesNo          QuestionType = "yes_no"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeSingleChoice, QuestionTypeMultipleChoice,
		QuestionTypeRating, QuestionTypeYesNo:
		return true
	}
	return false
}

const (
	DefaultMinRating = 1
	DefaultMaxRating = 5
)

// Question is a single prompt within a survey.
type Question struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Required  bool         `json:"required"`
	Options   []string     `json:"options"`
	MinRating *int         `json:"min_rating"`
	MaxRating *int         `json:"max_rating"`
}

// RatingBounds returns the inclusive rating range, falling back to 1..5.
func (q Question) RatingBounds() (int, int) {
	lo, hi := DefaultMinRating, DefaultMaxRating
	if q.MinRating != nil {
		lo = *q.MinRating
	}
	if q.MaxRating != nil {
		hi = *q.MaxRating
	}
	return lo, hi
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]string(nil), q.Options...)
	}
	if q.MinRating != nil {
		v := *q.MinRating
		out.MinRating = &v
	}
	if q.MaxRating != nil {
		v := *q.MaxRating
		out.MaxRating = &v
	}
	return out
}

// SurveyLinks are the public URLs of a survey and its statistics.
type SurveyLinks struct {
	SurveyURL string `json:"survey_url"`
	StatsURL  string `json:"stats_url"`
}

// Survey is an immutable, identified collection of questions.
type Survey struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Questions   []Question  `json:"questions"`
	CreatedAt   time.Time   `json:"created_at"`
	Links       SurveyLinks `json:"links"`
}

// Clone returns a deep copy of the survey.
func (s *Survey) Clone() *Survey {
	if s == nil {
		return nil
	}
	out := *s
	if s.Description != nil {
		d := *s.Description
		out.Description = &d
	}
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return &out
}

// SurveyDraft is what a caller supplies to create a survey.
// Question.Required is taken as given: the required-by-default rule of the
// wire format is applied by CreateSurveyRequest.Draft, so Go callers building
// a draft directly must set it themselves.
type SurveyDraft struct {
	Title       string
	Description *string
	Questions   []Question
}

// QuestionRequest is the wire shape of a question in CreateSurveyRequest.
type QuestionRequest struct {
	ID        string   `json:"id" binding:"required,max=100"`
	Text      string   `json:"text" binding:"required,min=1,max=500"`
	Type      string   `json:"type" binding:"required,oneof=text single_choice multiple_choice rating yes_no"`
	Required  *bool    `json:"required"`
	Options   []string `json:"options" binding:"omitempty,dive,required,max=200"`
	MinRating *int     `json:"min_rating"`
	MaxRating *int     `json:"max_rating"`
}

// CreateSurveyRequest is the payload for creating a survey.
type CreateSurveyRequest struct {
	Title       string            `json:"title" binding:"required,min=1,max=200"`
	Description *string           `json:"description" binding:"omitempty,max=1000"`
	Questions   []QuestionRequest `json:"questions" binding:"required,min=1,unique=ID,dive"`
}

// Draft converts the request into a SurveyDraft. Questions default to required.
func (r CreateSurveyRequest) Draft() SurveyDraft {
	questions := make([]Question, len(r.Questions))
	for i, q := range r.Questions {
		required := true
		if q.Required != nil {
			required = *q.Required
		}
		questions[i] = Question{
			ID:        q.ID,
			Text:      q.Text,
			Type:      QuestionType(q.Type),
			Required:  required,
			Options:   q.Options,
			MinRating: q.MinRating,
			MaxRating: q.MaxRating,
		}
	}
	return SurveyDraft{
		Title:       r.Title,
		Description: r.Description,
		Questions:   questions,
	}
}
