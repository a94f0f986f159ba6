package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionStats summarises the answers given to one question.
type QuestionStats struct {
	QuestionID         string         `json:"question_id"`
	QuestionText       string         `json:"question_text"`
	QuestionType       QuestionType   `json:"question_type"`
	TotalResponses     int            `json:"total_responses"`
	AnswerDistribution map[string]int `json:"answer_distribution"`
	AverageValue       *float64       `json:"average_value"`
}

// SurveyStats aggregates every response recorded for a survey.
type SurveyStats struct {
	SurveyID       uuid.UUID       `json:"survey_id"`
	SurveyTitle    string          `json:"survey_title"`
	TotalResponses int             `json:"total_responses"`
	QuestionsStats []QuestionStats `json:"questions_stats"`
	CreatedAt      time.Time       `json:"created_at"`
	LastResponseAt *time.Time      `json:"last_response_at"`
}

// StoreSummary reports the size of the survey store.
type StoreSummary struct {
	TotalSurveys   int       `json:"total_surveys"`
	TotalResponses int       `json:"total_responses"`
	InitializedAt  time.Time `json:"initialized_at"`
}
