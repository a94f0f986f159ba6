package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/polly-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseAt(surveyID uuid.UUID, at time.Time, answers ...model.Answer) model.SurveyResponse {
	return model.SurveyResponse{ID: uuid.New(), SurveyID: surveyID, Answers: answers, SubmittedAt: at}
}

func single(questionID string, v model.AnswerValue) model.Answer {
	return model.Answer{QuestionID: questionID, Value: v}
}

func TestAggregateStatisticsEmptySurvey(t *testing.T) {
	survey := validatorSurvey()
	stats := AggregateStatistics(survey, nil)

	assert.Equal(t, survey.ID, stats.SurveyID)
	assert.Equal(t, survey.Title, stats.SurveyTitle)
	assert.Equal(t, 0, stats.TotalResponses)
	assert.Nil(t, stats.LastResponseAt)
	require.Len(t, stats.QuestionsStats, len(survey.Questions))

	for i, qs := range stats.QuestionsStats {
		assert.Equal(t, survey.Questions[i].ID, qs.QuestionID)
		assert.Equal(t, survey.Questions[i].Type, qs.QuestionType)
		assert.Equal(t, 0, qs.TotalResponses)
		assert.NotNil(t, qs.AnswerDistribution)
		assert.Empty(t, qs.AnswerDistribution)
		assert.Nil(t, qs.AverageValue)
	}
}

func TestAggregateStatisticsRatingAverage(t *testing.T) {
	survey := &model.Survey{ID: uuid.New(), Questions: []model.Question{
		{ID: "q", Text: "Rate", Type: model.QuestionTypeRating, MinRating: intPtr(1), MaxRating: intPtr(10)},
	}}
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	var responses []model.SurveyResponse
	for i, v := range []float64{3, 5, 7, 9} {
		responses = append(responses, responseAt(survey.ID, base.Add(time.Duration(i)*time.Minute), single("q", model.NumberValue(v))))
	}

	stats := AggregateStatistics(survey, responses)
	qs := stats.QuestionsStats[0]
	require.NotNil(t, qs.AverageValue)
	assert.InDelta(t, 6.0, *qs.AverageValue, 1e-9)
	assert.Equal(t, 4, qs.TotalResponses)
	assert.Equal(t, map[string]int{"3": 1, "5": 1, "7": 1, "9": 1}, qs.AnswerDistribution)

	require.NotNil(t, stats.LastResponseAt)
	assert.Equal(t, base.Add(3*time.Minute), *stats.LastResponseAt)
}

func TestAggregateStatisticsRatingKeysKeepNumberForm(t *testing.T) {
	survey := &model.Survey{Questions: []model.Question{{ID: "q", Type: model.QuestionTypeRating}}}
	responses := []model.SurveyResponse{
		responseAt(survey.ID, time.Now(), single("q", model.DecimalValue(4.5))),
		responseAt(survey.ID, time.Now(), single("q", model.NumberValue(5))),
		responseAt(survey.ID, time.Now(), single("q", model.DecimalValue(5))),
	}

	qs := AggregateStatistics(survey, responses).QuestionsStats[0]
	assert.Equal(t, map[string]int{"4.5": 1, "5": 1, "5.0": 1}, qs.AnswerDistribution)
	assert.InDelta(t, 14.5/3, *qs.AverageValue, 1e-9)
}

func TestAggregateStatisticsYesNoNormalization(t *testing.T) {
	survey := &model.Survey{Questions: []model.Question{{ID: "q", Type: model.QuestionTypeYesNo}}}
	var responses []model.SurveyResponse
	for _, v := range []model.AnswerValue{
		model.StringValue("yes"), model.BoolValue(true), model.StringValue("no"), model.BoolValue(false),
	} {
		responses = append(responses, responseAt(survey.ID, time.Now(), single("q", v)))
	}

	qs := AggregateStatistics(survey, responses).QuestionsStats[0]
	assert.Equal(t, map[string]int{"yes": 2, "no": 2}, qs.AnswerDistribution)
	assert.Nil(t, qs.AverageValue)
}

func TestAggregateStatisticsMultipleChoiceFlattening(t *testing.T) {
	survey := &model.Survey{Questions: []model.Question{{ID: "q", Type: model.QuestionTypeMultipleChoice}}}
	responses := []model.SurveyResponse{
		responseAt(survey.ID, time.Now(), single("q", model.ListValue("Python"))),
		responseAt(survey.ID, time.Now(), single("q", model.ListValue("Python", "JavaScript"))),
		responseAt(survey.ID, time.Now(), single("q", model.ListValue("Java"))),
	}

	qs := AggregateStatistics(survey, responses).QuestionsStats[0]
	assert.Equal(t, 3, qs.TotalResponses)
	assert.Equal(t, map[string]int{"Python": 2, "JavaScript": 1, "Java": 1}, qs.AnswerDistribution)
}

func TestAggregateStatisticsStringifiesOtherTypes(t *testing.T) {
	survey := &model.Survey{Questions: []model.Question{
		{ID: "open", Type: model.QuestionTypeSingleChoice},
		{ID: "text", Type: model.QuestionTypeText},
	}}
	responses := []model.SurveyResponse{
		responseAt(survey.ID, time.Now(), single("open", model.BoolValue(true)), single("text", model.StringValue("hi"))),
		responseAt(survey.ID, time.Now(), single("open", model.ListValue("a", "b"))),
		responseAt(survey.ID, time.Now(), single("open", model.NumberValue(2))),
	}

	stats := AggregateStatistics(survey, responses)
	assert.Equal(t, map[string]int{"true": 1, `["a","b"]`: 1, "2": 1}, stats.QuestionsStats[0].AnswerDistribution)
	assert.Equal(t, map[string]int{"hi": 1}, stats.QuestionsStats[1].AnswerDistribution)
	assert.Equal(t, 1, stats.QuestionsStats[1].TotalResponses)
}

func TestAggregateStatisticsIsDeterministic(t *testing.T) {
	survey := validatorSurvey()
	responses := []model.SurveyResponse{
		responseAt(survey.ID, time.Now(), append(validAnswers(), single("score", model.NumberValue(2)))...),
		responseAt(survey.ID, time.Now(), append(validAnswers(), single("tools", model.ListValue("vim")))...),
	}

	assert.Equal(t, AggregateStatistics(survey, responses), AggregateStatistics(survey, responses))
}
