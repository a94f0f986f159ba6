package service

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/stemsi/polly-backend/internal/model"
)

// AggregateStatistics summarises responses per question, in survey order.
// It is pure: the same inputs always yield the same stats.
func AggregateStatistics(survey *model.Survey, responses []model.SurveyResponse) model.SurveyStats {
	stats := model.SurveyStats{
		SurveyID:       survey.ID,
		SurveyTitle:    survey.Title,
		TotalResponses: len(responses),
		QuestionsStats: make([]model.QuestionStats, 0, len(survey.Questions)),
		CreatedAt:      survey.CreatedAt,
	}

	var last time.Time
	for _, r := range responses {
		if r.SubmittedAt.After(last) {
			last = r.SubmittedAt
		}
	}
	if len(responses) > 0 {
		stats.LastResponseAt = &last
	}

	for _, q := range survey.Questions {
		stats.QuestionsStats = append(stats.QuestionsStats, questionStats(q, responses))
	}
	return stats
}

func questionStats(q model.Question, responses []model.SurveyResponse) model.QuestionStats {
	qs := model.QuestionStats{
		QuestionID:         q.ID,
		QuestionText:       q.Text,
		QuestionType:       q.Type,
		AnswerDistribution: make(map[string]int),
	}

	var (
		sum     float64
		numeric int
	)
	for _, r := range responses {
		for _, a := range r.Answers {
			if a.QuestionID != q.ID {
				continue
			}
			qs.TotalResponses++

			switch q.Type {
			case model.QuestionTypeMultipleChoice:
				if picked, ok := a.Value.List(); ok {
					for _, p := range picked {
						qs.AnswerDistribution[p]++
					}
				} else {
					qs.AnswerDistribution[stringify(a.Value)]++
				}

			case model.QuestionTypeYesNo:
				qs.AnswerDistribution[yesNo(a.Value)]++

			case model.QuestionTypeRating:
				qs.AnswerDistribution[stringify(a.Value)]++
				if n, ok := a.Value.Number(); ok {
					sum += n
					numeric++
				}

			default:
				qs.AnswerDistribution[stringify(a.Value)]++
			}
		}
	}

	if q.Type == model.QuestionTypeRating && numeric > 0 {
		avg := sum / float64(numeric)
		qs.AverageValue = &avg
	}
	return qs
}

func yesNo(v model.AnswerValue) string {
	if b, ok := v.Bool(); ok && b {
		return "yes"
	}
	if s, ok := v.Text(); ok && s == "yes" {
		return "yes"
	}
	return "no"
}

// stringify renders a value as a distribution key.
func stringify(v model.AnswerValue) string {
	switch v.Kind() {
	case model.KindString:
		s, _ := v.Text()
		return s
	case model.KindNumber:
		n, _ := v.NumberText()
		return n
	case model.KindBool:
		b, _ := v.Bool()
		return strconv.FormatBool(b)
	case model.KindList:
		l, _ := v.List()
		out, err := json.Marshal(l)
		if err != nil {
			return ""
		}
		return string(out)
	}
	return ""
}
