package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/broker"
	"github.com/stemsi/polly-backend/internal/model"
	"github.com/stemsi/polly-backend/internal/repository"
)

// SurveyConfig holds the limits and public base URL used by SurveyService.
type SurveyConfig struct {
	BaseURL      string
	MaxQuestions int
	MaxOptions   int
}

// SurveyService handles survey creation, response intake and statistics.
type SurveyService struct {
	store     *repository.SurveyStore
	publisher broker.Publisher
	cfg       SurveyConfig
	log       zerolog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewSurveyService creates a new SurveyService.
func NewSurveyService(
	store *repository.SurveyStore,
	publisher broker.Publisher,
	cfg SurveyConfig,
	log zerolog.Logger,
) *SurveyService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &SurveyService{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		log:       log.With().Str("component", "survey_service").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
}

// CreateSurvey checks the draft, assigns identity and links, and stores it.
func (s *SurveyService) CreateSurvey(ctx context.Context, draft model.SurveyDraft) (*model.Survey, error) {
	defer s.measure("create_survey", time.Now())

	if err := s.checkDraft(draft); err != nil {
		return nil, err
	}

	id := s.newID()
	survey := &model.Survey{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Questions:   make([]model.Question, len(draft.Questions)),
		CreatedAt:   s.now(),
		Links: model.SurveyLinks{
			SurveyURL: fmt.Sprintf("%s/surveys/%s", s.cfg.BaseURL, id),
			StatsURL:  fmt.Sprintf("%s/surveys/%s/stats", s.cfg.BaseURL, id),
		},
	}
	for i, q := range draft.Questions {
		q = q.Clone()
		if q.Type == model.QuestionTypeRating {
			lo, hi := q.RatingBounds()
			q.MinRating, q.MaxRating = &lo, &hi
		}
		survey.Questions[i] = q
	}

	s.store.AddSurvey(survey)

	s.log.Info().
		Str("survey_id", id.String()).
		Int("questions", len(survey.Questions)).
		Msg("Survey created")

	return survey.Clone(), nil
}

func (s *SurveyService) checkDraft(draft model.SurveyDraft) error {
	if len(draft.Questions) == 0 {
		return invalid(RuleNoQuestions, "", "survey must have at least one question")
	}
	if s.cfg.MaxQuestions > 0 && len(draft.Questions) > s.cfg.MaxQuestions {
		return invalid(RuleTooManyQuestions, "", "survey cannot have more than %d questions", s.cfg.MaxQuestions)
	}

	seen := make(map[string]struct{}, len(draft.Questions))
	for _, q := range draft.Questions {
		if _, dup := seen[q.ID]; dup {
			return invalid(RuleDuplicateQuestion, q.ID, "question id %s is used more than once", q.ID)
		}
		seen[q.ID] = struct{}{}

		if !q.Type.Valid() {
			return invalid(RuleInvalidQuestionType, q.ID, "question %s has unsupported type %q", q.ID, q.Type)
		}
		if s.cfg.MaxOptions > 0 && len(q.Options) > s.cfg.MaxOptions {
			return invalid(RuleTooManyOptions, q.ID, "question %s cannot have more than %d options", q.ID, s.cfg.MaxOptions)
		}
		if q.Type == model.QuestionTypeRating {
			if lo, hi := q.RatingBounds(); lo > hi {
				return invalid(RuleInvalidRatingBounds, q.ID, "question %s has min_rating %d above max_rating %d", q.ID, lo, hi)
			}
		}
	}
	return nil
}

// GetSurvey returns the survey or ErrSurveyNotFound.
func (s *SurveyService) GetSurvey(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	defer s.measure("get_survey", time.Now())

	survey, ok := s.store.GetSurvey(id)
	if !ok {
		return nil, surveyNotFound(id)
	}
	return survey, nil
}

// ListSurveys returns every survey in creation order.
func (s *SurveyService) ListSurveys(ctx context.Context) []model.Survey {
	defer s.measure("list_surveys", time.Now())
	return s.store.AllSurveys()
}

// SubmitResponse validates the answers and records them as one response.
// Either the whole submission is stored or nothing is.
func (s *SurveyService) SubmitResponse(ctx context.Context, surveyID uuid.UUID, draft model.ResponseDraft) (*model.SurveyResponse, error) {
	defer s.measure("submit_response", time.Now())

	survey, ok := s.store.GetSurvey(surveyID)
	if !ok {
		return nil, surveyNotFound(surveyID)
	}

	if err := ValidateAnswers(survey, draft.Answers); err != nil {
		return nil, err
	}

	resp := model.SurveyResponse{
		ID:           s.newID(),
		SurveyID:     surveyID,
		Answers:      draft.Answers,
		RespondentID: draft.RespondentID,
		SubmittedAt:  s.now(),
	}.Clone()

	// The survey may have been cleared since it was read.
	if !s.store.AddResponse(resp) {
		return nil, surveyNotFound(surveyID)
	}

	s.log.Debug().
		Str("survey_id", surveyID.String()).
		Str("response_id", resp.ID.String()).
		Msg("Response recorded")

	s.publish(ctx, broker.Event{
		Type:        broker.EventResponseSubmitted,
		SurveyID:    surveyID,
		ResponseID:  resp.ID,
		SubmittedAt: resp.SubmittedAt,
	})

	return &resp, nil
}

// measure logs how long an operation took, at debug level.
func (s *SurveyService) measure(op string, start time.Time) {
	s.log.Debug().
		Str("operation", op).
		Dur("elapsed", time.Since(start)).
		Msg("Operation finished")
}

func (s *SurveyService) publish(ctx context.Context, event broker.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().
			Err(err).
			Str("survey_id", event.SurveyID.String()).
			Msg("Failed to publish submission event")
	}
}

// GetStatistics aggregates the survey's responses as of now.
func (s *SurveyService) GetStatistics(ctx context.Context, id uuid.UUID) (*model.SurveyStats, error) {
	defer s.measure("get_statistics", time.Now())

	survey, responses, ok := s.store.Snapshot(id)
	if !ok {
		return nil, surveyNotFound(id)
	}
	stats := AggregateStatistics(survey, responses)
	return &stats, nil
}

// Summary reports the size of the store.
func (s *SurveyService) Summary(ctx context.Context) model.StoreSummary {
	return s.store.Summary()
}
