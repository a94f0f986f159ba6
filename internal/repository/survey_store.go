package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/polly-backend/internal/model"
)

// SurveyStore is the process-wide, memory-resident home of surveys and their
// responses. A single RWMutex guards both maps so a survey never becomes
// visible without its (possibly empty) response list.
//
// Every value crossing the store boundary is deep-copied.
type SurveyStore struct {
	mu            sync.RWMutex
	surveys       map[uuid.UUID]*model.Survey
	order         []uuid.UUID
	responses     map[uuid.UUID][]model.SurveyResponse
	initializedAt time.Time
}

// NewSurveyStore creates an empty SurveyStore.
func NewSurveyStore() *SurveyStore {
	return &SurveyStore{
		surveys:       make(map[uuid.UUID]*model.Survey),
		responses:     make(map[uuid.UUID][]model.SurveyResponse),
		initializedAt: time.Now().UTC(),
	}
}

// AddSurvey stores the survey and resets its response list.
func (s *SurveyStore) AddSurvey(survey *model.Survey) {
	cp := survey.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.surveys[cp.ID]; !exists {
		s.order = append(s.order, cp.ID)
	}
	s.surveys[cp.ID] = cp
	s.responses[cp.ID] = []model.SurveyResponse{}
}

// GetSurvey returns a copy of the survey, or false when the id is unknown.
func (s *SurveyStore) GetSurvey(id uuid.UUID) (*model.Survey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	survey, ok := s.surveys[id]
	if !ok {
		return nil, false
	}
	return survey.Clone(), true
}

// SurveyExists reports whether a survey with the id is stored.
func (s *SurveyStore) SurveyExists(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.surveys[id]
	return ok
}

// AddResponse appends the response to its survey's list. It is a no-op
// returning false when the survey is not stored.
func (s *SurveyStore) AddResponse(response model.SurveyResponse) bool {
	cp := response.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.responses[cp.SurveyID]
	if !ok {
		return false
	}
	s.responses[cp.SurveyID] = append(list, cp)
	return true
}

// GetResponses returns the survey's responses in submission order. Unknown
// ids yield an empty slice.
func (s *SurveyStore) GetResponses(id uuid.UUID) []model.SurveyResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResponses(s.responses[id])
}

// Snapshot reads a survey together with its responses under one lock.
func (s *SurveyStore) Snapshot(id uuid.UUID) (*model.Survey, []model.SurveyResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	survey, ok := s.surveys[id]
	if !ok {
		return nil, nil, false
	}
	return survey.Clone(), cloneResponses(s.responses[id]), true
}

// AllSurveys returns every survey in insertion order.
func (s *SurveyStore) AllSurveys() []model.Survey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Survey, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.surveys[id].Clone())
	}
	return out
}

// Summary reports how many surveys and responses are held.
func (s *SurveyStore) Summary() model.StoreSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, list := range s.responses {
		total += len(list)
	}
	return model.StoreSummary{
		TotalSurveys:   len(s.surveys),
		TotalResponses: total,
		InitializedAt:  s.initializedAt,
	}
}

// Clear drops every survey and response.
func (s *SurveyStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.surveys = make(map[uuid.UUID]*model.Survey)
	s.responses = make(map[uuid.UUID][]model.SurveyResponse)
	s.order = nil
}

func cloneResponses(list []model.SurveyResponse) []model.SurveyResponse {
	out := make([]model.SurveyResponse, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}
