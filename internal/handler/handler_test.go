package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/broker"
	"github.com/stemsi/polly-backend/internal/repository"
	"github.com/stemsi/polly-backend/internal/response"
	"github.com/stemsi/polly-backend/internal/service"
	"github.com/stemsi/polly-backend/internal/validator"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type testEnv struct {
	router *gin.Engine
	store  *repository.SurveyStore
	broker *broker.MemoryBroker
}

func newTestEnv(t *testing.T, pushInterval time.Duration) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	store := repository.NewSurveyStore()
	b := broker.NewMemoryBroker(log)
	t.Cleanup(func() { _ = b.Close() })

	svc := service.NewSurveyService(store, b, service.SurveyConfig{
		BaseURL:      "http://polly.test/api/v1",
		MaxQuestions: 10,
		MaxOptions:   5,
	}, log)

	surveys := NewSurveyHandler(svc, log)
	health := NewHealthHandler(svc, nil)
	wsh := NewWSHandler(svc, b, pushInterval, log, nil)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.GET("/", health.Info)
	r.GET("/health", health.Health)
	api := r.Group("/api/v1/surveys")
	api.POST("", surveys.CreateSurvey)
	api.GET("", surveys.ListSurveys)
	api.GET("/:id", surveys.GetSurvey)
	api.POST("/:id/responses", surveys.SubmitResponse)
	api.GET("/:id/stats", surveys.GetStatistics)
	r.GET("/ws/v1/surveys/:id/stats", wsh.SurveyStatsStream)

	return &testEnv{router: r, store: store, broker: b}
}

type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
	Metadata   response.Metadata    `json:"metadata"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

const languageSurvey = `{
	"title": "Languages",
	"description": "What do you write?",
	"questions": [
		{"id": "q1", "text": "Favourite language?", "type": "single_choice", "options": ["Go", "Rust", "Python"]},
		{"id": "q2", "text": "Rate your language", "type": "rating"},
		{"id": "q3", "text": "Tools?", "type": "multiple_choice", "options": ["vim", "vscode"], "required": false},
		{"id": "q4", "text": "Recommend it?", "type": "yes_no", "required": false}
	]
}`
