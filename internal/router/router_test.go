package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/broker"
	"github.com/stemsi/polly-backend/internal/config"
	"github.com/stemsi/polly-backend/internal/handler"
	"github.com/stemsi/polly-backend/internal/model"
	"github.com/stemsi/polly-backend/internal/repository"
	"github.com/stemsi/polly-backend/internal/response"
	"github.com/stemsi/polly-backend/internal/service"
	"github.com/stemsi/polly-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, submitLimit int) *gin.Engine {
	t.Helper()
	validator.Setup()
	log := zerolog.Nop()

	cfg := &config.Config{
		GinMode:          gin.TestMode,
		SubmitRateLimit:  submitLimit,
		SubmitRateWindow: time.Minute,
	}
	b := broker.NewMemoryBroker(log)
	t.Cleanup(func() { _ = b.Close() })
	svc := service.NewSurveyService(repository.NewSurveyStore(), b, service.SurveyConfig{
		BaseURL: "http://polly.test/api/v1", MaxQuestions: 50, MaxOptions: 20,
	}, log)

	return SetupRouter(&Handlers{
		Survey: handler.NewSurveyHandler(svc, log),
		Health: handler.NewHealthHandler(svc, nil),
		WS:     handler.NewWSHandler(svc, b, 0, log, nil),
	}, cfg, log)
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesAreWired(t *testing.T) {
	r := newTestRouter(t, 100)

	w := serve(r, http.MethodPost, "/api/v1/surveys",
		`{"title": "T", "questions": [{"id": "q1", "text": "Name?", "type": "text"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var created struct {
		Data model.Survey `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID.String()
	assert.Equal(t, created.Data.Links.SurveyURL, w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/api/v1/surveys/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age=3600")

	w = serve(r, http.MethodGet, "/api/v1/surveys/"+id+"/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	for _, path := range []string{"/", "/health", "/api/v1/surveys"} {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path, "").Code, path)
	}
}

func TestSubmissionsAreRateLimited(t *testing.T) {
	r := newTestRouter(t, 2)

	w := serve(r, http.MethodPost, "/api/v1/surveys",
		`{"title": "T", "questions": [{"id": "q1", "text": "Name?", "type": "text"}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data model.Survey `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/api/v1/surveys/" + created.Data.ID.String() + "/responses"
	body := `{"answers": [{"question_id": "q1", "value": "Ada"}]}`

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, path, body).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, path, body).Code)

	w = serve(r, http.MethodPost, path, body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var env response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, response.ErrRateLimitExceeded, env.Error.Code)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/surveys/"+created.Data.ID.String()+"/stats", "").Code)
}
