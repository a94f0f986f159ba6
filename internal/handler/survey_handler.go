package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/model"
	"github.com/stemsi/polly-backend/internal/response"
	"github.com/stemsi/polly-backend/internal/service"
	"github.com/stemsi/polly-backend/internal/validator"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// SurveyHandler handles survey, response and statistics endpoints.
type SurveyHandler struct {
	surveyService *service.SurveyService
	log           zerolog.Logger
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(surveyService *service.SurveyService, log zerolog.Logger) *SurveyHandler {
	return &SurveyHandler{
		surveyService: surveyService,
		log:           log.With().Str("component", "survey_handler").Logger(),
	}
}

// CreateSurvey godoc
// POST /api/v1/surveys
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req model.CreateSurveyRequest
	if errs := validator.Bind(c, &req); errs != nil {
		failBind(c, errs)
		return
	}

	survey, err := h.surveyService.CreateSurvey(c.Request.Context(), req.Draft())
	if err != nil {
		failService(c, h.log, err)
		return
	}

	c.Header("Location", survey.Links.SurveyURL)
	response.Success(c, http.StatusCreated, survey)
}

// ListSurveys godoc
// GET /api/v1/surveys?page=1&per_page=20
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	perPage = min(perPage, maxPerPage)

	all := h.surveyService.ListSurveys(c.Request.Context())

	// Pages past the end are empty; compare before multiplying so huge page
	// numbers cannot overflow.
	start := len(all)
	if page-1 < (len(all)+perPage-1)/perPage {
		start = (page - 1) * perPage
	}
	end := min(start+perPage, len(all))

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"surveys": all[start:end]}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: len(all),
		TotalPages: (len(all) + perPage - 1) / perPage,
	})
}

// GetSurvey godoc
// GET /api/v1/surveys/:id
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id, ok := parseSurveyID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.GetSurvey(c.Request.Context(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, survey)
}

// SubmitResponse godoc
// POST /api/v1/surveys/:id/responses
// Records one respondent's answers. The submission is stored whole or not at all.
func (h *SurveyHandler) SubmitResponse(c *gin.Context) {
	id, ok := parseSurveyID(c)
	if !ok {
		return
	}

	var req model.SubmitResponseRequest
	if errs := validator.Bind(c, &req); errs != nil {
		failBind(c, errs)
		return
	}

	resp, err := h.surveyService.SubmitResponse(c.Request.Context(), id, req.Draft())
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetStatistics godoc
// GET /api/v1/surveys/:id/stats
func (h *SurveyHandler) GetStatistics(c *gin.Context) {
	id, ok := parseSurveyID(c)
	if !ok {
		return
	}

	stats, err := h.surveyService.GetStatistics(c.Request.Context(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

func parseSurveyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
