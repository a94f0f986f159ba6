package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/response"
	"github.com/stemsi/polly-backend/internal/service"
	"github.com/stemsi/polly-backend/internal/validator"
)

var ruleCodes = map[service.ValidationRule]response.ErrCode{
	service.RuleMissingRequiredAnswer: response.ErrMissingRequiredAnswer,
	service.RuleUnknownQuestion:       response.ErrUnknownQuestion,
	service.RuleDuplicateAnswer:       response.ErrDuplicateAnswer,
	service.RuleTypeMismatch:          response.ErrTypeMismatch,
	service.RuleInvalidOption:         response.ErrInvalidOption,
	service.RuleOutOfRange:            response.ErrOutOfRange,
	service.RuleNoQuestions:           response.ErrNoQuestions,
	service.RuleTooManyQuestions:      response.ErrTooManyQuestions,
	service.RuleTooManyOptions:        response.ErrTooManyOptions,
	service.RuleDuplicateQuestion:     response.ErrDuplicateQuestion,
	service.RuleInvalidQuestionType:   response.ErrInvalidQuestionType,
	service.RuleInvalidRatingBounds:   response.ErrInvalidRatingBounds,
}

// failBind reports a request body that could not be bound.
func failBind(c *gin.Context, errs *validator.Errors) {
	code := response.ErrValidation
	if errs.Malformed {
		code = response.ErrInvalidPayload
	}
	response.FailWithFields(c, http.StatusBadRequest, code, errs.Fields)
}

// failService maps a service error onto the response envelope.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	if errors.Is(err, service.ErrSurveyNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrSurveyNotFound)
		return
	}

	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		code, ok := ruleCodes[vErr.Rule]
		if !ok {
			code = response.ErrValidation
		}
		var fields map[string]string
		if vErr.QuestionID != "" {
			fields = map[string]string{"question_id": vErr.QuestionID}
		}
		response.FailWithMessage(c, http.StatusBadRequest, code, vErr.Message, fields)
		return
	}

	log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Unhandled service error")
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
