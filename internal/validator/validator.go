package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/polly-backend/internal/model"
)

var (
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup registers the validator with English translations on Gin's binding engine.
// Safe to call more than once; only the first call has an effect.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// An answer value is "present" when it decoded to any variant.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			av, ok := field.Interface().(model.AnswerValue)
			if !ok || av.IsZero() {
				return nil
			}
			return av.Kind().String()
		}, model.AnswerValue{})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	})
}

// Errors describes why a request body was refused.
type Errors struct {
	// Malformed is set when the body could not be decoded at all.
	Malformed bool
	Fields    map[string]string
}

// TranslateErrors takes a binding/validation error and returns a map of
// field path to human-readable message. If the error is not a validation
// error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fieldPath(fe)] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// fieldPath drops the root struct name, e.g. "answers[1].value".
func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Bind binds and validates the request body into dst.
// Returns nil on success.
func Bind(c *gin.Context, dst interface{}) *Errors {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var ve govalidator.ValidationErrors
	return &Errors{
		Malformed: !errors.As(err, &ve),
		Fields:    TranslateErrors(err),
	}
}
