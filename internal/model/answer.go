package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValueKind tags the variant held by an AnswerValue.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	default:
		return "none"
	}
}

// ErrUnsupportedValue is returned when decoding an answer value that is not
// a string, number, boolean or list of strings.
var ErrUnsupportedValue = errors.New("answer value must be a string, number, boolean or list of strings")

// AnswerValue holds exactly one of string, number, boolean or list-of-string.
// The zero value holds nothing and is rejected by validation.
type AnswerValue struct {
	kind ValueKind
	str  string
	num  float64
	frac bool // number was written with a fraction or exponent
	flag bool
	list []string
}

func StringValue(s string) AnswerValue { return AnswerValue{kind: KindString, str: s} }

func NumberValue(n float64) AnswerValue { return AnswerValue{kind: KindNumber, num: n} }

// DecimalValue is a number written in decimal form, such as 5.0 or 4.5.
func DecimalValue(n float64) AnswerValue { return AnswerValue{kind: KindNumber, num: n, frac: true} }

func BoolValue(b bool) AnswerValue { return AnswerValue{kind: KindBool, flag: b} }

func ListValue(items ...string) AnswerValue {
	return AnswerValue{kind: KindList, list: append([]string{}, items...)}
}

func (v AnswerValue) Kind() ValueKind { return v.kind }

func (v AnswerValue) IsZero() bool { return v.kind == KindNone }

// Text returns the string variant and whether v holds one.
func (v AnswerValue) Text() (string, bool) { return v.str, v.kind == KindString }

// Number returns the numeric variant and whether v holds one.
func (v AnswerValue) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// NumberText renders the numeric variant the way it was written: integers
// without a fraction, decimal literals keeping at least one fractional digit.
func (v AnswerValue) NumberText() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	s := strconv.FormatFloat(v.num, 'f', -1, 64)
	if v.frac && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, true
}

// Bool returns the boolean variant and whether v holds one.
func (v AnswerValue) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// List returns a copy of the list variant and whether v holds one.
func (v AnswerValue) List() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

// Clone returns a copy that shares no memory with v.
func (v AnswerValue) Clone() AnswerValue {
	if v.kind == KindList {
		v.list = append([]string{}, v.list...)
	}
	return v
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if s, _ := v.NumberText(); v.frac {
			return []byte(s), nil
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	case KindList:
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case string:
		*v = StringValue(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return fmt.Errorf("answer value: %w", err)
		}
		if strings.ContainsAny(x.String(), ".eE") {
			*v = DecimalValue(n)
		} else {
			*v = NumberValue(n)
		}
	case bool:
		*v = BoolValue(x)
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return ErrUnsupportedValue
			}
			items = append(items, s)
		}
		*v = AnswerValue{kind: KindList, list: items}
	default:
		return ErrUnsupportedValue
	}
	return nil
}

// Answer is one respondent's value for a single question.
type Answer struct {
	QuestionID string      `json:"question_id"`
	Value      AnswerValue `json:"value"`
}

// SurveyResponse is one respondent's complete, accepted set of answers.
type SurveyResponse struct {
	ID           uuid.UUID `json:"id"`
	SurveyID     uuid.UUID `json:"survey_id"`
	Answers      []Answer  `json:"answers"`
	RespondentID *string   `json:"respondent_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Clone returns a deep copy of the response.
func (r SurveyResponse) Clone() SurveyResponse {
	out := r
	out.Answers = make([]Answer, len(r.Answers))
	for i, a := range r.Answers {
		out.Answers[i] = Answer{QuestionID: a.QuestionID, Value: a.Value.Clone()}
	}
	if r.RespondentID != nil {
		id := *r.RespondentID
		out.RespondentID = &id
	}
	return out
}

// ResponseDraft is what a respondent submits for a survey.
type ResponseDraft struct {
	Answers      []Answer
	RespondentID *string
}

// AnswerRequest is the wire shape of one answer.
type AnswerRequest struct {
	QuestionID string      `json:"question_id" binding:"required"`
	Value      AnswerValue `json:"value" binding:"required"`
}

// SubmitResponseRequest is the payload for answering a survey.
type SubmitResponseRequest struct {
	Answers      []AnswerRequest `json:"answers" binding:"required,dive"`
	RespondentID *string         `json:"respondent_id" binding:"omitempty,max=200"`
}

// Draft converts the request into a ResponseDraft.
func (r SubmitResponseRequest) Draft() ResponseDraft {
	answers := make([]Answer, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = Answer{QuestionID: a.QuestionID, Value: a.Value}
	}
	return ResponseDraft{Answers: answers, RespondentID: r.RespondentID}
}
