package config

import (
	"fmt"

	"github.com/google/uuid"
)

type ChannelKeyStruct struct{}

func NewChannelKeyStruct() *ChannelKeyStruct {
	return &ChannelKeyStruct{}
}

// SurveyResponses returns the PubSub channel that carries submission events for a survey
func (r *ChannelKeyStruct) SurveyResponses(surveyID uuid.UUID) string {
	return fmt.Sprintf("survey:%s:responses", surveyID)
}

var ChannelKey = NewChannelKeyStruct()
