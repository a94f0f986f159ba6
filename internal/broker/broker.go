// Package broker carries survey submission events to live statistics
// subscribers, either in-process or over Redis Pub/Sub.
package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened to a survey.
type EventType string

const EventResponseSubmitted EventType = "response_submitted"

// Event is published after a response has been stored.
type Event struct {
	Type        EventType `json:"type"`
	SurveyID    uuid.UUID `json:"survey_id"`
	ResponseID  uuid.UUID `json:"response_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Publisher sends events to subscribers of the event's survey.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Broker publishes events and hands out per-survey subscriptions.
//
// Subscribe returns a channel of events for the survey and a cancel func that
// releases the subscription. The channel is closed once cancel is called or
// ctx is done.
type Broker interface {
	Publisher
	Subscribe(ctx context.Context, surveyID uuid.UUID) (<-chan Event, func(), error)
}
