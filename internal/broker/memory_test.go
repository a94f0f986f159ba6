package broker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func TestMemoryBrokerDeliversToSurveySubscribers(t *testing.T) {
	b := NewMemoryBroker(zerolog.Nop())
	surveyID := uuid.New()

	ch, cancel, err := b.Subscribe(context.Background(), surveyID)
	require.NoError(t, err)
	defer cancel()

	other, cancelOther, err := b.Subscribe(context.Background(), uuid.New())
	require.NoError(t, err)
	defer cancelOther()

	event := Event{Type: EventResponseSubmitted, SurveyID: surveyID, ResponseID: uuid.New()}
	require.NoError(t, b.Publish(context.Background(), event))

	got, ok := receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, event, got)

	select {
	case ev := <-other:
		t.Fatalf("unexpected event for another survey: %+v", ev)
	default:
	}
}

func TestMemoryBrokerCancelClosesChannel(t *testing.T) {
	b := NewMemoryBroker(zerolog.Nop())
	surveyID := uuid.New()

	ch, cancel, err := b.Subscribe(context.Background(), surveyID)
	require.NoError(t, err)

	cancel()
	cancel()

	_, ok := receive(t, ch)
	assert.False(t, ok)
	assert.NoError(t, b.Publish(context.Background(), Event{SurveyID: surveyID}))
}

func TestMemoryBrokerContextEndsSubscription(t *testing.T) {
	b := NewMemoryBroker(zerolog.Nop())
	ctx, cancelCtx := context.WithCancel(context.Background())

	ch, cancel, err := b.Subscribe(ctx, uuid.New())
	require.NoError(t, err)
	defer cancel()

	cancelCtx()

	_, ok := receive(t, ch)
	assert.False(t, ok)
}

func TestMemoryBrokerDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewMemoryBroker(zerolog.Nop())
	surveyID := uuid.New()

	ch, cancel, err := b.Subscribe(context.Background(), surveyID)
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, b.Publish(context.Background(), Event{SurveyID: surveyID}))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestMemoryBrokerCloseEndsSubscriptions(t *testing.T) {
	b := NewMemoryBroker(zerolog.Nop())

	ch, cancel, err := b.Subscribe(context.Background(), uuid.New())
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Close())
	_, ok := receive(t, ch)
	assert.False(t, ok)

	late, _, err := b.Subscribe(context.Background(), uuid.New())
	require.NoError(t, err)
	_, ok = receive(t, late)
	assert.False(t, ok)
}
