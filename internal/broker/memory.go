package broker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const subscriberBuffer = 16

// MemoryBroker fans events out to subscribers inside the process. Slow
// subscribers whose buffer is full miss events instead of blocking Publish.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[*memorySub]struct{}
	closed bool
	log    zerolog.Logger
}

type memorySub struct {
	ch   chan Event
	once sync.Once
}

// NewMemoryBroker creates an empty MemoryBroker.
func NewMemoryBroker(log zerolog.Logger) *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[uuid.UUID]map[*memorySub]struct{}),
		log:  log.With().Str("component", "memory_broker").Logger(),
	}
}

func (b *MemoryBroker) Publish(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[event.SurveyID] {
		select {
		case sub.ch <- event:
		default:
			b.log.Warn().
				Str("survey_id", event.SurveyID.String()).
				Msg("Subscriber buffer full, event dropped")
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, surveyID uuid.UUID) (<-chan Event, func(), error) {
	sub := &memorySub{ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}, nil
	}
	if b.subs[surveyID] == nil {
		b.subs[surveyID] = make(map[*memorySub]struct{})
	}
	b.subs[surveyID][sub] = struct{}{}
	b.mu.Unlock()

	stop := make(chan struct{})
	cancel := func() {
		sub.once.Do(func() {
			b.remove(surveyID, sub)
			close(stop)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()

	return sub.ch, cancel, nil
}

func (b *MemoryBroker) remove(surveyID uuid.UUID, sub *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.subs[surveyID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.ch)
		}
		if len(set) == 0 {
			delete(b.subs, surveyID)
		}
	}
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, set := range b.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(b.subs, id)
	}
	b.closed = true
	return nil
}
