package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/model"
)

// StoreSummarizer reports the size of the survey store.
type StoreSummarizer interface {
	Summary(ctx context.Context) model.StoreSummary
}

// StoreReporter logs store totals on a cron schedule.
type StoreReporter struct {
	source   StoreSummarizer
	schedule cron.Schedule
	spec     string
	log      zerolog.Logger

	mu   sync.Mutex
	last *model.StoreSummary
}

// NewStoreReporter parses spec (standard cron or a descriptor such as
// "@every 5m"). An empty spec yields a nil reporter, meaning disabled.
func NewStoreReporter(source StoreSummarizer, spec string, log zerolog.Logger) (*StoreReporter, error) {
	if spec == "" {
		return nil, nil
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse store report schedule %q: %w", spec, err)
	}
	return &StoreReporter{
		source:   source,
		schedule: schedule,
		spec:     spec,
		log:      log.With().Str("component", "store_reporter").Logger(),
	}, nil
}

// Start runs the schedule until ctx is cancelled. Call in a goroutine.
func (r *StoreReporter) Start(ctx context.Context) {
	if r == nil {
		return
	}

	clog := cronLogger{log: r.log}
	c := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	c.Schedule(r.schedule, cron.FuncJob(func() { r.Report(ctx) }))
	c.Start()

	r.log.Info().Str("schedule", r.spec).Msg("Worker started")

	<-ctx.Done()
	r.log.Info().Msg("Worker stopping...")
	<-c.Stop().Done()
	r.log.Info().Msg("Worker stopped")
}

// Report logs the current totals and the growth since the previous report.
func (r *StoreReporter) Report(ctx context.Context) model.StoreSummary {
	summary := r.source.Summary(ctx)

	r.mu.Lock()
	var newSurveys, newResponses int
	if r.last != nil {
		newSurveys = summary.TotalSurveys - r.last.TotalSurveys
		newResponses = summary.TotalResponses - r.last.TotalResponses
	}
	r.last = &summary
	r.mu.Unlock()

	r.log.Info().
		Int("total_surveys", summary.TotalSurveys).
		Int("total_responses", summary.TotalResponses).
		Int("new_surveys", newSurveys).
		Int("new_responses", newResponses).
		Time("initialized_at", summary.InitializedAt).
		Msg("Store report")

	return summary
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
