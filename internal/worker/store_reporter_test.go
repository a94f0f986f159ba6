package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	summary model.StoreSummary
	calls   int
}

func (f *fakeSource) Summary(context.Context) model.StoreSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.summary
}

func (f *fakeSource) set(surveys, responses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary.TotalSurveys, f.summary.TotalResponses = surveys, responses
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewStoreReporterSchedules(t *testing.T) {
	r, err := NewStoreReporter(&fakeSource{}, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, r)
	r.Start(context.Background()) // disabled reporter returns at once

	_, err = NewStoreReporter(&fakeSource{}, "every now and then", zerolog.Nop())
	assert.Error(t, err)

	for _, spec := range []string{"@every 5m", "*/5 * * * *", "@hourly"} {
		r, err := NewStoreReporter(&fakeSource{}, spec, zerolog.Nop())
		require.NoError(t, err, spec)
		assert.NotNil(t, r)
	}
}

func TestReportLogsTotalsAndGrowth(t *testing.T) {
	var buf syncBuffer
	src := &fakeSource{}
	r, err := NewStoreReporter(src, "@every 1h", zerolog.New(&buf))
	require.NoError(t, err)

	src.set(2, 5)
	r.Report(context.Background())
	src.set(3, 9)
	got := r.Report(context.Background())
	assert.Equal(t, 9, got.TotalResponses)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "Store report", second["message"])
	assert.EqualValues(t, 3, second["total_surveys"])
	assert.EqualValues(t, 1, second["new_surveys"])
	assert.EqualValues(t, 4, second["new_responses"])
	assert.Equal(t, "store_reporter", second["component"])
}

func TestStartRunsUntilCancelled(t *testing.T) {
	src := &fakeSource{}
	r, err := NewStoreReporter(src, "@every 1s", zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return src.Calls() >= 1 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("reporter did not stop")
	}
}
