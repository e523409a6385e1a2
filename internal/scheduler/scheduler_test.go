package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-board/internal/dashboard"
)

type fakeRefresher struct {
	batches atomic.Int32
	weekly  atomic.Int32
	order   chan string
}

func (f *fakeRefresher) RunBatch(ctx context.Context) dashboard.BatchResult {
	f.batches.Add(1)
	if f.order != nil {
		f.order <- "batch"
	}
	_, hasDeadline := ctx.Deadline()
	return dashboard.BatchResult{Cycle: "c1", Committed: hasDeadline}
}

func (f *fakeRefresher) RefreshWeekly(context.Context) {
	f.weekly.Add(1)
	if f.order != nil {
		f.order <- "weekly"
	}
}

func TestRunOnce_RefreshesBatchThenWeekly(t *testing.T) {
	f := &fakeRefresher{order: make(chan string, 2)}
	s := New(f, time.Minute, time.Second, zerolog.Nop())

	s.RunOnce()

	assert.Equal(t, "batch", <-f.order)
	assert.Equal(t, "weekly", <-f.order)
}

func TestStart_Disabled(t *testing.T) {
	f := &fakeRefresher{}
	s := New(f, 0, time.Second, zerolog.Nop())

	require.NoError(t, s.Start())
	s.Stop()

	assert.Zero(t, f.batches.Load())
}

func TestStart_RunsPeriodically(t *testing.T) {
	f := &fakeRefresher{}
	s := New(f, 50*time.Millisecond, time.Second, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return f.batches.Load() >= 2 && f.weekly.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
