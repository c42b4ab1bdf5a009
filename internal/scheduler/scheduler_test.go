package scheduler

import (
	"container/heap"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueueOrder(t *testing.T) {
	now := time.Now()
	pq := PriorityQueue{}
	for _, d := range []time.Duration{3, 1, 2} {
		heap.Push(&pq, &Job{Name: d.String(), NextRun: now.Add(d * time.Second)})
	}
	var order []string
	for pq.Len() > 0 {
		order = append(order, heap.Pop(&pq).(*Job).Name)
	}
	assert.Equal(t, []string{"1ns", "2ns", "3ns"}, order)
}

func TestAdd_InvalidInterval(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Add("never", 0, 0, func(context.Context) {}), ErrInvalidInterval)
	assert.Zero(t, s.Len())
}

func TestScheduler_RunsRepeatedly(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Add("tick", 10*time.Millisecond, 0, func(context.Context) { runs.Add(1) }))

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestScheduler_AddWhileRunning(t *testing.T) {
	s := New()
	s.Start(context.Background())
	defer s.Stop()

	done := make(chan struct{})
	require.NoError(t, s.Add("late", time.Hour, 0, func(context.Context) { close(done) }))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job added to a running scheduler did not fire")
	}
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := New()
	started := make(chan struct{})
	require.NoError(t, s.Add("slow", time.Hour, 0, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	}))
	s.Start(context.Background())
	<-started
	s.Stop()
	assert.Zero(t, s.Len(), "a job stopped mid-run is not rescheduled")
}
