package workqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Search/pkg/metrics"
)

func TestNewDefaultsWorkerCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		q := New(n)
		assert.Equal(t, DefaultWorkers, q.Size())
		q.Join()
	}
	q := New(3)
	assert.Equal(t, 3, q.Size())
	q.Join()
}

func TestFinishWaitsForAllTasks(t *testing.T) {
	q := New(4)
	defer q.Join()

	var n int64
	for i := 0; i < 500; i++ {
		require.NoError(t, q.Execute(func() {
			time.Sleep(10 * time.Microsecond)
			atomic.AddInt64(&n, 1)
		}))
	}
	q.Finish()
	assert.Equal(t, int64(500), atomic.LoadInt64(&n))
	assert.Zero(t, q.Pending())
}

func TestFinishCoversTasksSubmittedByTasks(t *testing.T) {
	q := New(2)
	defer q.Join()

	var n int64
	var spawn func(depth int)
	spawn = func(depth int) {
		atomic.AddInt64(&n, 1)
		if depth == 0 {
			return
		}
		for i := 0; i < 2; i++ {
			d := depth - 1
			assert.NoError(t, q.Execute(func() { spawn(d) }))
		}
	}
	require.NoError(t, q.Execute(func() { spawn(4) }))
	q.Finish()
	// 1 + 2 + 4 + 8 + 16
	assert.Equal(t, int64(31), atomic.LoadInt64(&n))
}

func TestFinishIsReusable(t *testing.T) {
	q := New(3)
	defer q.Join()

	var n int64
	for round := 1; round <= 3; round++ {
		for i := 0; i < 10; i++ {
			require.NoError(t, q.Execute(func() { atomic.AddInt64(&n, 1) }))
		}
		q.Finish()
		assert.Equal(t, int64(round*10), atomic.LoadInt64(&n))
	}
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	m := metrics.New(nil)
	var mu sync.Mutex
	var errs []error
	q := New(1, WithMetrics(m), WithErrorHandler(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}))
	defer q.Join()

	ran := make(chan struct{})
	require.NoError(t, q.Execute(func() { panic("boom") }))
	require.NoError(t, q.Execute(func() { close(ran) }))
	q.Finish()

	select {
	case <-ran:
	default:
		t.Fatal("task after panic did not run")
	}
	assert.Equal(t, 1, q.Failures())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskPanicsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksCompletedTotal))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperrors.ErrTaskPanic)
	assert.Contains(t, errs[0].Error(), "boom")
}

func TestShutdownDrainsAndRejects(t *testing.T) {
	q := New(1)
	block := make(chan struct{})
	var n int64
	require.NoError(t, q.Execute(func() { <-block }))
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Execute(func() { atomic.AddInt64(&n, 1) }))
	}
	q.Shutdown()
	assert.ErrorIs(t, q.Execute(func() { atomic.AddInt64(&n, 100) }), apperrors.ErrQueueClosed)

	close(block)
	q.Join()
	assert.Equal(t, int64(5), atomic.LoadInt64(&n))
}

func TestShutdownIsIdempotent(t *testing.T) {
	q := New(2)
	q.Shutdown()
	q.Shutdown()
	q.Join()
}
