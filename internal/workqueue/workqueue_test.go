package workqueue

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search/internal/adapter/metrics"
)

func TestWorkQueue_RunsAllTasks(t *testing.T) {
	q := New(4)
	defer q.Shutdown()

	var n atomic.Int64
	for range 100 {
		require.NoError(t, q.Submit(func() error {
			n.Add(1)
			return nil
		}))
	}
	q.Wait()

	assert.Equal(t, int64(100), n.Load())
}

func TestWorkQueue_DefaultWorkers(t *testing.T) {
	q := New(0)
	defer q.Shutdown()
	assert.Equal(t, DefaultWorkers, q.Workers())
}

func TestWorkQueue_WaitBlocksUntilFinished(t *testing.T) {
	q := New(2)
	defer q.Shutdown()

	release := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, q.Submit(func() error {
		<-release
		finished.Store(true)
		return nil
	}))

	waited := make(chan struct{})
	go func() {
		q.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while a task was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-waited
	assert.True(t, finished.Load())
}

func TestWorkQueue_WaitTwiceReturnsImmediately(t *testing.T) {
	q := New(2)
	defer q.Shutdown()

	require.NoError(t, q.Submit(func() error { return nil }))
	q.Wait()

	done := make(chan struct{})
	go func() {
		q.Wait()
		q.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with nothing pending")
	}
}

func TestWorkQueue_TaskCanSubmit(t *testing.T) {
	q := New(1)
	defer q.Shutdown()

	var n atomic.Int64
	require.NoError(t, q.Submit(func() error {
		n.Add(1)
		return q.Submit(func() error {
			n.Add(1)
			return nil
		})
	}))
	q.Wait()

	assert.Equal(t, int64(2), n.Load())
}

func TestWorkQueue_FailuresDoNotStopWorkers(t *testing.T) {
	m := metrics.New()
	q := New(1, WithMetrics(m))
	defer q.Shutdown()

	var ran atomic.Int64
	require.NoError(t, q.Submit(func() error { return errors.New("boom") }))
	require.NoError(t, q.Submit(func() error { panic("kaboom") }))
	require.NoError(t, q.Submit(func() error {
		ran.Add(1)
		return nil
	}))
	q.Wait()

	assert.Equal(t, int64(1), ran.Load())

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "search_worker_tasks_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			outcomes[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 3.0, outcomes[metrics.TaskSubmitted])
	assert.Equal(t, 1.0, outcomes[metrics.TaskCompleted])
	assert.Equal(t, 1.0, outcomes[metrics.TaskFailed])
	assert.Equal(t, 1.0, outcomes[metrics.TaskPanicked])
}

func TestWorkQueue_ShutdownDrainsAndCloses(t *testing.T) {
	q := New(1)

	var n atomic.Int64
	for range 10 {
		require.NoError(t, q.Submit(func() error {
			time.Sleep(time.Millisecond)
			n.Add(1)
			return nil
		}))
	}
	q.Shutdown()
	assert.Equal(t, int64(10), n.Load())

	err := q.Submit(func() error { return nil })
	assert.ErrorIs(t, err, ErrClosed)

	assert.NotPanics(t, q.Shutdown)
	q.Wait()
}

func TestWorkQueue_NilTask(t *testing.T) {
	q := New(1)
	defer q.Shutdown()
	assert.Error(t, q.Submit(nil))
}
