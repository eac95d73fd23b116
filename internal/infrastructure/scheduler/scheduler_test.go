package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	finished := make(chan *Job, 2)
	p := NewPool(PoolConfig{Workers: 2}, ExecutorFunc(func(ctx context.Context, job *Job) error {
		defer func() { finished <- job }()
		if job.Payload == "fail" {
			return errors.New("boom")
		}
		return nil
	}), zap.NewNop())

	p.Start(context.Background())
	t.Cleanup(func() { _ = p.Stop(context.Background()) })

	require.NoError(t, p.Submit(NewJob("test", "ok")))
	require.NoError(t, p.Submit(NewJob("test", "fail")))

	var payloads []any
	for range 2 {
		select {
		case job := <-finished:
			payloads = append(payloads, job.Payload)
		case <-time.After(2 * time.Second):
			t.Fatal("job was not executed")
		}
	}
	assert.ElementsMatch(t, []any{"ok", "fail"}, payloads)
}

func TestJob_Transitions(t *testing.T) {
	job := NewJob("test", nil)
	assert.Equal(t, StatePending, job.State)
	assert.Zero(t, job.Duration())

	job.transition(StateRunning, nil)
	assert.Equal(t, StateRunning, job.State)
	assert.False(t, job.Started.IsZero())
	assert.Zero(t, job.Duration())

	job.transition(StateFailed, errors.New("boom"))
	assert.Equal(t, StateFailed, job.State)
	assert.Equal(t, "boom", job.Error)
	assert.False(t, job.Finished.IsZero())
	assert.GreaterOrEqual(t, job.Duration(), time.Duration(0))
}

func TestPool_RejectsWhenStoppedOrFull(t *testing.T) {
	release := make(chan struct{})
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1}, ExecutorFunc(func(ctx context.Context, job *Job) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}), zap.NewNop())

	err := p.Submit(NewJob("test", nil))
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.True(t, IsBusy(err))

	p.Start(context.Background())
	defer func() {
		close(release)
		require.NoError(t, p.Stop(context.Background()))
	}()

	// the first job occupies the worker, the second fills the queue
	require.NoError(t, p.Submit(NewJob("test", nil)))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Submit(NewJob("test", nil)))

	err = p.Submit(NewJob("test", nil))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.True(t, IsBusy(err))
	assert.False(t, IsBusy(errors.New("other")))
}

func TestPool_StopTwice(t *testing.T) {
	p := NewPool(PoolConfig{}, ExecutorFunc(func(context.Context, *Job) error { return nil }), zap.NewNop())
	p.Start(context.Background())
	require.NoError(t, p.Stop(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
	assert.ErrorIs(t, p.Submit(NewJob("test", nil)), ErrNotRunning)

	// a stopped pool can be started again
	p.Start(context.Background())
	assert.NoError(t, p.Submit(NewJob("test", nil)))
	require.NoError(t, p.Stop(context.Background()))
}

type recordingExecutor struct {
	started   chan struct{}
	release   chan struct{}
	abandoned []*Job
	causes    []error
}

func (e *recordingExecutor) Execute(ctx context.Context, _ *Job) error {
	e.started <- struct{}{}
	select {
	case <-e.release:
	case <-ctx.Done():
	}
	return ctx.Err()
}

func (e *recordingExecutor) Abandon(job *Job, err error) {
	e.abandoned = append(e.abandoned, job)
	e.causes = append(e.causes, err)
}

func TestPool_StopFailsQueuedJobs(t *testing.T) {
	exec := &recordingExecutor{started: make(chan struct{}, 1), release: make(chan struct{})}
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 4}, exec, zap.NewNop())
	p.Start(context.Background())

	running := NewJob("test", "running")
	require.NoError(t, p.Submit(running))
	<-exec.started

	queued := []*Job{NewJob("test", "a"), NewJob("test", "b")}
	for _, job := range queued {
		require.NoError(t, p.Submit(job))
	}

	require.NoError(t, p.Stop(context.Background()))

	assert.ElementsMatch(t, queued, exec.abandoned)
	for _, job := range queued {
		assert.Equal(t, StateFailed, job.State)
		assert.Equal(t, ErrPoolStopped.Error(), job.Error)
		assert.False(t, job.Finished.IsZero())
	}
	for _, cause := range exec.causes {
		assert.ErrorIs(t, cause, ErrPoolStopped)
	}
	assert.Equal(t, StateFailed, running.State)
	assert.Empty(t, p.queue)
}

func TestPool_StopWithoutAbandoner(t *testing.T) {
	started := make(chan struct{}, 1)
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 2}, ExecutorFunc(func(ctx context.Context, job *Job) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}), zap.NewNop())
	p.Start(context.Background())

	require.NoError(t, p.Submit(NewJob("test", nil)))
	<-started
	queued := NewJob("test", nil)
	require.NoError(t, p.Submit(queued))

	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, StateFailed, queued.State)
}
