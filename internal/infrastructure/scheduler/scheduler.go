// Package scheduler runs background work: a bounded worker pool for
// submitted jobs and the email dispatch loop.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submission errors. Both mean the caller should retry later.
var (
	ErrNotRunning = errors.New("worker pool is not running")
	ErrQueueFull  = errors.New("job queue is full")
)

// ErrPoolStopped is the error of jobs still queued when the pool stops
var ErrPoolStopped = errors.New("worker pool stopped before the job ran")

// IsBusy reports whether err is a rejected submission
func IsBusy(err error) bool {
	return errors.Is(err, ErrNotRunning) || errors.Is(err, ErrQueueFull)
}

// JobState is the lifecycle state of a job
type JobState string

const (
	StatePending   JobState = "PENDING"
	StateRunning   JobState = "RUNNING"
	StateSucceeded JobState = "SUCCESS"
	StateFailed    JobState = "FAILED"
)

// Job is a unit of work handed to the pool. Payload is interpreted by the
// executor, Kind only labels log lines.
type Job struct {
	ID      uuid.UUID
	Kind    string
	Payload any

	State    JobState
	Error    string
	Started  time.Time
	Finished time.Time
}

func NewJob(kind string, payload any) *Job {
	return &Job{ID: uuid.New(), Kind: kind, Payload: payload, State: StatePending}
}

// Duration is zero until the job has finished
func (j *Job) Duration() time.Duration {
	if j.Started.IsZero() || j.Finished.IsZero() {
		return 0
	}
	return j.Finished.Sub(j.Started)
}

func (j *Job) transition(state JobState, err error) {
	j.State = state
	switch state {
	case StateRunning:
		j.Started = time.Now()
	case StateSucceeded, StateFailed:
		j.Finished = time.Now()
		if err != nil {
			j.Error = err.Error()
		}
	}
}

// Executor runs the jobs taken from the queue
type Executor interface {
	Execute(ctx context.Context, job *Job) error
}

// Abandoner is implemented by executors that track job outcomes outside
// the pool. Stop hands it every job it drops from the queue.
type Abandoner interface {
	Abandon(job *Job, err error)
}

type ExecutorFunc func(ctx context.Context, job *Job) error

func (f ExecutorFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

type PoolConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

const (
	defaultWorkers    = 4
	defaultQueueSize  = 100
	defaultJobTimeout = 5 * time.Minute
)

// Pool executes submitted jobs on a fixed number of goroutines. Jobs wait
// in a bounded queue; a full queue rejects instead of blocking the caller.
type Pool struct {
	cfg      PoolConfig
	executor Executor
	logger   *zap.Logger
	queue    chan *Job

	mu      sync.Mutex
	stop    context.CancelFunc // nil while stopped
	workers sync.WaitGroup
}

func NewPool(cfg PoolConfig, executor Executor, logger *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	return &Pool{
		cfg:      cfg,
		executor: executor,
		logger:   logger.Named("pool"),
		queue:    make(chan *Job, cfg.QueueSize),
	}
}

// Start launches the workers. They exit when ctx ends or Stop is called.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	ctx, p.stop = context.WithCancel(ctx)
	p.workers.Add(p.cfg.Workers)
	for id := range p.cfg.Workers {
		go p.work(ctx, id)
	}
	p.logger.Info("Worker pool started",
		zap.Int("workers", p.cfg.Workers),
		zap.Int("queue_size", p.cfg.QueueSize),
		zap.Duration("job_timeout", p.cfg.JobTimeout),
	)
}

// Stop cancels running jobs and waits for the workers, at most until ctx
// ends. Queued jobs are failed with ErrPoolStopped.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	if stop == nil {
		return nil
	}
	stop()

	exited := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(exited)
	}()
	select {
	case <-exited:
		p.logger.Info("Worker pool stopped", zap.Int("dropped", p.drain()))
		return nil
	case <-ctx.Done():
		p.logger.Warn("Worker pool did not stop in time", zap.Int("dropped", p.drain()))
		return ctx.Err()
	}
}

// drain fails every job left in the queue
func (p *Pool) drain() int {
	dropped := 0
	for {
		select {
		case job := <-p.queue:
			p.abandon(job)
			dropped++
		default:
			return dropped
		}
	}
}

// Submit queues job without blocking
func (p *Pool) Submit(job *Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return ErrNotRunning
	}
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) work(ctx context.Context, id int) {
	defer p.workers.Done()
	log := p.logger.With(zap.Int("worker_id", id))
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.queue:
			if ctx.Err() != nil {
				p.abandon(job)
				return
			}
			p.run(ctx, job, log)
		}
	}
}

func (p *Pool) abandon(job *Job) {
	job.transition(StateFailed, ErrPoolStopped)
	if abandoner, ok := p.executor.(Abandoner); ok {
		abandoner.Abandon(job, ErrPoolStopped)
	}
}

func (p *Pool) run(ctx context.Context, job *Job, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
	defer cancel()

	job.transition(StateRunning, nil)
	err := p.executor.Execute(ctx, job)
	if err != nil {
		job.transition(StateFailed, err)
	} else {
		job.transition(StateSucceeded, nil)
	}

	log = log.With(
		zap.Stringer("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Duration("duration", job.Duration()),
	)
	if err != nil {
		log.Warn("Job failed", zap.Error(err))
		return
	}
	log.Debug("Job completed")
}
