package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qbic/datamanager/internal/domain/notification"
	"github.com/qbic/datamanager/internal/infrastructure/telemetry"
)

// MailDispatcherConfig holds configuration for the email dispatch loop
type MailDispatcherConfig struct {
	Enabled      bool
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// RetryDelay is the wait after the first failed attempt; it doubles
	// with every further failure up to MaxRetryDelay
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	SendTimeout   time.Duration
}

// DefaultMailDispatcherConfig returns default configuration
func DefaultMailDispatcherConfig() MailDispatcherConfig {
	return MailDispatcherConfig{
		Enabled:       true,
		PollInterval:  30 * time.Second,
		BatchSize:     50,
		MaxAttempts:   5,
		RetryDelay:    time.Minute,
		MaxRetryDelay: time.Hour,
		SendTimeout:   30 * time.Second,
	}
}

// MailDispatcher periodically sends due email jobs
type MailDispatcher struct {
	config  MailDispatcherConfig
	jobs    notification.EmailJobRepository
	sender  notification.Sender
	metrics *telemetry.DomainMetrics
	logger  *zap.Logger
	now     func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewMailDispatcher creates a dispatcher. metrics may be nil.
func NewMailDispatcher(
	config MailDispatcherConfig,
	jobs notification.EmailJobRepository,
	sender notification.Sender,
	metrics *telemetry.DomainMetrics,
	logger *zap.Logger,
) *MailDispatcher {
	defaults := DefaultMailDispatcherConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.MaxRetryDelay <= 0 {
		config.MaxRetryDelay = defaults.MaxRetryDelay
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaults.SendTimeout
	}
	return &MailDispatcher{
		config:  config,
		jobs:    jobs,
		sender:  sender,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Start starts the dispatch loop
func (d *MailDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return
	}
	if !d.config.Enabled {
		d.logger.Info("Mail dispatcher is disabled")
		return
	}
	d.isRunning = true

	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Mail dispatcher started",
		zap.Duration("poll_interval", d.config.PollInterval),
		zap.Int("batch_size", d.config.BatchSize),
	)
}

// Stop stops the dispatch loop
func (d *MailDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.cancel()
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Mail dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MailDispatcher) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := d.RunOnce(ctx); err != nil {
				d.logger.Error("Mail dispatch run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce sends one batch of due jobs and returns how many were sent and
// how many attempts failed
func (d *MailDispatcher) RunOnce(ctx context.Context) (sent, failed int, err error) {
	now := d.now()
	due, err := d.jobs.FindDue(ctx, now, d.config.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, job := range due {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}
		sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
		sendErr := d.sender.Send(sendCtx, job.Email)
		cancel()
		d.metrics.EmailDispatched(ctx, sendErr)

		if sendErr != nil {
			failed++
			job.MarkAttemptFailed(sendErr, d.now(), d.retryDelay(job.Attempts), d.config.MaxAttempts)
			d.logger.Warn("Email delivery failed",
				zap.String("job_id", job.ID.String()),
				zap.Int("attempts", job.Attempts),
				zap.String("status", string(job.Status)),
				zap.Error(sendErr),
			)
		} else {
			sent++
			job.MarkSent(d.now())
		}

		if err := d.jobs.Save(ctx, job); err != nil {
			return sent, failed, err
		}
	}
	return sent, failed, nil
}

// retryDelay is the wait before attempt number attempts+2
func (d *MailDispatcher) retryDelay(attempts int) time.Duration {
	delay := d.config.RetryDelay
	for i := 0; i < attempts && delay < d.config.MaxRetryDelay; i++ {
		delay *= 2
	}
	return min(delay, d.config.MaxRetryDelay)
}
