package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qbic/datamanager/internal/domain/notification"
)

type mockEmailJobRepository struct {
	mock.Mock
}

func (m *mockEmailJobRepository) Enqueue(ctx context.Context, jobs ...*notification.EmailJob) error {
	return m.Called(ctx, jobs).Error(0)
}

func (m *mockEmailJobRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*notification.EmailJob, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.EmailJob), args.Error(1)
}

func (m *mockEmailJobRepository) Save(ctx context.Context, job *notification.EmailJob) error {
	return m.Called(ctx, job).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, email notification.Email) error {
	return m.Called(ctx, email).Error(0)
}

func newJob(t *testing.T, recipient string) *notification.EmailJob {
	t.Helper()
	job, err := notification.NewEmailJob(notification.Email{
		RecipientEmail: recipient,
		Subject:        "New samples added to project",
		Body:           "body",
	})
	require.NoError(t, err)
	return job
}

func TestMailDispatcher_RunOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ok := newJob(t, "ok@example.org")
	bad := newJob(t, "bad@example.org")

	repo := &mockEmailJobRepository{}
	repo.On("FindDue", mock.Anything, now, 10).Return([]*notification.EmailJob{ok, bad}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()

	sender := &mockSender{}
	sender.On("Send", mock.Anything, ok.Email).Return(nil)
	sender.On("Send", mock.Anything, bad.Email).Return(errors.New("mailbox unavailable"))

	d := NewMailDispatcher(MailDispatcherConfig{BatchSize: 10, MaxAttempts: 3, RetryDelay: time.Minute}, repo, sender, nil, zap.NewNop())
	d.now = func() time.Time { return now }

	sent, failed, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)

	assert.Equal(t, notification.JobStatusSent, ok.Status)
	assert.Equal(t, notification.JobStatusPending, bad.Status)
	assert.Equal(t, 1, bad.Attempts)
	assert.Equal(t, "mailbox unavailable", bad.LastError)
	assert.Equal(t, now.Add(time.Minute), bad.NextAttemptAt)

	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestMailDispatcher_GivesUpAfterMaxAttempts(t *testing.T) {
	job := newJob(t, "bad@example.org")
	job.Attempts = 2

	repo := &mockEmailJobRepository{}
	repo.On("FindDue", mock.Anything, mock.Anything, mock.Anything).Return([]*notification.EmailJob{job}, nil)
	repo.On("Save", mock.Anything, job).Return(nil)
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("refused"))

	d := NewMailDispatcher(MailDispatcherConfig{MaxAttempts: 3}, repo, sender, nil, zap.NewNop())
	_, failed, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Equal(t, notification.JobStatusFailed, job.Status)
}

func TestMailDispatcher_FindDueError(t *testing.T) {
	repo := &mockEmailJobRepository{}
	repo.On("FindDue", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	d := NewMailDispatcher(MailDispatcherConfig{}, repo, &mockSender{}, nil, zap.NewNop())
	_, _, err := d.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestMailDispatcher_RetryDelay(t *testing.T) {
	d := NewMailDispatcher(MailDispatcherConfig{RetryDelay: time.Minute, MaxRetryDelay: 5 * time.Minute}, nil, nil, nil, zap.NewNop())
	assert.Equal(t, time.Minute, d.retryDelay(0))
	assert.Equal(t, 2*time.Minute, d.retryDelay(1))
	assert.Equal(t, 4*time.Minute, d.retryDelay(2))
	assert.Equal(t, 5*time.Minute, d.retryDelay(3))
}

func TestMailDispatcher_StartStop(t *testing.T) {
	polled := make(chan struct{}, 1)
	repo := &mockEmailJobRepository{}
	repo.On("FindDue", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return([]*notification.EmailJob{}, nil)

	d := NewMailDispatcher(MailDispatcherConfig{Enabled: true, PollInterval: 10 * time.Millisecond}, repo, &mockSender{}, nil, zap.NewNop())
	d.Start(context.Background())
	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not poll")
	}
	require.NoError(t, d.Stop(context.Background()))
}
