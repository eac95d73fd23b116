package project

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	appaccess "github.com/qbic/datamanager/internal/application/access"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// JobKindProjectRequest marks queued request API jobs
const JobKindProjectRequest = "project_request"

const idempotencyKeyPrefix = "project-request:"

var (
	ErrUnknownRequest   = shared.NewDomainError("UNKNOWN_REQUEST", "Unknown request")
	ErrRequestFailed    = shared.NewDomainError("REQUEST_FAILED", "Request failed")
	ErrAlreadyProcessed = shared.NewDomainError("ALREADY_PROCESSED", "A request with this id was already processed")
	ErrUnknownRequestID = shared.NewDomainError("UNKNOWN_REQUEST_ID", "No request with this id was submitted")
	ErrRequestAbandoned = shared.NewDomainError("REQUEST_ABANDONED", "The request was not run before shutdown")
)

// RequestFailedError wraps the cause of a failed request. It matches
// ErrRequestFailed with errors.Is and exposes the cause's domain code.
type RequestFailedError struct {
	RequestID string
	Cause     error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.RequestID, e.Cause)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Cause
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// AsyncConfig configures retries and duplicate detection of the request API
type AsyncConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	IdempotencyTTL time.Duration
	// MaxTrackedRequests bounds the statuses kept for Status. Finished
	// requests are evicted first, oldest first.
	MaxTrackedRequests int
}

// DefaultAsyncConfig returns the default request API settings
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{MaxAttempts: 3, InitialBackoff: 200 * time.Millisecond, IdempotencyTTL: time.Hour, MaxTrackedRequests: 10000}
}

// JobSubmitter queues jobs on a worker pool
type JobSubmitter interface {
	Submit(job *scheduler.Job) error
}

// RequestStatus is the state of a submitted request
type RequestStatus struct {
	RequestID string    `json:"request_id"`
	Status    string    `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	owner uuid.UUID
}

func (r *RequestStatus) finished() bool {
	return r.Status == string(scheduler.StateSucceeded) || r.Status == string(scheduler.StateFailed)
}

// queuedRequest is the payload of a request API job
type queuedRequest struct {
	subject access.Subject
	request any
}

// AsyncProjectService applies project and experiment changes requested
// through the request API. Transient failures are retried with exponential
// backoff; request ids are processed at most once within the idempotency TTL.
type AsyncProjectService struct {
	projects    *ProjectService
	experiments *ExperimentService
	access      *appaccess.Service
	idempotency shared.IdempotencyStore
	config      AsyncConfig
	logger      *zap.Logger

	submitter JobSubmitter
	mu        sync.RWMutex
	statuses  map[string]*RequestStatus
}

// NewAsyncProjectService creates the request API service. idempotency may be nil.
func NewAsyncProjectService(
	projects *ProjectService,
	experiments *ExperimentService,
	accessService *appaccess.Service,
	idempotency shared.IdempotencyStore,
	config AsyncConfig,
	logger *zap.Logger,
) *AsyncProjectService {
	defaults := DefaultAsyncConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = defaults.IdempotencyTTL
	}
	if config.MaxTrackedRequests <= 0 {
		config.MaxTrackedRequests = defaults.MaxTrackedRequests
	}
	return &AsyncProjectService{
		projects:    projects,
		experiments: experiments,
		access:      accessService,
		idempotency: idempotency,
		config:      config,
		logger:      logger,
		statuses:    make(map[string]*RequestStatus),
	}
}

// SetSubmitter attaches the worker pool used by Submit
func (s *AsyncProjectService) SetSubmitter(submitter JobSubmitter) {
	s.submitter = submitter
}

// UpdateProject applies a project update request
func (s *AsyncProjectService) UpdateProject(ctx context.Context, subject access.Subject, req ProjectUpdateRequest) (*ProjectUpdateResponse, error) {
	req.RequestID = requestID(req.RequestID)
	projectID, err := parseProjectID(req.ProjectID)
	if err != nil {
		return nil, err
	}
	if req.Body == nil {
		return nil, fmt.Errorf("%w: missing request body", ErrUnknownRequest)
	}
	if err := s.access.Require(ctx, subject, projectID, access.PermissionWrite); err != nil {
		return nil, err
	}
	if err := s.markProcessed(ctx, req.RequestID); err != nil {
		return nil, err
	}

	err = s.retry(ctx, func() error {
		return s.applyProjectUpdate(ctx, projectID, req.Body)
	})
	if err != nil {
		return nil, &RequestFailedError{RequestID: req.RequestID, Cause: err}
	}
	return &ProjectUpdateResponse{ProjectID: req.ProjectID, Body: req.Body, RequestID: req.RequestID}, nil
}

func (s *AsyncProjectService) applyProjectUpdate(ctx context.Context, projectID uuid.UUID, body ProjectUpdateBody) error {
	switch b := body.(type) {
	case ProjectDesign:
		return s.projects.UpdateDesign(ctx, projectID, b.Title, b.Objective)
	case ProjectContacts:
		return s.projects.UpdateContacts(ctx, projectID, b.Investigator, b.Manager, b.Responsible)
	case FundingInformation:
		if strings.TrimSpace(b.Grant) == "" && strings.TrimSpace(b.GrantID) == "" {
			return s.projects.RemoveFunding(ctx, projectID)
		}
		return s.projects.SetFunding(ctx, projectID, FundingInput(b))
	default:
		return fmt.Errorf("%w: %T", ErrUnknownRequest, body)
	}
}

// UpdateExperiment applies an experiment update request
func (s *AsyncProjectService) UpdateExperiment(ctx context.Context, subject access.Subject, req ExperimentUpdateRequest) (*ExperimentUpdateResponse, error) {
	req.RequestID = requestID(req.RequestID)
	projectID, err := parseProjectID(req.ProjectID)
	if err != nil {
		return nil, err
	}
	experimentID, err := uuid.Parse(strings.TrimSpace(req.ExperimentID))
	if err != nil {
		return nil, ErrUnknownRequest.Withf("Experiment id is not valid")
	}
	if req.Body == nil {
		return nil, fmt.Errorf("%w: missing request body", ErrUnknownRequest)
	}
	if err := s.access.Require(ctx, subject, projectID, access.PermissionWrite); err != nil {
		return nil, err
	}
	if err := s.markProcessed(ctx, req.RequestID); err != nil {
		return nil, err
	}

	err = s.retry(ctx, func() error {
		exp, err := s.experiments.Find(ctx, experimentID)
		if err != nil {
			return err
		}
		if exp.ProjectID != projectID {
			return shared.NewDomainError("WRONG_EXPERIMENT", "Experiment does not belong to the project")
		}
		return s.applyExperimentUpdate(ctx, exp, req.Body)
	})
	if err != nil {
		return nil, &RequestFailedError{RequestID: req.RequestID, Cause: err}
	}
	return &ExperimentUpdateResponse{ExperimentID: req.ExperimentID, Body: req.Body, RequestID: req.RequestID}, nil
}

func (s *AsyncProjectService) applyExperimentUpdate(ctx context.Context, exp *experiment.Experiment, body ExperimentUpdateBody) error {
	switch b := body.(type) {
	case ExperimentDescription:
		return s.experiments.UpdateDescription(ctx, exp.ID, b)
	case ExperimentalVariables:
		return s.syncVariables(ctx, exp, b.Variables)
	case ExperimentalGroups:
		return s.syncGroups(ctx, exp, b.Groups)
	case ConfoundingVariables:
		return s.syncConfounding(ctx, exp.ID, b.Variables)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownRequest, body)
	}
}

// syncVariables makes the design's variables match the requested list
func (s *AsyncProjectService) syncVariables(ctx context.Context, exp *experiment.Experiment, variables []VariableInput) error {
	wanted := make(map[string]bool, len(variables))
	for _, v := range variables {
		wanted[v.Name] = true
	}
	for _, existing := range exp.Design.Variables {
		if !wanted[existing.Name] {
			if err := s.experiments.DeleteVariable(ctx, exp.ID, existing.Name); err != nil {
				return err
			}
		}
	}
	var added []VariableInput
	for _, v := range variables {
		if _, ok := exp.Design.Variable(v.Name); ok {
			if err := s.experiments.UpdateVariable(ctx, exp.ID, v.Name, v); err != nil {
				return err
			}
			continue
		}
		added = append(added, v)
	}
	if len(added) == 0 {
		return nil
	}
	return s.experiments.AddVariables(ctx, exp.ID, added)
}

// syncGroups makes the design's groups match the requested list
func (s *AsyncProjectService) syncGroups(ctx context.Context, exp *experiment.Experiment, groups []AsyncGroup) error {
	byNumber := make(map[int]experiment.Group, len(exp.Design.Groups))
	for _, g := range exp.Design.Groups {
		byNumber[g.GroupNumber] = g
	}
	kept := make(map[int]bool)
	for _, g := range groups {
		if g.GroupNumber != nil {
			kept[*g.GroupNumber] = true
		}
	}
	for number, g := range byNumber {
		if !kept[number] {
			if err := s.experiments.DeleteGroup(ctx, exp.ID, g.ID); err != nil {
				return err
			}
		}
	}
	for _, g := range groups {
		input := GroupInput{Name: g.Name, SampleSize: g.SampleSize, Levels: g.Levels}
		if g.GroupNumber != nil {
			existing, ok := byNumber[*g.GroupNumber]
			if !ok {
				return experiment.ErrUnknownGroup.Withf("Unknown experimental group %d", *g.GroupNumber)
			}
			if _, err := s.experiments.UpdateGroup(ctx, exp.ID, existing.ID, input); err != nil {
				return err
			}
			continue
		}
		if _, err := s.experiments.AddGroup(ctx, exp.ID, input); err != nil {
			return err
		}
	}
	return nil
}

// syncConfounding makes the confounding variables match the requested list
func (s *AsyncProjectService) syncConfounding(ctx context.Context, experimentID uuid.UUID, variables []ConfoundingVariableInfo) error {
	existing, err := s.experiments.ListConfoundingVariables(ctx, experimentID)
	if err != nil {
		return err
	}
	kept := make(map[uuid.UUID]bool)
	for _, v := range variables {
		if v.ID != nil {
			kept[*v.ID] = true
		}
	}
	for _, v := range existing {
		if !kept[v.ID] {
			if err := s.experiments.DeleteConfoundingVariable(ctx, experimentID, v.ID); err != nil {
				return err
			}
		}
	}
	for _, v := range variables {
		if v.ID != nil {
			if err := s.experiments.RenameConfoundingVariable(ctx, experimentID, *v.ID, v.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := s.experiments.CreateConfoundingVariable(ctx, experimentID, v.Name); err != nil {
			return err
		}
	}
	return nil
}

// Create creates a project through the request API
func (s *AsyncProjectService) Create(ctx context.Context, subject access.Subject, req ProjectCreationRequest) (*ProjectCreationResponse, error) {
	req.RequestID = requestID(req.RequestID)
	if subject.UserID == uuid.Nil {
		return nil, appaccess.ErrAccessDenied
	}
	if err := s.markProcessed(ctx, req.RequestID); err != nil {
		return nil, err
	}
	create := CreateProjectRequest{
		Title:        req.Design.Title,
		Objective:    req.Design.Objective,
		Investigator: req.Contacts.Investigator,
		Manager:      req.Contacts.Manager,
		Responsible:  req.Contacts.Responsible,
	}
	if req.Funding != nil {
		funding := FundingInput(*req.Funding)
		create.Funding = &funding
	}

	var created *ProjectResponse
	err := s.retry(ctx, func() error {
		var err error
		created, err = s.projects.Create(ctx, subject.UserID, create)
		return err
	})
	if err != nil {
		return nil, &RequestFailedError{RequestID: req.RequestID, Cause: err}
	}
	return &ProjectCreationResponse{ProjectID: created.ID.String(), RequestID: req.RequestID}, nil
}

// Submit queues a decoded request on the worker pool and returns its id.
// The outcome is available through Status.
func (s *AsyncProjectService) Submit(subject access.Subject, raw RawRequest) (string, error) {
	if s.submitter == nil {
		return "", scheduler.ErrNotRunning
	}
	raw.RequestID = requestID(raw.RequestID)

	var request any
	if raw.IsExperimentRequest() {
		req, err := raw.ExperimentRequest()
		if err != nil {
			return "", err
		}
		request = req
	} else {
		req, err := raw.ProjectRequest()
		if err != nil {
			return "", err
		}
		request = req
	}

	if err := s.track(&RequestStatus{RequestID: raw.RequestID, Status: string(scheduler.StatePending), owner: subject.UserID}); err != nil {
		return "", err
	}
	job := scheduler.NewJob(JobKindProjectRequest, queuedRequest{subject: subject, request: request})
	if err := s.submitter.Submit(job); err != nil {
		s.mu.Lock()
		delete(s.statuses, raw.RequestID)
		s.mu.Unlock()
		return "", err
	}
	return raw.RequestID, nil
}

// Execute runs a queued request; it implements scheduler.Executor
func (s *AsyncProjectService) Execute(ctx context.Context, job *scheduler.Job) error {
	queued, ok := job.Payload.(queuedRequest)
	if !ok {
		return fmt.Errorf("%w: unexpected payload %T", ErrUnknownRequest, job.Payload)
	}
	id, ok := queuedRequestID(queued.request)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnknownRequest, queued.request)
	}
	s.setStatus(id, queued.subject.UserID, func(st *RequestStatus) {
		st.Status = string(scheduler.StateRunning)
	})

	var (
		result any
		err    error
	)
	switch req := queued.request.(type) {
	case ProjectUpdateRequest:
		result, err = s.UpdateProject(ctx, queued.subject, req)
	case ExperimentUpdateRequest:
		result, err = s.UpdateExperiment(ctx, queued.subject, req)
	}

	s.setStatus(id, queued.subject.UserID, func(st *RequestStatus) {
		if err != nil {
			st.Status = string(scheduler.StateFailed)
			st.Error = err.Error()
			st.ErrorCode = shared.ErrorCode(err)
			return
		}
		st.Status = string(scheduler.StateSucceeded)
		st.Result = result
	})
	return err
}

// Abandon fails a request the pool dropped at shutdown; it implements
// scheduler.Abandoner
func (s *AsyncProjectService) Abandon(job *scheduler.Job, cause error) {
	queued, ok := job.Payload.(queuedRequest)
	if !ok {
		return
	}
	id, ok := queuedRequestID(queued.request)
	if !ok {
		return
	}
	s.logger.Warn("Request abandoned", zap.String("request_id", id), zap.Error(cause))
	s.setStatus(id, queued.subject.UserID, func(st *RequestStatus) {
		st.Status = string(scheduler.StateFailed)
		st.Error = ErrRequestAbandoned.Message
		st.ErrorCode = ErrRequestAbandoned.Code
	})
}

func queuedRequestID(request any) (string, bool) {
	switch req := request.(type) {
	case ProjectUpdateRequest:
		return req.RequestID, true
	case ExperimentUpdateRequest:
		return req.RequestID, true
	default:
		return "", false
	}
}

// Status returns the state of a submitted request. Only the submitter and
// admins can see it; everyone else gets ErrUnknownRequestID.
func (s *AsyncProjectService) Status(subject access.Subject, id string) (*RequestStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[id]
	if !ok || (status.owner != subject.UserID && !subject.IsAdmin()) {
		return nil, ErrUnknownRequestID
	}
	copied := *status
	return &copied, nil
}

// track registers a new request. Ids still tracked are rejected so a
// finished outcome is never replaced.
func (s *AsyncProjectService) track(status *RequestStatus) error {
	status.UpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(status.UpdatedAt)
	if _, ok := s.statuses[status.RequestID]; ok {
		return ErrAlreadyProcessed
	}
	s.statuses[status.RequestID] = status
	return nil
}

// setStatus applies fn to the tracked status of id, creating it when the
// request was not submitted through Submit
func (s *AsyncProjectService) setStatus(id string, owner uuid.UUID, fn func(st *RequestStatus)) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[id]
	if !ok {
		s.evict(now)
		status = &RequestStatus{RequestID: id, owner: owner}
		s.statuses[id] = status
	}
	fn(status)
	status.UpdatedAt = now
}

// evict drops finished statuses older than the idempotency TTL, then the
// oldest finished ones while the map is full. Caller holds mu.
func (s *AsyncProjectService) evict(now time.Time) {
	var finished []*RequestStatus
	for id, st := range s.statuses {
		if !st.finished() {
			continue
		}
		if now.Sub(st.UpdatedAt) > s.config.IdempotencyTTL {
			delete(s.statuses, id)
			continue
		}
		finished = append(finished, st)
	}
	excess := len(s.statuses) - s.config.MaxTrackedRequests + 1
	if excess <= 0 {
		return
	}
	slices.SortFunc(finished, func(a, b *RequestStatus) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
	for _, st := range finished[:min(excess, len(finished))] {
		delete(s.statuses, st.RequestID)
	}
}

func (s *AsyncProjectService) markProcessed(ctx context.Context, id string) error {
	if s.idempotency == nil {
		return nil
	}
	first, err := s.idempotency.MarkProcessed(ctx, idempotencyKeyPrefix+id, s.config.IdempotencyTTL)
	if err != nil {
		return fmt.Errorf("check request id: %w", err)
	}
	if !first {
		s.logger.Info("Duplicate request ignored", zap.String("request_id", id))
		return ErrAlreadyProcessed
	}
	return nil
}

// retry runs op until it succeeds, fails permanently or the attempts are
// used up. Domain errors other than concurrency conflicts are permanent.
func (s *AsyncProjectService) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.config.MaxAttempts-1)), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		s.logger.Warn("Request attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, policy)
}

func isTransient(err error) bool {
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var domainErr *shared.DomainError
	return !errors.As(err, &domainErr)
}

func requestID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func parseProjectID(id string) (uuid.UUID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.Nil, ErrUnknownRequest.Withf("Project id must not be blank")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrUnknownRequest.Withf("Project id is not valid")
	}
	return parsed, nil
}
