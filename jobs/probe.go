package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/clinicportal/clinicportal/internal/jobs"
)

const (
	statusKey = "portal:backend:status"
	statusTTL = 5 * time.Minute

	// StatusUp and StatusDown are the probe outcomes.
	StatusUp   = "up"
	StatusDown = "down"
)

// BackendStatus is the last recorded probe outcome.
type BackendStatus struct {
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}

// Up reports whether the backend answered the last probe.
func (s BackendStatus) Up() bool {
	return s.Status == StatusUp
}

// StatusStore keeps the probe outcome in Redis so the web process can show it.
type StatusStore struct {
	client *redis.Client
}

// NewStatusStore constructs a StatusStore.
func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{client: client}
}

// Save writes status with the store TTL.
func (s *StatusStore) Save(ctx context.Context, status BackendStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statusKey, data, statusTTL).Err()
}

// Latest returns the last status. ok is false when no probe ran within the TTL.
func (s *StatusStore) Latest(ctx context.Context) (BackendStatus, bool, error) {
	if s == nil || s.client == nil {
		return BackendStatus{}, false, nil
	}
	data, err := s.client.Get(ctx, statusKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return BackendStatus{}, false, nil
		}
		return BackendStatus{}, false, err
	}
	var status BackendStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return BackendStatus{}, false, fmt.Errorf("jobs: decode backend status: %w", err)
	}
	return status, true, nil
}

// Pinger checks backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendProbeJob pings the clinical backend and records the outcome.
type BackendProbeJob struct {
	API     Pinger
	Store   *StatusStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewBackendProbeJob wires dependencies for the probe handler.
func NewBackendProbeJob(api Pinger, store *StatusStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *BackendProbeJob {
	return &BackendProbeJob{
		API:     api,
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskBackendProbe tasks. A failed ping is recorded and then
// returned so the queue retries it.
func (j *BackendProbeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.API == nil {
		return errors.New("backend probe: handler not configured")
	}
	var payload BackendProbePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("backend probe: %v: %w", err, asynq.SkipRetry)
	}

	pingErr := j.API.Ping(ctx)
	status := BackendStatus{Status: StatusUp, CheckedAt: j.clock()}
	if pingErr != nil {
		status.Status = StatusDown
		status.Error = pingErr.Error()
	}
	j.Metrics.SetBackendUp(pingErr == nil)

	if j.Store != nil {
		if err := j.Store.Save(ctx, status); err != nil {
			j.logger().Error("store backend status", slog.Any("error", err))
			return err
		}
	}
	if pingErr != nil {
		j.logger().Warn("backend probe", slog.String("status", status.Status), slog.Any("error", pingErr))
		return pingErr
	}
	j.logger().Debug("backend probe", slog.String("status", status.Status))
	return nil
}

func (j *BackendProbeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
