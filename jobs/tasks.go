package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBackendProbe checks that the clinical backend answers.
	TaskBackendProbe = "backend:probe"

	probeMaxRetry = 3
	probeTimeout  = 15 * time.Second
)

// BackendProbePayload carries scheduling metadata.
type BackendProbePayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewBackendProbeTask constructs the reachability probe task.
func NewBackendProbeTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(BackendProbePayload{RequestedAt: at.UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBackendProbe, body,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(probeMaxRetry),
		asynq.Timeout(probeTimeout),
	), nil
}
