package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotWarmup reloads the catalog and order snapshot into the cache.
	TaskSnapshotWarmup = "snapshot:warmup"
)

// SnapshotWarmupPayload describes one warmup run. Refresh bumps the cache
// version before loading. Scheduled tasks carry no RunID; the handler mints
// one per execution.
type SnapshotWarmupPayload struct {
	RunID   string `json:"run_id,omitempty"`
	Refresh bool   `json:"refresh"`
	Reason  string `json:"reason,omitempty"`
}

// NewSnapshotWarmupTask constructs an Asynq task with a fresh run id.
func NewSnapshotWarmupTask(reason string, refresh bool) (*asynq.Task, error) {
	data, err := json.Marshal(SnapshotWarmupPayload{
		RunID:   uuid.NewString(),
		Refresh: refresh,
		Reason:  reason,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotWarmup, data), nil
}

// NewScheduledWarmupTask builds the task registered with the cron scheduler.
func NewScheduledWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(SnapshotWarmupPayload{Reason: "cron"})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotWarmup, data), nil
}
