// Package jobs defines background task types and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeIntegrityScan sweeps stored grants for permissions that are
	// no longer in the catalog.
	TaskTypeIntegrityScan = "authz:integrity_scan"
)

// IntegrityScanPayload parameterizes a grant integrity sweep.
type IntegrityScanPayload struct {
	// Concurrency bounds the per-user fan-out; zero means the default.
	Concurrency int `json:"concurrency,omitempty"`
}

// NewIntegrityScanTask constructs an Asynq task.
func NewIntegrityScanTask(payload IntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeIntegrityScan, data), nil
}
