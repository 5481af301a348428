package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity compares stored account balances with the ledger.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskLedgerCacheWarmup refreshes the cached report listings.
	TaskLedgerCacheWarmup = "ledger:cache_warmup"
)

// IntegrityPayload carries the trigger source of an integrity run.
type IntegrityPayload struct {
	Trigger string `json:"trigger"`
}

// WarmupPayload carries the trigger source of a cache warmup run.
type WarmupPayload struct {
	Trigger string `json:"trigger"`
}

// NewLedgerIntegrityTask constructs an Asynq task for the integrity check.
func NewLedgerIntegrityTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(IntegrityPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewLedgerCacheWarmupTask constructs an Asynq task for the report warmup.
func NewLedgerCacheWarmupTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(WarmupPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerCacheWarmup, data), nil
}
