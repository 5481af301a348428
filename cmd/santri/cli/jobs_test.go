package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santri-erp/santri-erp/internal/app"
	"github.com/santri-erp/santri-erp/jobs"
)

func TestBuildTaskAcceptsAliases(t *testing.T) {
	for name, want := range map[string]string{
		"integrity":                jobs.TaskLedgerIntegrity,
		jobs.TaskLedgerIntegrity:   jobs.TaskLedgerIntegrity,
		"warmup":                   jobs.TaskLedgerCacheWarmup,
		jobs.TaskLedgerCacheWarmup: jobs.TaskLedgerCacheWarmup,
	} {
		task, err := BuildTask(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, task.Type())

		var payload struct {
			Trigger string `json:"trigger"`
		}
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		assert.Equal(t, "cli", payload.Trigger)
	}

	_, err := BuildTask("mail:send")
	require.Error(t, err)
}

func TestJobsCLIRequiresConfiguration(t *testing.T) {
	var c *JobsCLI
	_, err := c.Trigger(context.Background(), "integrity")
	require.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	require.Error(t, err)

	_, err = NewJobsCLI(asynq.RedisClientOpt{})
	require.Error(t, err)
}

func TestTriggerCommandRejectsUnknownJobBeforeConnecting(t *testing.T) {
	loads := 0
	cmd := NewJobsCommand(func() (*app.Config, error) {
		loads++
		return nil, errors.New("no config")
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"trigger", "reindex"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported job reindex")
	assert.Zero(t, loads)
}

func TestTriggerCommandSurfacesConfigError(t *testing.T) {
	cmd := NewJobsCommand(func() (*app.Config, error) {
		return nil, errors.New("postgres dsn must be provided")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"trigger", "integrity"})

	err := cmd.Execute()
	require.EqualError(t, err, "postgres dsn must be provided")
}
