package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFromInfo(t *testing.T) {
	stats := statsFromInfo(&asynq.QueueInfo{Queue: "default", Pending: 2, Active: 1, Scheduled: 4, Retry: 3})
	assert.Equal(t, QueueStats{Queue: "default", Pending: 2, Active: 1, Scheduled: 4, Retry: 3}, stats)

	assert.Equal(t, QueueStats{Queue: "default"}, statsFromInfo(nil))
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, QueueStats{Queue: "default", Pending: 7}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"QUEUE", "PENDING", "ACTIVE", "SCHEDULED", "RETRY"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"default", "7", "0", "0", "0"}, strings.Fields(lines[1]))
}

func TestNilCLIGuards(t *testing.T) {
	var c *JobsCLI
	_, err := c.TriggerWarmup(context.Background(), false)
	assert.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	assert.Error(t, err)
}
