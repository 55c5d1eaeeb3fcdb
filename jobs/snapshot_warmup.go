package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/simbi/simbi-seller/internal/analytics"
	"github.com/simbi/simbi-seller/internal/commerce"
	jobmetrics "github.com/simbi/simbi-seller/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotLoader loads a consistent products and orders pair.
type SnapshotLoader interface {
	Snapshot(ctx context.Context) (commerce.Snapshot, error)
}

// Invalidator drops cached snapshots.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// SnapshotWarmupJob pre-populates the snapshot cache so the first dashboard
// request after an expiry does not pay for the database round trip.
type SnapshotWarmupJob struct {
	Loader      SnapshotLoader
	Invalidator Invalidator
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	Timeout     time.Duration
	clock       func() time.Time
}

// NewSnapshotWarmupJob wires dependencies for the warmup handler.
func NewSnapshotWarmupJob(loader SnapshotLoader, invalidator Invalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotWarmupJob {
	return &SnapshotWarmupJob{
		Loader:      loader,
		Invalidator: invalidator,
		Logger:      logger,
		Metrics:     metrics,
		Timeout:     20 * time.Second,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes snapshot warmup tasks.
func (j *SnapshotWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Loader == nil {
		return errors.New("snapshot warmup: handler not configured")
	}
	var payload SnapshotWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	if payload.RunID == "" {
		payload.RunID = uuid.NewString()
	}

	tracker := j.metrics().Track(TaskSnapshotWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("run_id", payload.RunID))
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}
	logger.Info("starting snapshot warmup")
	start := j.now()

	runCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	if payload.Refresh && j.Invalidator != nil {
		if err := j.Invalidator.Invalidate(runCtx); err != nil {
			logger.Warn("invalidate snapshot cache", slog.Any("error", err))
		}
	}

	snap, err := j.Loader.Snapshot(runCtx)
	if err != nil {
		resultErr = err
		logger.Error("load snapshot", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddWarmed("products", len(snap.Products))
	j.metrics().AddWarmed("orders", len(snap.Orders))

	kpis := analytics.ComputeKPIs(snap.Products, snap.Orders, start)
	logger.Info("completed snapshot warmup",
		slog.Int("products", len(snap.Products)),
		slog.Int("orders", len(snap.Orders)),
		slog.Float64("total_revenue", kpis.TotalRevenue),
		slog.Int("unfulfilled", kpis.UnfulfilledOrders),
		slog.Duration("duration", j.now().Sub(start)),
	)
	return resultErr
}

func (j *SnapshotWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSnapshotWarmup))
	}
	return slog.Default().With(slog.String("job", TaskSnapshotWarmup))
}

func (j *SnapshotWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SnapshotWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
