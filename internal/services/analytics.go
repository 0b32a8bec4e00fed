package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
)

// Analytics runs the dashboard pipeline against a DatasetSource. Every call
// opens the dataset afresh; nothing computed for one selection is reused.
type Analytics struct {
	source  DatasetSource
	logger  *slog.Logger
	metrics *observability.Metrics

	runs        atomic.Int64
	emptyRuns   atomic.Int64
	failedRuns  atomic.Int64
	lastRows    atomic.Int64
	lastDataset atomic.Value // string

	mu      sync.RWMutex
	lastRun time.Time
}

func NewAnalytics(source DatasetSource, logger *slog.Logger, metrics *observability.Metrics) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		source:  source,
		logger:  logger,
		metrics: metrics,
	}
}

// Options returns the multiselect values of the active dataset.
func (a *Analytics) Options(ctx context.Context) (*models.Options, *models.Dataset, error) {
	ds, err := a.source.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	return DatasetOptions(ds), ds, nil
}

// Dashboard loads the active dataset and renders it for sel. Nil region or
// category lists in sel fall back to the dataset defaults.
func (a *Analytics) Dashboard(ctx context.Context, sel models.Selection) (*models.ViewModel, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "dashboard.pipeline")
	defer func() {
		span.Finish()
		span.Log(ctx, a.logger)
	}()

	ds, err := a.source.Open(ctx)
	if err != nil {
		span.SetError(err)
		a.record(observability.OutcomeError, 0, 0, start)
		return nil, err
	}
	span.SetTag("dataset", ds.Name)

	sel = DefaultSelection(ds, sel)
	view, err := Render(ds, sel)
	if err != nil {
		span.SetError(err)
		a.record(observability.OutcomeError, ds.Len(), 0, start)
		return nil, fmt.Errorf("render dashboard: %w", err)
	}
	span.SetTag("filtered_rows", strconv.Itoa(view.RowCount))

	outcome := observability.OutcomeOK
	if view.Empty {
		outcome = observability.OutcomeEmpty
	}
	a.lastDataset.Store(ds.Name)
	a.record(outcome, ds.Len(), view.RowCount, start)

	a.logger.DebugContext(ctx, "dashboard rendered",
		"dataset", ds.Name,
		"records", ds.Len(),
		"filtered", view.RowCount,
		"empty", view.Empty,
		"duration", time.Since(start))

	return view, nil
}

// Filtered returns the rows matching sel, or ErrEmptyResult.
func (a *Analytics) Filtered(ctx context.Context, sel models.Selection) (*models.Dataset, error) {
	ds, err := a.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(ds, DefaultSelection(ds, sel))
}

func (a *Analytics) Upload(ctx context.Context, filename string, content []byte) (*models.Upload, error) {
	upload, err := a.source.Upload(ctx, filename, content)
	if err != nil {
		a.metrics.ObserveUpload(observability.OutcomeError)
		return nil, err
	}
	a.metrics.ObserveUpload(observability.OutcomeOK)
	return upload, nil
}

func (a *Analytics) Reset(ctx context.Context) error {
	return a.source.Reset(ctx)
}

func (a *Analytics) record(outcome string, datasetRows, filteredRows int, start time.Time) {
	a.runs.Add(1)
	switch outcome {
	case observability.OutcomeEmpty:
		a.emptyRuns.Add(1)
	case observability.OutcomeError:
		a.failedRuns.Add(1)
	}
	a.lastRows.Store(int64(datasetRows))

	a.mu.Lock()
	a.lastRun = time.Now()
	a.mu.Unlock()

	a.metrics.ObservePipeline(outcome, datasetRows, filteredRows, time.Since(start))
}

// Stats reports counters for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	lastRun := a.lastRun
	a.mu.RUnlock()

	dataset, _ := a.lastDataset.Load().(string)

	return map[string]any{
		"runs":         a.runs.Load(),
		"empty_runs":   a.emptyRuns.Load(),
		"failed_runs":  a.failedRuns.Load(),
		"record_count": a.lastRows.Load(),
		"dataset":      dataset,
		"last_run":     lastRun,
	}
}

// IsLoadError reports whether err came from decoding a dataset.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrLoad)
}
