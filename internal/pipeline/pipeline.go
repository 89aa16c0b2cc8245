// Package pipeline orchestrates one batch run: extract, clean, check
// consistency, merge, select new metadata and load.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stocketl/internal/extract"
	"stocketl/internal/load"
	"stocketl/internal/metrics"
	"stocketl/internal/models"
	"stocketl/internal/store"
	"stocketl/internal/transform"
	"stocketl/internal/uuid"
)

// Stage names a step of the run in logs, metrics and the run audit entry.
type Stage string

const (
	StageExtract     Stage = "extract"
	StagePreprocess  Stage = "preprocess"
	StageConsistency Stage = "consistency"
	StageMerge       Stage = "merge"
	StageQuery       Stage = "query"
	StageSelect      Stage = "select"
	StageLoad        Stage = "load"
)

// Extractor reads the raw datasets of a run.
type Extractor interface {
	Extract(ctx context.Context) (*extract.Extracted, error)
}

// Loader appends the new metadata and the enriched prices.
type Loader interface {
	Load(ctx context.Context, newMetadata []models.StockMetadata, prices []models.StockPrice) (*load.Result, error)
}

// RunResult contains the outcome of a successful run.
type RunResult struct {
	RunID           string
	StartedAt       time.Time
	PrimaryRows     int
	SecondaryRows   int
	MetadataRows    int
	NewMetadataRows int
	PriceRows       int
	Duration        time.Duration
}

// Pipeline runs the stock ETL once per Run call.
type Pipeline struct {
	extractor Extractor
	store     store.Store
	loader    Loader
	metrics   *metrics.Recorder
	log       *zap.SugaredLogger
	now       func() time.Time
	newRunID  func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the source of the run timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID sets the run identifier generator.
func WithRunID(newRunID func() string) Option {
	return func(p *Pipeline) { p.newRunID = newRunID }
}

// WithMetrics records stage durations, row counts and the outcome on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = r }
}

// New creates a Pipeline.
func New(extractor Extractor, s store.Store, loader Loader, log *zap.SugaredLogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		store:     s,
		loader:    loader,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newRunID:  uuid.New,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes a single cycle. Each stage consumes only the completed output
// of the previous one, and the first failure aborts the run. Every run,
// successful or not, leaves an EtlRuns entry.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	runAt := p.now()
	result := &RunResult{RunID: p.newRunID(), StartedAt: runAt}
	log := p.log.With("run_id", result.RunID)

	log.Infow("Starting stocks ETL run", "run_at", runAt)
	stage, err := p.run(ctx, log, runAt, result)

	finishedAt := p.now()
	result.Duration = finishedAt.Sub(runAt)
	p.finish(ctx, result, finishedAt, stage, err)

	if err != nil {
		log.Errorw("Stocks ETL run failed", "stage", stage, "error", err)
		return nil, err
	}
	log.Infow("Stocks ETL run completed",
		"new_metadata_rows", result.NewMetadataRows,
		"price_rows", result.PriceRows,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// run executes the stages in order and returns the stage that failed, if any.
func (p *Pipeline) run(ctx context.Context, log *zap.SugaredLogger, runAt time.Time, result *RunResult) (Stage, error) {
	// 1. Extract.
	var raw *extract.Extracted
	if err := p.timed(log, StageExtract, func() (err error) {
		raw, err = p.extractor.Extract(ctx)
		return err
	}); err != nil {
		return StageExtract, err
	}
	p.countRows(transform.DatasetPrimary, "extracted", len(raw.Primary))
	p.countRows(transform.DatasetSecondary, "extracted", len(raw.Secondary))
	p.countRows(transform.DatasetMetadata, "extracted", len(raw.Metadata))

	// 2. Clean each dataset.
	var primary, secondary []models.PriceRecord
	var metadata []models.MetadataRecord
	if err := p.timed(log, StagePreprocess, func() (err error) {
		if primary, err = transform.CleanPrices(log, transform.DatasetPrimary, raw.Primary); err != nil {
			return err
		}
		if secondary, err = transform.CleanPrices(log, transform.DatasetSecondary, raw.Secondary); err != nil {
			return err
		}
		metadata, err = transform.CleanMetadata(log, raw.Metadata)
		return err
	}); err != nil {
		return StagePreprocess, err
	}
	result.PrimaryRows, result.SecondaryRows, result.MetadataRows = len(primary), len(secondary), len(metadata)
	p.countRows(transform.DatasetPrimary, "cleaned", len(primary))
	p.countRows(transform.DatasetSecondary, "cleaned", len(secondary))
	p.countRows(transform.DatasetMetadata, "cleaned", len(metadata))

	// 3. Every price code must have metadata.
	if err := p.timed(log, StageConsistency, func() error {
		return transform.CheckConsistency(transform.PriceCodes(primary, secondary), transform.MetadataCodes(metadata))
	}); err != nil {
		return StageConsistency, err
	}

	// 4. Merge and derive market capitalization.
	var prices []models.StockPrice
	p.measure(log, StageMerge, func() {
		prices = transform.MergePrices(primary, secondary, metadata, runAt)
	})

	// 5. Codes already persisted.
	existing := transform.CodeSet{}
	if err := p.timed(log, StageQuery, func() error {
		codes, err := p.store.ExistingSecuritiesCodes(ctx)
		if err != nil {
			return err
		}
		for _, c := range codes {
			existing.Add(c)
		}
		return nil
	}); err != nil {
		return StageQuery, err
	}

	// 6. Metadata not yet persisted.
	var newMetadata []models.StockMetadata
	p.measure(log, StageSelect, func() {
		newMetadata = transform.SelectNewMetadata(metadata, existing, runAt)
	})
	log.Infow("Selected new stocks metadata", "existing", len(existing), "new", len(newMetadata))

	// 7. Load.
	var loaded *load.Result
	if err := p.timed(log, StageLoad, func() (err error) {
		loaded, err = p.loader.Load(ctx, newMetadata, prices)
		return err
	}); err != nil {
		return StageLoad, err
	}
	result.NewMetadataRows, result.PriceRows = loaded.MetadataRows, loaded.PriceRows
	p.countRows(transform.DatasetMetadata, "loaded", loaded.MetadataRows)
	p.countRows("prices", "loaded", loaded.PriceRows)

	return "", nil
}

// timed runs one stage, logging and recording how long it took.
func (p *Pipeline) timed(log *zap.SugaredLogger, stage Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	p.observe(log, stage, time.Since(start), err)
	return err
}

func (p *Pipeline) observe(log *zap.SugaredLogger, stage Stage, elapsed time.Duration, err error) {
	log.Infow("stage completed",
		"stage", stage,
		"duration_ms", elapsed.Milliseconds(),
		"ok", err == nil,
	)
	if p.metrics != nil {
		p.metrics.ObserveStage(string(stage), elapsed)
	}
}

// measure times a stage that cannot fail.
func (p *Pipeline) measure(log *zap.SugaredLogger, stage Stage, fn func()) {
	start := time.Now()
	fn()
	p.observe(log, stage, time.Since(start), nil)
}

func (p *Pipeline) countRows(dataset transform.DatasetKind, phase string, n int) {
	if p.metrics != nil {
		p.metrics.AddRows(string(dataset), phase, n)
	}
}

// finish writes the run audit entry and the outcome metric. It uses a
// context detached from cancellation so a cancelled run is still recorded.
func (p *Pipeline) finish(ctx context.Context, result *RunResult, finishedAt time.Time, stage Stage, runErr error) {
	run := &models.EtlRun{
		RunID:           result.RunID,
		StartedAt:       result.StartedAt,
		FinishedAt:      finishedAt,
		Status:          models.RunStatusSucceeded,
		PrimaryRows:     result.PrimaryRows,
		SecondaryRows:   result.SecondaryRows,
		MetadataRows:    result.MetadataRows,
		NewMetadataRows: result.NewMetadataRows,
		PriceRows:       result.PriceRows,
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Stage = string(stage)
		run.Error = runErr.Error()
	}
	p.store.RecordRun(context.WithoutCancel(ctx), run)

	if p.metrics != nil {
		p.metrics.SetOutcome(runErr == nil, finishedAt)
	}
}
