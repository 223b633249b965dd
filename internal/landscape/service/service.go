package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"landscape/internal/landscape/categorymap"
	"landscape/internal/landscape/emit"
	"landscape/internal/landscape/merge"
	"landscape/internal/landscape/models"
	"landscape/internal/landscape/normalize"
)

// Source returns the raw project records for a run: the registry client or
// a local export.
type Source interface {
	FetchAll(ctx context.Context) ([]models.RegistryRecord, error)
}

// LogoFetcher downloads logos and reports the file name to use per project.
type LogoFetcher interface {
	Fetch(ctx context.Context, entries []models.Entry) (map[models.ProjectID]string, error)
}

type Metrics interface {
	SetRunTotals(fetched, emitted, unmapped, stale int)
	ObserveRun(start time.Time, succeeded bool)
}

// Service runs the generation pipeline: load the category map, fetch,
// normalize, merge, then emit.
type Service struct {
	source    Source
	logos     LogoFetcher
	emitter   *emit.Emitter
	mergeOpts merge.Options
	logger    *slog.Logger
	metrics   Metrics
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogoFetcher enables logo downloads. Without it the document references
// logo URLs directly.
func WithLogoFetcher(f LogoFetcher) Option {
	return func(s *Service) {
		s.logos = f
	}
}

func WithEmitter(e *emit.Emitter) Option {
	return func(s *Service) {
		s.emitter = e
	}
}

func WithMergeOptions(opts merge.Options) Option {
	return func(s *Service) {
		s.mergeOpts = opts
	}
}

// New constructs a Service.
func New(source Source, opts ...Option) *Service {
	s := &Service{
		source:  source,
		emitter: emit.New(),
		logger:  slog.Default(),
		tracer:  otel.Tracer("landscape/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunRequest names the inputs and output of one run.
type RunRequest struct {
	CategoriesPath string
	OutputPath     string
}

// Summary describes a successful run.
type Summary struct {
	RunID    string
	Fetched  int
	Emitted  int
	Unmapped []models.ProjectID
	Stale    []models.ProjectID
	Duration time.Duration
}

// Run generates the landscape document. The category map is loaded before
// anything touches the network, and the output file is only replaced once
// every stage has succeeded.
func (s *Service) Run(ctx context.Context, req RunRequest) (summary *Summary, err error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	ctx, span := s.tracer.Start(ctx, "landscape.Run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("output", req.OutputPath),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveRun(start, err == nil)
		}
	}()

	logger.InfoContext(ctx, "landscape run started", "categories", req.CategoriesPath, "output", req.OutputPath)

	var categories *models.CategoryMap
	if err = s.stage(ctx, "load_categories", func(context.Context) error {
		categories, err = categorymap.Load(req.CategoriesPath)
		return err
	}); err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "category map loaded", "projects", categories.Len())

	var records []models.RegistryRecord
	if err = s.stage(ctx, "fetch", func(ctx context.Context) error {
		records, err = s.source.FetchAll(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	var projects []models.Project
	if err = s.stage(ctx, "normalize", func(context.Context) error {
		projects, err = normalize.NormalizeAll(records)
		return err
	}); err != nil {
		return nil, err
	}

	var result *merge.Result
	if err = s.stage(ctx, "merge", func(context.Context) error {
		result, err = merge.Merge(projects, categories, s.mergeOpts)
		return err
	}); err != nil {
		return nil, err
	}
	for _, entry := range result.Entries {
		if entry.Unmapped {
			logger.WarnContext(ctx, "project has no category mapping",
				"project_id", entry.ID,
				"category", entry.Category,
				"subcategory", entry.Subcategory,
			)
		}
	}
	for _, id := range result.Stale {
		logger.WarnContext(ctx, "category mapping refers to a project the registry did not return", "project_id", id)
	}

	var logos map[models.ProjectID]string
	if s.logos != nil {
		if err = s.stage(ctx, "logos", func(ctx context.Context) error {
			logos, err = s.logos.Fetch(ctx, result.Entries)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if err = s.stage(ctx, "emit", func(context.Context) error {
		return s.emitter.Emit(result.Entries, req.OutputPath, emit.Layout{Categories: categories, Logos: logos})
	}); err != nil {
		return nil, err
	}

	summary = &Summary{
		RunID:    runID,
		Fetched:  len(records),
		Emitted:  len(result.Entries),
		Unmapped: result.Unmapped,
		Stale:    result.Stale,
		Duration: time.Since(start),
	}
	if s.metrics != nil {
		s.metrics.SetRunTotals(summary.Fetched, summary.Emitted, len(summary.Unmapped), len(summary.Stale))
	}
	logger.InfoContext(ctx, "landscape generated",
		"output", req.OutputPath,
		"fetched", summary.Fetched,
		"emitted", summary.Emitted,
		"unmapped", len(summary.Unmapped),
		"stale", len(summary.Stale),
		"duration", summary.Duration,
	)
	return summary, nil
}

// stage runs fn inside its own span.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "landscape."+name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
