package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"landscape/internal/landscape/emit"
	"landscape/internal/landscape/logos"
	"landscape/internal/landscape/merge"
	"landscape/internal/landscape/service"
	"landscape/internal/platform/config"
	"landscape/internal/platform/logger"
	"landscape/internal/platform/metrics"
	"landscape/internal/registry"
	dErrors "landscape/pkg/domain-errors"
)

// Process exit codes, one per failure class.
const (
	exitOK                  = 0
	exitInternal            = 1
	exitConfig              = 2
	exitRegistryUnavailable = 3
	exitRegistryResponse    = 4
	exitInvalidRecord       = 5
	exitUnmappedProject     = 6
	exitWrite               = 7
)

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeConfig:
		return exitConfig
	case dErrors.CodeRegistryUnavailable:
		return exitRegistryUnavailable
	case dErrors.CodeRegistryResponse:
		return exitRegistryResponse
	case dErrors.CodeInvalidRecord:
		return exitInvalidRecord
	case dErrors.CodeUnmappedProject:
		return exitUnmappedProject
	case dErrors.CodeWrite:
		return exitWrite
	default:
		return exitInternal
	}
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}

	root := newRootCmd(&cfg, stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCmd(cfg *config.Config, stdout, stderr io.Writer) *cobra.Command {
	generate := func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd.Context(), *cfg, stdout, stderr)
	}
	noArgs := func(cmd *cobra.Command, args []string) error {
		if err := cobra.NoArgs(cmd, args); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConfig, "invalid arguments")
		}
		return nil
	}

	root := &cobra.Command{
		Use:   "landscape",
		Short: "Generate landscape data from a category map and the project registry",
		Long: `landscape joins a hand-maintained category map with project metadata from
the registry API and writes a landscape2 data file. Running it without a
subcommand is the same as "landscape generate".`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          generate,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return dErrors.Wrap(err, dErrors.CodeConfig, "invalid flags")
	})

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.CategoriesPath, "categories", cfg.CategoriesPath, "Category map YAML file (required)")
	flags.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Landscape data file to write (required)")
	flags.StringVar(&cfg.InputPath, "input", cfg.InputPath, "Read projects from a local registry export instead of the API")
	flags.StringVar(&cfg.RegistryURL, "registry-url", cfg.RegistryURL, "Registry project listing endpoint")
	flags.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Projects requested per registry page")
	flags.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Parallel registry page and logo requests")
	flags.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries per registry request on network errors and 5xx responses")
	flags.DurationVar(&cfg.RetryInitial, "retry-initial", cfg.RetryInitial, "First retry interval")
	flags.DurationVar(&cfg.RetryMax, "retry-max", cfg.RetryMax, "Maximum retry interval")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout for a single registry request")
	flags.StringVar(&cfg.UnmappedPolicy, "unmapped", cfg.UnmappedPolicy, "What to do with projects missing from the category map: bucket|reject")
	flags.StringVar(&cfg.FallbackCategory, "fallback-category", cfg.FallbackCategory, "Category for unmapped projects")
	flags.StringVar(&cfg.FallbackSubcategory, "fallback-subcategory", cfg.FallbackSubcategory, "Subcategory for unmapped projects")
	flags.StringVar(&cfg.DefaultSubcategory, "default-subcategory", cfg.DefaultSubcategory, "Subcategory for mapped projects without one")
	flags.StringVar(&cfg.LogosDir, "logos-dir", cfg.LogosDir, "Download logos into this directory")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write run metrics in Prometheus text format to this file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text|json")

	root.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Fetch registry metadata and write the landscape data file",
		Args:  noArgs,
		RunE:  generate,
	})
	return root
}

func runGenerate(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, stderr)
	m := metrics.New()

	var source service.Source
	if cfg.InputPath != "" {
		source = registry.NewFileSource(cfg.InputPath, log)
	} else {
		client, err := registry.NewClient(registry.Config{
			BaseURL:        cfg.RegistryURL,
			PageSize:       cfg.PageSize,
			MaxRetries:     cfg.Retries,
			InitialBackoff: cfg.RetryInitial,
			MaxBackoff:     cfg.RetryMax,
			Timeout:        cfg.Timeout,
			Concurrency:    cfg.Concurrency,
		}, registry.WithLogger(log), registry.WithMetrics(m))
		if err != nil {
			return err
		}
		source = client
	}

	policy, err := merge.ParsePolicy(cfg.UnmappedPolicy)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeConfig, "invalid unmapped policy")
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithEmitter(emit.New(
			emit.WithDefaultSubcategory(cfg.DefaultSubcategory),
			emit.WithFallbackCategory(cfg.FallbackCategory),
		)),
		service.WithMergeOptions(merge.Options{
			Policy:              policy,
			FallbackCategory:    cfg.FallbackCategory,
			FallbackSubcategory: cfg.FallbackSubcategory,
		}),
	}
	if cfg.LogosDir != "" {
		opts = append(opts, service.WithLogoFetcher(logos.New(cfg.LogosDir,
			logos.WithLogger(log),
			logos.WithMetrics(m),
			logos.WithConcurrency(cfg.Concurrency),
		)))
	}

	summary, runErr := service.New(source, opts...).Run(ctx, service.RunRequest{
		CategoriesPath: cfg.CategoriesPath,
		OutputPath:     cfg.OutputPath,
	})

	// Metrics are written for failed runs too.
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.WarnContext(ctx, "metrics not written", "path", cfg.MetricsFile, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(stdout, "wrote %d projects to %s (%d unmapped, %d stale mappings)\n",
		summary.Emitted, cfg.OutputPath, len(summary.Unmapped), len(summary.Stale))
	return nil
}
