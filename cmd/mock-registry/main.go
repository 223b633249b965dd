package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"landscape/internal/platform/httpserver"
	"landscape/internal/platform/logger"
	"landscape/internal/registry/mockserver"
)

// mock-registry serves a fixture file with the registry's pagination
// contract, for local runs of the generator.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		fixture   string
		addr      string
		pageSize  int
		failFirst int
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:           "mock-registry",
		Short:         "Serve a project fixture with registry-style pagination",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New(logLevel, "text", cmd.ErrOrStderr())
			projects, err := mockserver.LoadFixture(fixture)
			if err != nil {
				return err
			}
			mock := mockserver.New(projects,
				mockserver.WithPageSize(pageSize),
				mockserver.WithFailFirst(failFirst),
				mockserver.WithLogger(log),
			)
			log.InfoContext(cmd.Context(), "serving fixture",
				"fixture", fixture,
				"projects", len(projects),
				"path", mockserver.ProjectsPath,
			)
			return httpserver.Serve(cmd.Context(), httpserver.New(addr, mock.Router()), log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fixture, "fixture", "", "JSON array of registry projects to serve (required)")
	flags.StringVar(&addr, "addr", ":8081", "Listen address")
	flags.IntVar(&pageSize, "page-size", 20, "Default page size")
	flags.IntVar(&failFirst, "fail-first", 0, "Answer the first N requests with 503")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}
