package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"NewsDesk/internal/app"
	"NewsDesk/internal/config"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/usecase"
)

// withApp opens the application for the duration of one command.
func withApp(ctx context.Context, cfg config.Config, logger *slog.Logger, fn func(*app.Application) error) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "Fetch, categorize and review news articles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(cfg, logger),
		newFetchCmd(cfg, logger),
		newCategorizeCmd(cfg, logger),
		newLogsCmd(cfg, logger),
		newSourcesCmd(cfg, logger),
	)
	return root
}

func newServeCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the fetch scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), cfg, logger, func(a *app.Application) error {
				return a.Serve(cmd.Context())
			})
		},
	}
}

func newFetchCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	var (
		sourceID    string
		maxArticles int
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch articles from every active source, or from one with --source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), cfg, logger, func(a *app.Application) error {
				var (
					result domain.FetchJobResult
					err    error
				)
				if sourceID != "" {
					result, err = a.Fetcher.FetchSource(cmd.Context(), sourceID, maxArticles)
				} else {
					result, err = a.Fetcher.FetchAll(cmd.Context(), maxArticles)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&sourceID, "source", "", "fetch a single source by id")
	cmd.Flags().IntVar(&maxArticles, "max", 0, "per-source article cap (0 uses the configured default)")
	return cmd
}

func newCategorizeCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize the newest pending articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), cfg, logger, func(a *app.Application) error {
				runLog, err := a.Categorize.Run(cmd.Context(), count, domain.TriggerManual)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), runLog)
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "number of articles to categorize (0 uses the configured default)")
	return cmd
}

func newLogsCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	logs := &cobra.Command{
		Use:   "logs",
		Short: "Inspect and prune run logs",
	}

	var (
		days int
		kind string
	)
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete run logs older than --days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), cfg, logger, func(a *app.Application) error {
				n, err := a.Logs.Cleanup(cmd.Context(), usecase.LogKind(kind), days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d %s logs\n", n, kind)
				return nil
			})
		},
	}
	cleanup.Flags().IntVar(&days, "days", 30, "delete logs older than this many days")
	cleanup.Flags().StringVar(&kind, "kind", string(usecase.LogKindFetch), "log kind: fetch or categorization")

	logs.AddCommand(cleanup)
	return logs
}

func newSourcesCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	sources := &cobra.Command{
		Use:   "sources",
		Short: "Manage article sources",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List configured sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), cfg, logger, func(a *app.Application) error {
				out, err := a.Sources.List(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}

	var (
		sourceType string
		inactive   bool
	)
	add := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Register a new source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, logger, func(a *app.Application) error {
				active := !inactive
				src, err := a.Sources.Create(cmd.Context(), usecase.SourceInput{
					Name:     args[0],
					URL:      args[1],
					Type:     sourceType,
					IsActive: &active,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), src)
			})
		},
	}
	add.Flags().StringVar(&sourceType, "type", string(domain.SourceRSS), "source type: rss or html")
	add.Flags().BoolVar(&inactive, "inactive", false, "create the source disabled")

	sources.AddCommand(list, add)
	return sources
}
