package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	app, logger := newCommand()

	if err := app.Run(ctx, args); err != nil {
		logger().Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}

// newCommand builds the application. The returned function yields the
// configured logger, or the default one when configuration did not run.
func newCommand() (*cli.Command, func() *slog.Logger) {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		logger    *slog.Logger
		flush     = func() {}
	)

	return &cli.Command{
		Name:    types.ServiceName,
		Usage:   "Track the latest GitHub releases of repositories and report tag changes",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			if flush, err = sentryCfg.Configure(); err != nil {
				return nil, err
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flush != nil {
				flush()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdCheck(),
			cmdAdd(),
			cmdHistory(),
			cmdGet(),
			cmdBulkGet(),
			cmdCompare(),
			cmdIssues(),
			cmdServe(),
			cmdMCP(),
		},
	}, func() *slog.Logger {
		if logger == nil {
			return slog.Default()
		}
		return logger
	}
}
