package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	controller "github.com/m-mizutani/tagwatch/pkg/controller/http"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		githubCfg    config.GitHub
		storeCfg     config.Store
		reconcileCfg config.Reconcile
		slackCfg     config.Slack
		prefillPath  string
	)

	flags := []cli.Flag{prefillFlag(&prefillPath)}
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, reconcileCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			db, closeDB, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			if err := prefill(ctx, db, prefillPath, c.Root().ErrWriter); err != nil {
				return err
			}

			tagOpts := reconcileCfg.Options()
			if notifier := slackCfg.Configure(); notifier != nil {
				tagOpts = append(tagOpts, usecase.WithNotifier(notifier), usecase.WithAsyncNotify())
			}

			server := controller.NewServer(
				ctx,
				usecase.NewTag(githubClient, db, tagOpts...),
				usecase.NewRepository(db),
				usecase.NewIssue(githubClient, int(reconcileCfg.Concurrency)),
				controller.WithAddr(serverCfg.Addr),
			)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr), slog.String("store", storeCfg.Backend))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server stopped", goerr.V("addr", serverCfg.Addr))
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
