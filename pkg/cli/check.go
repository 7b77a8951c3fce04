package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	"github.com/m-mizutani/tagwatch/pkg/presenter"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

func cmdCheck() *cli.Command {
	var (
		githubCfg    config.GitHub
		storeCfg     config.Store
		reconcileCfg config.Reconcile
		slackCfg     config.Slack
		prefillPath  string
		format       string
		updatedOnly  bool
	)

	flags := []cli.Flag{
		prefillFlag(&prefillPath),
		formatFlag(&format),
		&cli.BoolFlag{
			Name:        "updated-only",
			Aliases:     []string{"u"},
			Usage:       "Show only repositories whose tag changed",
			Destination: &updatedOnly,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, reconcileCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "check",
		Aliases: []string{"main"},
		Usage:   "Look up latest releases of tracked repositories and report changed tags",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w, errw := c.Root().Writer, c.Root().ErrWriter

			db, closeDB, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			if err := prefill(ctx, db, prefillPath, errw); err != nil {
				return err
			}

			opts := reconcileCfg.Options()
			if notifier := slackCfg.Configure(); notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}

			result, err := usecase.NewTag(githubClient, db, opts...).Refresh(ctx)
			if err != nil {
				return err
			}

			if format == formatJSON {
				out := *result
				if updatedOnly {
					out.Changes = out.Changes.Changed()
				}
				return presenter.WriteJSON(w, &out)
			}

			if err := presenter.WriteChangeTable(w, result.Changes, updatedOnly); err != nil {
				return err
			}
			return presenter.WriteWarnings(errw, result.Warnings)
		},
	}
}
