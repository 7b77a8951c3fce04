package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/presenter"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

func cmdCompare() *cli.Command {
	var (
		githubCfg    config.GitHub
		reconcileCfg config.Reconcile
		format       string
		updatedOnly  bool
	)

	flags := []cli.Flag{
		formatFlag(&format),
		&cli.BoolFlag{
			Name:        "updated-only",
			Aliases:     []string{"u"},
			Usage:       "Show only repositories with a newer tag",
			Destination: &updatedOnly,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, reconcileCfg.Flags()...)

	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare versions listed as owner/repo:version in a file with latest releases",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return goerr.New("version list file is required")
			}

			lines, err := readListFile(c.Args().First())
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return goerr.New("no entry in version list file", goerr.V("path", c.Args().First()))
			}

			entries := make([]*model.VersionEntry, len(lines))
			for i, line := range lines {
				entries[i] = model.ParseVersionEntry(line)
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.NewRelease(githubClient, int(reconcileCfg.Concurrency))
			changes, warnings := uc.Compare(ctx, entries)

			if format == formatJSON {
				if updatedOnly {
					changes = changes.Changed()
				}
				return presenter.WriteJSON(c.Root().Writer, &compareReport{
					Repositories: changes,
					Warnings:     warnings,
				})
			}
			if err := presenter.WriteChangeTable(c.Root().Writer, changes, updatedOnly); err != nil {
				return err
			}
			return presenter.WriteWarnings(c.Root().ErrWriter, warnings)
		},
	}
}

// compareReport is the JSON output of the compare command
type compareReport struct {
	Repositories model.ChangeRecords `json:"repositories"`
	Warnings     []*model.Warning    `json:"warnings"`
}
