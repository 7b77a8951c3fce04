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

func cmdIssues() *cli.Command {
	var (
		githubCfg    config.GitHub
		reconcileCfg config.Reconcile
		format       string
	)

	flags := []cli.Flag{formatFlag(&format)}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, reconcileCfg.Flags()...)

	return &cli.Command{
		Name:      "issues",
		Usage:     "Show status and last comment of issues listed in a file",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return goerr.New("issue list file is required")
			}

			refs, err := readListFile(c.Args().First())
			if err != nil {
				return err
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.NewIssue(githubClient, int(reconcileCfg.Concurrency))
			statuses, warnings := uc.FetchStatuses(ctx, refs)

			if format == formatJSON {
				return presenter.WriteJSON(c.Root().Writer, &issueReport{
					Issues:   statuses,
					Warnings: warnings,
				})
			}
			if err := presenter.WriteIssueTable(c.Root().Writer, statuses); err != nil {
				return err
			}
			return presenter.WriteWarnings(c.Root().ErrWriter, warnings)
		},
	}
}

// issueReport is the JSON output of the issues command
type issueReport struct {
	Issues   []*model.IssueStatus `json:"issues"`
	Warnings []*model.Warning     `json:"warnings"`
}
