package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	"github.com/m-mizutani/tagwatch/pkg/presenter"
)

func cmdHistory() *cli.Command {
	var (
		storeCfg config.Store
		format   string
	)

	return &cli.Command{
		Name:  "history",
		Usage: "Show stored tags of tracked repositories",
		Flags: append([]cli.Flag{formatFlag(&format)}, storeCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			db, closeDB, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			records, err := db.ListTags(ctx)
			if err != nil {
				return err
			}

			if format == formatJSON {
				return presenter.WriteJSON(c.Root().Writer, records)
			}
			return presenter.WriteHistoryTable(c.Root().Writer, records)
		},
	}
}
