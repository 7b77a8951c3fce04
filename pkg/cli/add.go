package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

func cmdAdd() *cli.Command {
	var storeCfg config.Store

	return &cli.Command{
		Name:      "add",
		Usage:     "Register repositories to track",
		ArgsUsage: "OWNER/NAME...",
		Flags:     storeCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() == 0 {
				return goerr.New("at least one repository is required")
			}

			db, closeDB, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			uc := usecase.NewRepository(db)
			for _, raw := range c.Args().Slice() {
				repo, added, err := uc.Add(ctx, raw)
				if err != nil {
					return err
				}

				if added {
					fmt.Fprintf(c.Root().Writer, "added %s\n", repo)
				} else {
					fmt.Fprintf(c.Root().Writer, "%s is already tracked\n", repo)
				}
			}
			return nil
		},
	}
}
