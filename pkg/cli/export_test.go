package cli

import "github.com/urfave/cli/v3"

func NewCommand() *cli.Command {
	cmd, _ := newCommand()
	return cmd
}
