package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/presenter"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func formatFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "Output format (text, json)",
		Value:       formatText,
		Destination: dest,
		Validator: func(s string) error {
			if s != formatText && s != formatJSON {
				return goerr.New("format must be text or json", goerr.V("format", s))
			}
			return nil
		},
	}
}

func prefillFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "prefill",
		Usage:       "File of repositories to register first (.txt, .toml, .yaml)",
		Destination: dest,
		Sources:     cli.EnvVars("TAGWATCH_PREFILL"),
	}
}

// prefill imports path into db when set and prints warnings to errw
func prefill(ctx context.Context, db interfaces.Database, path string, errw io.Writer) error {
	if path == "" {
		return nil
	}

	_, warnings, err := usecase.NewRepository(db).Import(ctx, path)
	if err != nil {
		return err
	}
	return presenter.WriteWarnings(errw, warnings)
}

// readListFile returns the non-empty lines of path. "#" starts a comment line.
func readListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open list file", goerr.V("path", path))
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read list file", goerr.V("path", path))
	}

	return lines, nil
}
