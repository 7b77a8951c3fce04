package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

// Reconcile holds settings shared by commands that query GitHub in bulk
type Reconcile struct {
	Concurrency int64
}

// Flags returns CLI flags for reconciliation
func (c *Reconcile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "concurrency",
			Usage:       "Number of parallel GitHub lookups",
			Value:       usecase.DefaultConcurrency,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("TAGWATCH_CONCURRENCY"),
		},
	}
}

// Options returns use case options for the configured settings
func (c *Reconcile) Options() []usecase.TagOption {
	return []usecase.TagOption{
		usecase.WithConcurrency(int(c.Concurrency)),
	}
}
