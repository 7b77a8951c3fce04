package config

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/infra/firestore"
	"github.com/m-mizutani/tagwatch/pkg/infra/flatfile"
	"github.com/m-mizutani/tagwatch/pkg/infra/memory"
	"github.com/m-mizutani/tagwatch/pkg/infra/postgres"
)

// Store backends
const (
	StoreFile      = "file"
	StoreGCS       = "gcs"
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Store holds repository registry and tag history configuration
type Store struct {
	Backend string

	DataDir          string
	RepositoriesFile string
	HistoryFile      string

	GCSBucket string
	GCSPrefix string

	DatabaseURL string

	FirestoreProjectID  string
	FirestoreDatabaseID string
}

// Flags returns CLI flags for store configuration
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Store backend (file, gcs, postgres, firestore, memory)",
			Value:       StoreFile,
			Destination: &c.Backend,
			Sources:     cli.EnvVars("TAGWATCH_STORE"),
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory of repository and history files for the file store",
			Value:       ".",
			Destination: &c.DataDir,
			Sources:     cli.EnvVars("TAGWATCH_DATA_DIR"),
		},
		&cli.StringFlag{
			Name:        "repositories-file",
			Usage:       "Repository list file name for file and gcs stores",
			Value:       flatfile.DefaultRepositoriesFile,
			Destination: &c.RepositoriesFile,
			Sources:     cli.EnvVars("TAGWATCH_REPOSITORIES_FILE"),
		},
		&cli.StringFlag{
			Name:        "history-file",
			Usage:       "Tag history file name for file and gcs stores",
			Value:       flatfile.DefaultHistoryFile,
			Destination: &c.HistoryFile,
			Sources:     cli.EnvVars("TAGWATCH_HISTORY_FILE"),
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for the gcs store",
			Destination: &c.GCSBucket,
			Sources:     cli.EnvVars("TAGWATCH_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix for the gcs store",
			Destination: &c.GCSPrefix,
			Sources:     cli.EnvVars("TAGWATCH_GCS_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "database-url",
			Usage:       "PostgreSQL connection URL for the postgres store",
			Destination: &c.DatabaseURL,
			Sources:     cli.EnvVars("TAGWATCH_DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID for the firestore store",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("TAGWATCH_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Destination: &c.FirestoreDatabaseID,
			Sources:     cli.EnvVars("TAGWATCH_FIRESTORE_DATABASE_ID"),
		},
	}
}

// Configure opens the selected backend. The returned function releases its resources.
func (c *Store) Configure(ctx context.Context) (interfaces.Database, func(), error) {
	logger := ctxlog.From(ctx)
	fileOpts := []flatfile.Option{
		flatfile.WithRepositoriesFile(c.RepositoriesFile),
		flatfile.WithHistoryFile(c.HistoryFile),
	}

	switch c.Backend {
	case StoreFile:
		logger.Debug("Using file store", "dir", c.DataDir)
		return flatfile.New(flatfile.NewLocalStorage(c.DataDir), fileOpts...), func() {}, nil

	case StoreGCS:
		if c.GCSBucket == "" {
			return nil, nil, goerr.New("--gcs-bucket is required for gcs store")
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create cloud storage client")
		}
		logger.Debug("Using gcs store", "bucket", c.GCSBucket, "prefix", c.GCSPrefix)
		db := flatfile.New(flatfile.NewGCSStorage(client, c.GCSBucket, c.GCSPrefix), fileOpts...)
		return db, closer(ctx, client.Close), nil

	case StorePostgres:
		if c.DatabaseURL == "" {
			return nil, nil, goerr.New("--database-url is required for postgres store")
		}
		db, err := postgres.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Using postgres store")
		return db, closer(ctx, db.Close), nil

	case StoreFirestore:
		if c.FirestoreProjectID == "" {
			return nil, nil, goerr.New("--firestore-project-id is required for firestore store")
		}
		db, err := firestore.New(ctx, c.FirestoreProjectID, c.FirestoreDatabaseID)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Using firestore store", "project_id", c.FirestoreProjectID, "database_id", c.FirestoreDatabaseID)
		return db, closer(ctx, db.Close), nil

	case StoreMemory:
		logger.Warn("Using memory store, state is lost on exit")
		return memory.New(), func() {}, nil
	}

	return nil, nil, goerr.New("unknown store backend", goerr.V("store", c.Backend))
}

func closer(ctx context.Context, f func() error) func() {
	return func() {
		if err := f(); err != nil {
			ctxlog.From(ctx).Warn("Failed to close store", "error", err)
		}
	}
}
