// Package postgres stores the registry and the tag history in PostgreSQL.
// Tables are created by goose migrations embedded in the binary.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/m-mizutani/goerr/v2"
	"github.com/pressly/goose/v3"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Database implements interfaces.Database on PostgreSQL
type Database struct {
	db *sql.DB
}

var _ interfaces.Database = (*Database)(nil)

// New opens a connection, verifies it and applies pending migrations
func New(ctx context.Context, dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database")
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Database{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return goerr.Wrap(err, "failed to set goose dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return goerr.Wrap(err, "failed to run migrations")
	}
	return nil
}

// Close releases the connection pool
func (d *Database) Close() error {
	return d.db.Close()
}

// ListRepositories implements interfaces.RepositoryRegistry
func (d *Database) ListRepositories(ctx context.Context) ([]types.RepoKey, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT repository FROM repositories ORDER BY id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query repositories")
	}
	defer rows.Close()

	var repos []types.RepoKey
	for rows.Next() {
		var repo string
		if err := rows.Scan(&repo); err != nil {
			return nil, goerr.Wrap(err, "failed to scan repository")
		}
		repos = append(repos, types.RepoKey(repo))
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate repositories")
	}

	return repos, nil
}

// AddRepository implements interfaces.RepositoryRegistry
func (d *Database) AddRepository(ctx context.Context, repo types.RepoKey) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT INTO repositories (repository) VALUES ($1) ON CONFLICT (repository) DO NOTHING`,
		repo.String(),
	)
	if err != nil {
		return false, goerr.Wrap(err, "failed to insert repository", goerr.V("repository", repo))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "failed to get affected rows", goerr.V("repository", repo))
	}
	return n == 1, nil
}

const selectTags = `SELECT repository, tag, previous_tag, url, updated_at FROM tags`

// ListTags implements interfaces.HistoryStore
func (d *Database) ListTags(ctx context.Context) ([]*model.TagRecord, error) {
	rows, err := d.db.QueryContext(ctx, selectTags+` ORDER BY created_at, repository`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query tags")
	}
	defer rows.Close()

	var tags []*model.TagRecord
	for rows.Next() {
		rec, err := scanTag(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan tag")
		}
		tags = append(tags, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tags")
	}

	return tags, nil
}

// GetTag implements interfaces.HistoryStore
func (d *Database) GetTag(ctx context.Context, repo types.RepoKey) (*model.TagRecord, error) {
	row := d.db.QueryRowContext(ctx, selectTags+` WHERE repository = $1`, repo.String())

	rec, err := scanTag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get tag", goerr.V("repository", repo))
	}
	return rec, nil
}

// PutTags implements interfaces.HistoryStore in a single transaction
func (d *Database) PutTags(ctx context.Context, tags []*model.TagRecord) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
		INSERT INTO tags (repository, tag, previous_tag, url, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (repository) DO UPDATE SET
			tag = EXCLUDED.tag,
			previous_tag = EXCLUDED.previous_tag,
			url = EXCLUDED.url,
			updated_at = EXCLUDED.updated_at`

	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, upsert,
			tag.Repository.String(),
			tag.Tag,
			nullString(tag.PreviousTag),
			nullString(tag.URL),
			tag.UpdatedAt.UTC(),
		); err != nil {
			return goerr.Wrap(err, "failed to upsert tag", goerr.V("repository", tag.Repository))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit tags")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTag(s scanner) (*model.TagRecord, error) {
	var (
		repo, tag        string
		previousTag, url sql.NullString
		updatedAt        time.Time
	)
	if err := s.Scan(&repo, &tag, &previousTag, &url, &updatedAt); err != nil {
		return nil, err
	}

	return &model.TagRecord{
		Repository:  types.RepoKey(repo),
		Tag:         tag,
		PreviousTag: previousTag.String,
		URL:         url.String,
		UpdatedAt:   updatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
