package flatfile

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

const (
	// DefaultRepositoriesFile is the registry file name
	DefaultRepositoriesFile = "repositories.txt"
	// DefaultHistoryFile is the history file name
	DefaultHistoryFile = "history.txt"
)

// Database keeps the registry and the tag history in two text files
type Database struct {
	mu          sync.Mutex
	storage     Storage
	reposFile   string
	historyFile string
}

var _ interfaces.Database = (*Database)(nil)

// Option is a functional option for Database
type Option func(*Database)

// WithRepositoriesFile overrides the registry file name. Empty keeps the default.
func WithRepositoriesFile(name string) Option {
	return func(d *Database) {
		if name != "" {
			d.reposFile = name
		}
	}
}

// WithHistoryFile overrides the history file name. Empty keeps the default.
func WithHistoryFile(name string) Option {
	return func(d *Database) {
		if name != "" {
			d.historyFile = name
		}
	}
}

// New creates a flat-file Database on top of storage
func New(storage Storage, opts ...Option) *Database {
	d := &Database{
		storage:     storage,
		reposFile:   DefaultRepositoriesFile,
		historyFile: DefaultHistoryFile,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListRepositories implements interfaces.RepositoryRegistry
func (d *Database) ListRepositories(ctx context.Context) ([]types.RepoKey, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.loadRepositories(ctx)
}

// AddRepository implements interfaces.RepositoryRegistry. The whole file is
// rewritten so that duplicates already in the file collapse to one entry.
func (d *Database) AddRepository(ctx context.Context, repo types.RepoKey) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	repos, err := d.loadRepositories(ctx)
	if err != nil {
		return false, err
	}

	for _, r := range repos {
		if r == repo {
			return false, nil
		}
	}

	repos = append(repos, repo)
	if err := d.storage.Write(ctx, d.reposFile, encodeRepositories(repos)); err != nil {
		return false, goerr.Wrap(err, "failed to save repositories", goerr.V("file", d.reposFile))
	}

	return true, nil
}

// ListTags implements interfaces.HistoryStore
func (d *Database) ListTags(ctx context.Context) ([]*model.TagRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	records, skipped, err := d.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	warnSkipped(ctx, d.historyFile, skipped)

	return records, nil
}

// GetTag implements interfaces.HistoryStore
func (d *Database) GetTag(ctx context.Context, repo types.RepoKey) (*model.TagRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	records, skipped, err := d.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	warnSkipped(ctx, d.historyFile, skipped)

	for _, rec := range records {
		if rec.Repository == repo {
			return rec, nil
		}
	}
	return nil, nil
}

// PutTags implements interfaces.HistoryStore by merging tags into the current
// history and replacing the file in one write. Lines that could not be parsed
// are written back unchanged. They are not warned about again here because the
// pass already saw them through ListTags.
func (d *Database) PutTags(ctx context.Context, tags []*model.TagRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	records, unparsed, err := d.loadHistory(ctx)
	if err != nil {
		return err
	}

	index := make(map[types.RepoKey]int, len(records))
	for i, rec := range records {
		index[rec.Repository] = i
	}

	for _, tag := range tags {
		copied := *tag
		if i, ok := index[tag.Repository]; ok {
			records[i] = &copied
			continue
		}
		index[tag.Repository] = len(records)
		records = append(records, &copied)
	}

	if err := d.storage.Write(ctx, d.historyFile, encodeHistory(records, unparsed)); err != nil {
		return goerr.Wrap(err, "failed to save history", goerr.V("file", d.historyFile))
	}

	return nil
}

func (d *Database) loadRepositories(ctx context.Context) ([]types.RepoKey, error) {
	data, err := d.read(ctx, d.reposFile)
	if err != nil {
		return nil, err
	}

	repos, skipped, err := parseRepositories(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse repositories", goerr.V("file", d.reposFile))
	}
	warnSkipped(ctx, d.reposFile, skipped)

	return repos, nil
}

// loadHistory returns parsed records and the lines that were skipped. Callers
// decide whether skipped lines are worth a warning.
func (d *Database) loadHistory(ctx context.Context) ([]*model.TagRecord, []*lineError, error) {
	data, err := d.read(ctx, d.historyFile)
	if err != nil {
		return nil, nil, err
	}

	records, skipped, err := parseHistory(data)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to parse history", goerr.V("file", d.historyFile))
	}

	return records, skipped, nil
}

// read returns the file content and creates an empty file when it is missing
func (d *Database) read(ctx context.Context, name string) ([]byte, error) {
	data, found, err := d.storage.Read(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("file", name))
	}

	if !found {
		ctxlog.From(ctx).Debug("Creating missing file", "file", name)
		if err := d.storage.Write(ctx, name, nil); err != nil {
			return nil, goerr.Wrap(err, "failed to create file", goerr.V("file", name))
		}
		return nil, nil
	}

	return data, nil
}

func warnSkipped(ctx context.Context, file string, skipped []*lineError) {
	logger := ctxlog.From(ctx)
	for _, s := range skipped {
		logger.Warn("Skipping malformed line",
			"file", file,
			"line", s.Line,
			"text", s.Text,
			"error", s.Err.Error(),
		)
	}
}
