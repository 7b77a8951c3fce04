package usecase

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

type repositoryUseCase struct {
	db interfaces.RepositoryRegistry
}

// NewRepository creates a RepositoryUseCase
func NewRepository(db interfaces.RepositoryRegistry) interfaces.RepositoryUseCase {
	return &repositoryUseCase{db: db}
}

// Add registers raw ("owner/name"). A repository already tracked is reported with added=false.
func (uc *repositoryUseCase) Add(ctx context.Context, raw string) (types.RepoKey, bool, error) {
	repo, err := types.ParseRepoKey(raw)
	if err != nil {
		return "", false, err
	}

	added, err := uc.db.AddRepository(ctx, repo)
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to add repository", goerr.V("repository", repo))
	}

	ctxlog.From(ctx).Debug("Repository registered", "repository", repo, "added", added)
	return repo, added, nil
}

// List returns tracked repositories in registration order
func (uc *repositoryUseCase) List(ctx context.Context) ([]types.RepoKey, error) {
	repos, err := uc.db.ListRepositories(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list repositories")
	}
	return repos, nil
}

// prefillEntry is one repository candidate read from a prefill file
type prefillEntry struct {
	value string
	loc   string
}

// Import registers every repository listed in the prefill file at path and
// returns how many were newly added. Invalid entries become warnings.
func (uc *repositoryUseCase) Import(ctx context.Context, path string) (int, []*model.Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to read prefill file", goerr.V("path", path))
	}

	entries, err := parsePrefill(path, data)
	if err != nil {
		return 0, nil, err
	}

	logger := ctxlog.From(ctx)
	warnings := []*model.Warning{}
	var added int
	for _, entry := range entries {
		repo, err := types.ParseRepoKey(entry.value)
		if err != nil {
			logger.Warn("Skip invalid prefill entry", "location", entry.loc, "entry", entry.value, "error", err)
			warnings = append(warnings, &model.Warning{
				Target:  entry.loc,
				Message: fmt.Sprintf("invalid repository %q", entry.value),
			})
			continue
		}

		ok, err := uc.db.AddRepository(ctx, repo)
		if err != nil {
			return added, warnings, goerr.Wrap(err, "failed to add repository",
				goerr.V("repository", repo),
				goerr.V("location", entry.loc),
			)
		}
		if ok {
			added++
		}
	}

	logger.Info("Prefill imported", "path", path, "entries", len(entries), "added", added, "warnings", len(warnings))
	return added, warnings, nil
}

func parsePrefill(path string, data []byte) ([]prefillEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var doc struct {
			Repositories []string `toml:"repositories"`
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, goerr.Wrap(err, "failed to parse TOML prefill file", goerr.V("path", path))
		}
		return indexedEntries(path, "repositories", doc.Repositories), nil

	case ".yaml", ".yml":
		var list []string
		if err := yaml.Unmarshal(data, &list); err == nil {
			return indexedEntries(path, "", list), nil
		}

		var doc struct {
			Repositories []string `yaml:"repositories"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, goerr.Wrap(err, "failed to parse YAML prefill file", goerr.V("path", path))
		}
		return indexedEntries(path, "repositories", doc.Repositories), nil
	}

	return parsePrefillLines(path, data)
}

func indexedEntries(path, field string, values []string) []prefillEntry {
	entries := make([]prefillEntry, 0, len(values))
	for i, v := range values {
		loc := fmt.Sprintf("%s[%d]", path, i)
		if field != "" {
			loc = fmt.Sprintf("%s:%s[%d]", path, field, i)
		}
		entries = append(entries, prefillEntry{value: v, loc: loc})
	}
	return entries
}

// parsePrefillLines reads one repository per line. Blank lines and "#"
// comments are skipped and a leading "-" bullet is stripped.
func parsePrefillLines(path string, data []byte) ([]prefillEntry, error) {
	var entries []prefillEntry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var lineNo int
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		entries = append(entries, prefillEntry{
			value: line,
			loc:   fmt.Sprintf("%s:%d", path, lineNo),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read prefill file", goerr.V("path", path))
	}

	return entries, nil
}
