package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// ReleaseSnapshot is the latest release of a repository as reported by upstream.
// It is produced fresh on every lookup and never persisted.
type ReleaseSnapshot struct {
	TagName     string    // Release tag name
	DisplayName string    // Release name
	PublishedAt time.Time // Publication time, zero for unpublished releases
	HTMLURL     string    // Release page URL
	Body        string    // Release notes
}

// LatestRelease is the answer of a one-shot lookup. Nothing is stored.
type LatestRelease struct {
	Repository  types.RepoKey `json:"repository"`
	Tag         string        `json:"tag"`
	Name        string        `json:"name,omitempty"`
	URL         string        `json:"url"`
	PublishedAt time.Time     `json:"published_at,omitzero"`
}

// NewLatestRelease builds a LatestRelease from a snapshot of repo
func NewLatestRelease(repo types.RepoKey, snapshot *ReleaseSnapshot) *LatestRelease {
	return &LatestRelease{
		Repository:  repo,
		Tag:         snapshot.TagName,
		Name:        snapshot.DisplayName,
		URL:         snapshot.HTMLURL,
		PublishedAt: snapshot.PublishedAt,
	}
}

// VersionEntry pairs a repository with a version the caller saw earlier.
// Both fields are raw input and validated by whoever consumes them.
type VersionEntry struct {
	Repository string `json:"repository"`
	Version    string `json:"version"`
}

// ParseVersionEntry splits "owner/name:version" on the first ":". A line
// without ":" yields an empty Version.
func ParseVersionEntry(line string) *VersionEntry {
	repo, version, _ := strings.Cut(line, ":")
	return &VersionEntry{
		Repository: strings.TrimSpace(repo),
		Version:    strings.TrimSpace(version),
	}
}
