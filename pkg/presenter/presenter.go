package presenter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

var (
	headerColor  = color.New(color.Bold)
	changedColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	closedColor  = color.New(color.FgRed)
)

const (
	changedMark   = "X"
	unchangedMark = "-"

	lastCommentWidth = 60
	timeLayout       = "2006-01-02 15:04"
)

func orNoTag(s string) string {
	if s == "" {
		return types.NoTag
	}
	return s
}

// WriteChangeTable renders change records in the given order.
// Only changed records are shown when updatedOnly is true.
func WriteChangeTable(w io.Writer, changes model.ChangeRecords, updatedOnly bool) error {
	if updatedOnly {
		changes = changes.Changed()
	}

	t := newTable("Repository", "Tag", "Previous Tag", "Changed?", "URL")
	for _, c := range changes {
		mark := plain(unchangedMark)
		if c.Changed {
			mark = colored(changedMark, changedColor)
		}
		t.add(
			plain(c.Repository.String()),
			plain(orNoTag(c.Tag)),
			plain(orNoTag(c.PreviousTag)),
			mark,
			plain(orNoTag(c.URL)),
		)
	}
	return t.render(w)
}

// WriteHistoryTable renders stored tag records
func WriteHistoryTable(w io.Writer, records []*model.TagRecord) error {
	t := newTable("Repository", "Tag", "Previous Tag", "URL", "Updated")
	for _, r := range records {
		updated := types.NoTag
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Local().Format(timeLayout)
		}
		t.add(
			plain(r.Repository.String()),
			plain(orNoTag(r.Tag)),
			plain(orNoTag(r.PreviousTag)),
			plain(orNoTag(r.URL)),
			plain(updated),
		)
	}
	return t.render(w)
}

// WriteReleaseTable renders results of one-shot lookups
func WriteReleaseTable(w io.Writer, releases []*model.LatestRelease) error {
	t := newTable("Repository", "Tag", "Published", "URL")
	for _, r := range releases {
		published := types.NoTag
		if !r.PublishedAt.IsZero() {
			published = r.PublishedAt.Local().Format(timeLayout)
		}
		t.add(
			plain(r.Repository.String()),
			plain(orNoTag(r.Tag)),
			plain(published),
			plain(orNoTag(r.URL)),
		)
	}
	return t.render(w)
}

// WriteIssueTable renders issue statuses
func WriteIssueTable(w io.Writer, statuses []*model.IssueStatus) error {
	t := newTable("Issue", "Status", "Title", "Published", "Last Activity", "Last Comment")
	for _, s := range statuses {
		state := plain(s.State)
		if s.State == "closed" {
			state = colored(s.State, closedColor)
		}
		t.add(
			plain(s.Ref),
			state,
			plain(s.Title),
			plain(s.CreatedAt.Local().Format(timeLayout)),
			plain(s.UpdatedAt.Local().Format(timeLayout)),
			plain(runewidth.Truncate(oneLine(s.LastComment), lastCommentWidth, "...")),
		)
	}
	return t.render(w)
}

// WriteWarnings prints one line per warning
func WriteWarnings(w io.Writer, warnings []*model.Warning) error {
	for _, warn := range warnings {
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", warnColor.Sprint("warning:"), warn.Target, warn.Message); err != nil {
			return goerr.Wrap(err, "failed to write warning")
		}
	}
	return nil
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode JSON")
	}
	return nil
}
