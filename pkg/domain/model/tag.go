package model

import (
	"time"

	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// TagRecord is the persisted tag state of one tracked repository
type TagRecord struct {
	Repository  types.RepoKey `json:"repository" firestore:"repository"`
	Tag         string        `json:"tag" firestore:"tag"`
	PreviousTag string        `json:"previous_tag,omitempty" firestore:"previous_tag"`
	URL         string        `json:"url,omitempty" firestore:"url"`
	UpdatedAt   time.Time     `json:"updated_at" firestore:"updated_at"`
}

// ChangeRecord is the result of reconciling one repository
type ChangeRecord struct {
	Repository  types.RepoKey `json:"repository"`
	Tag         string        `json:"tag"`
	PreviousTag string        `json:"previous_tag"`
	Changed     bool          `json:"changed"`
	URL         string        `json:"url"`
}

// ChangeRecords keeps registry order
type ChangeRecords []*ChangeRecord

// Changed returns only records whose tag differs from the stored one
func (x ChangeRecords) Changed() ChangeRecords {
	changed := ChangeRecords{}
	for _, r := range x {
		if r.Changed {
			changed = append(changed, r)
		}
	}
	return changed
}

// Warning is a recoverable per-item failure reported alongside results
type Warning struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

// ReconcileResult is the outcome of one reconciliation pass
type ReconcileResult struct {
	PassID     types.PassID  `json:"pass_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Changes    ChangeRecords `json:"repositories"`
	Warnings   []*Warning    `json:"warnings"`
}
