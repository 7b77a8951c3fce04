package types

import "github.com/google/uuid"

// PassID identifies one reconciliation pass in logs and API responses
type PassID string

// NewPassID generates a random PassID
func NewPassID() PassID {
	return PassID(uuid.NewString())
}

func (x PassID) String() string {
	return string(x)
}

// NoComments is reported as the last comment of an issue without comments
const NoComments = "No comments"
