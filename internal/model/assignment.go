package model

import "time"

// AssignmentState is the lifecycle state of an assignment.
type AssignmentState string

// Assignment states.
const (
	AssignmentWaitingForAcceptance AssignmentState = "waiting_for_acceptance"
	AssignmentAccepted             AssignmentState = "accepted"
	AssignmentDeclined             AssignmentState = "declined"
	AssignmentWaitingForReturning  AssignmentState = "waiting_for_returning"
	AssignmentCompleted            AssignmentState = "completed"
)

// Label returns the human-readable form used in messages.
func (s AssignmentState) Label() string {
	switch s {
	case AssignmentWaitingForAcceptance:
		return "Waiting for acceptance"
	case AssignmentAccepted:
		return "Accepted"
	case AssignmentDeclined:
		return "Declined"
	case AssignmentWaitingForReturning:
		return "Waiting for returning"
	case AssignmentCompleted:
		return "Completed"
	}
	return string(s)
}

// Assignment links one asset to one user.
type Assignment struct {
	ID           string          `json:"id"`
	AssetID      string          `json:"asset_id"`
	AssignedByID string          `json:"assigned_by_id"`
	AssignedToID string          `json:"assigned_to_id"`
	AssignedDate time.Time       `json:"assigned_date"`
	Note         string          `json:"note,omitempty"`
	State        AssignmentState `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int64           `json:"version"`

	// Joined fields (not always populated).
	AssetCode      string `json:"asset_code,omitempty"`
	AssetName      string `json:"asset_name,omitempty"`
	AssignedToName string `json:"assigned_to_name,omitempty"`
	AssignedByName string `json:"assigned_by_name,omitempty"`
}

// NewAssignment is the input for creating an assignment.
type NewAssignment struct {
	AssetID      string    `json:"asset_id"`
	AssignedToID string    `json:"assigned_to_id"`
	AssignedDate time.Time `json:"assigned_date"`
	Note         string    `json:"note"`
}

// AssignmentFilter narrows assignment listings. Empty fields are ignored.
type AssignmentFilter struct {
	AssignedToID string
	Location     string
	States       []AssignmentState
}
