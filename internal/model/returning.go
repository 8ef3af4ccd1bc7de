package model

import "time"

// ReturningState is the lifecycle state of a returning request.
type ReturningState string

// Returning request states.
const (
	ReturningWaiting   ReturningState = "waiting_for_returning"
	ReturningCompleted ReturningState = "completed"
	ReturningRejected  ReturningState = "rejected"
)

// ReturningRequest asks for an assigned asset to be handed back.
type ReturningRequest struct {
	ID            string         `json:"id"`
	AssignmentID  string         `json:"assignment_id"`
	RequestedByID string         `json:"requested_by_id"`
	AcceptedByID  *string        `json:"accepted_by_id,omitempty"`
	ReturnedDate  *time.Time     `json:"returned_date,omitempty"`
	State         ReturningState `json:"state"`
	CreatedAt     time.Time      `json:"created_at"`
	Version       int64          `json:"version"`

	// Joined fields (not always populated).
	AssetCode       string `json:"asset_code,omitempty"`
	AssetName       string `json:"asset_name,omitempty"`
	RequestedByName string `json:"requested_by_name,omitempty"`
}

// ReturningFilter narrows returning request listings. Empty fields are ignored.
type ReturningFilter struct {
	Location string
	States   []ReturningState
}
