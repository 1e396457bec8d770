package model

import "time"

// Field length bounds, counted in characters.
const (
	MaxNameLength    = 100
	MaxRightsLength  = 50
	MaxStatusLength  = 50
	MaxRemarksLength = 500
)

// Observed values for Rights and Status. They are not enforced; any
// non-empty string within the length bound is accepted.
const (
	RightsAdmin = "Admin"
	RightsUser  = "User"
	RightsStaff = "Staff"

	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusOnHold   = "On Hold"
)

// Record is a single stored row. ID and Timestamp are assigned by the store
// on creation and never change afterwards.
type Record struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Rights    string    `json:"rights"`
	Status    string    `json:"status"`
	Remarks   string    `json:"remarks"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordInput holds the mutable fields of a record as supplied by a caller,
// for both create and full-replacement update.
type RecordInput struct {
	Name    string `json:"name"`
	Rights  string `json:"rights"`
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// Apply copies the mutable fields of in onto r, leaving ID and Timestamp alone.
func (r *Record) Apply(in RecordInput) {
	r.Name = in.Name
	r.Rights = in.Rights
	r.Status = in.Status
	r.Remarks = in.Remarks
}
