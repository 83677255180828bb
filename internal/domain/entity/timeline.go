package entity

import "time"

// TimelineEntry records a package status change for the audit timeline.
// Appends are fire-and-forget: a failed append never blocks a transition.
type TimelineEntry struct {
	ID        string    `json:"id"`
	PackageID int64     `json:"package_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
