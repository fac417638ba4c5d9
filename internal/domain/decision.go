package domain

import "time"

// Decision is a write-only audit record of one wheel spin. The app never
// reads these back except for the recent-history view.
type Decision struct {
	ID        string
	OwnerID   int64
	Options   []string
	Result    string
	CreatedAt time.Time
}
