package models

import (
	"fmt"
	"time"
)

// BlockedRange is a half-open date interval [Start, End) already reserved
// according to the external calendar feed. The checkout day is not blocked,
// so back-to-back bookings are allowed.
type BlockedRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r BlockedRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}
