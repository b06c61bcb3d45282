package parking

import "time"

// Ticket records one drop-in parking session from entry to exit. The
// ledger owns the mutable record; callers always receive value copies.
// A ticket is mutated exactly once, when it is closed.
type Ticket struct {
	ID        string
	Vehicle   Vehicle
	SpotID    string
	EntryTime time.Time
	ExitTime  time.Time // zero until the ticket is closed
	Processed bool
}

// Open reports whether the session is still in progress.
func (t Ticket) Open() bool { return !t.Processed }
