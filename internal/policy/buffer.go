package policy

import "errors"

// ErrNoPending is returned when Finalize is called with no open entry:
// either nothing was appended since the last finalize, or the entry was
// already finalized once.
var ErrNoPending = errors.New("policy: no pending experience to finalize")

// Experience is one trajectory step. Reward and Done stay zero until the
// environment reports the step's outcome.
type Experience struct {
	State   []float64
	Action  int
	Reward  float64
	Value   float64
	LogProb float64
	Done    bool
}

// Buffer is an ordered, append-only trajectory store. The newest entry is
// a pending slot whose reward and terminal flag are rewritten exactly once
// when the outcome becomes known; double finalization is rejected.
type Buffer struct {
	entries []Experience
	pending bool
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append stores a new experience with its outcome still pending.
func (b *Buffer) Append(e Experience) {
	b.entries = append(b.entries, e)
	b.pending = true
}

// Finalize closes the pending entry with the observed reward and terminal
// flag. Exactly one Finalize is allowed per Append.
func (b *Buffer) Finalize(reward float64, done bool) error {
	if !b.pending || len(b.entries) == 0 {
		return ErrNoPending
	}
	last := &b.entries[len(b.entries)-1]
	last.Reward = reward
	last.Done = done
	b.pending = false
	return nil
}

// Pending reports whether the newest entry still awaits its outcome.
func (b *Buffer) Pending() bool {
	return b.pending
}

// Len returns the number of stored experiences.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Entries exposes the stored trajectory in order.
func (b *Buffer) Entries() []Experience {
	return b.entries
}

// Clear drops all experiences, pending or not.
func (b *Buffer) Clear() {
	b.entries = b.entries[:0]
	b.pending = false
}
