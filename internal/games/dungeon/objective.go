package dungeon

// Tracker counts the clear-condition entities left in the active stage.
// Defeats are recorded at most once per entity id, so re-delivered
// defeat events cannot double-count.
type Tracker struct {
	total    int
	defeated map[string]bool
	cleared  bool
}

// NewTracker creates a tracker for a stage with the given number of
// clear-condition entities. A total of zero starts cleared.
func NewTracker(total int) *Tracker {
	return &Tracker{
		total:    total,
		defeated: make(map[string]bool),
		cleared:  total == 0,
	}
}

// RecordDefeat marks one entity as defeated. Duplicate ids are no-ops.
// Returns true exactly once: on the call that brings the remaining
// count to zero. Later calls never report the edge again.
func (t *Tracker) RecordDefeat(entityID string) bool {
	if t.defeated[entityID] {
		return false
	}
	t.defeated[entityID] = true

	if !t.cleared && t.Remaining() == 0 {
		t.cleared = true
		return true
	}
	return false
}

// Remaining returns how many entities are left to defeat.
func (t *Tracker) Remaining() int {
	r := t.total - len(t.defeated)
	if r < 0 {
		return 0
	}
	return r
}

// Total returns the count fixed at stage load.
func (t *Tracker) Total() int {
	return t.total
}

// IsCleared reports whether the remaining count has reached zero.
func (t *Tracker) IsCleared() bool {
	return t.cleared
}
