package dungeon

// Event is a gameplay occurrence queued during a frame and drained once
// at the end of the same frame, so consumers (HUD, scoring) observe a
// consistent order no matter which update produced them.
type Event interface {
	event()
}

// ClearEvent fires when a stage's objective completes: once per stage
// load, either on the defeat that empties the tracker or immediately at
// load for a stage with nothing to defeat.
type ClearEvent struct {
	StageID string
}

// DoorLockedEvent fires when the player interacts with a locked door.
type DoorLockedEvent struct {
	DoorID string
}

// TransitionEvent fires when a stage swap completes.
type TransitionEvent struct {
	From string
	To   string
}

// ItemPickedUpEvent fires when the player collects an item.
type ItemPickedUpEvent struct {
	Kind string
}

// LevelUpEvent fires when the player's experience crosses a level.
type LevelUpEvent struct {
	Level int
}

// VictoryEvent fires when the player passes the final gate.
type VictoryEvent struct{}

// PlayerDiedEvent fires when the player's health reaches zero.
type PlayerDiedEvent struct{}

func (ClearEvent) event()        {}
func (DoorLockedEvent) event()   {}
func (TransitionEvent) event()   {}
func (ItemPickedUpEvent) event() {}
func (LevelUpEvent) event()      {}
func (VictoryEvent) event()      {}
func (PlayerDiedEvent) event()   {}

// EventQueue is a FIFO of gameplay events. Single-threaded: pushed
// during the update step, drained once per frame.
type EventQueue struct {
	events []Event
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends an event.
func (q *EventQueue) Push(ev Event) {
	q.events = append(q.events, ev)
}

// PushAll appends a batch of events in order.
func (q *EventQueue) PushAll(evs []Event) {
	q.events = append(q.events, evs...)
}

// Drain returns all queued events in push order and empties the queue.
func (q *EventQueue) Drain() []Event {
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.events)
}
