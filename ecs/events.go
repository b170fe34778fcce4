package ecs

// Event is a world event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventTargetDamaged   = "target:damaged"
	EventTargetDestroyed = "target:destroyed"
)

// TargetDamaged reports damage applied to a target.
type TargetDamaged struct {
	Entity    Entity
	Amount    float64
	Crit      bool
	SourceKey string
}

// TargetDestroyed reports a target dying.
type TargetDestroyed struct {
	Entity    Entity
	SourceKey string
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
