package spring

import "fmt"

type EventKind int

const (
	EventRest EventKind = iota
	EventMoving
	EventClamped
	EventUnclamped
)

func (k EventKind) String() string {
	switch k {
	case EventRest:
		return "rest"
	case EventMoving:
		return "moving"
	case EventClamped:
		return "clamped"
	case EventUnclamped:
		return "unclamped"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// AllAxes is the Axis of events that concern the spring as a whole.
const AllAxes = -1

type Event struct {
	Kind EventKind
	Axis int
}

func (e Event) String() string {
	if e.Axis == AllAxes {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s[%d]", e.Kind, e.Axis)
}

type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Events remembers the last rest and clamp state of a spring and notifies
// listeners when either changes.
type Events struct {
	subs    []subscription
	nextID  int
	primed  bool
	atRest  bool
	clamped []bool
}

// Subscribe registers fn and returns a function that removes it. Listeners
// run synchronously, in subscription order, from inside Step.
func (e *Events) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, fn: fn})
	return func() { e.unsubscribe(id) }
}

func (e *Events) unsubscribe(id int) {
	for i, s := range e.subs {
		if s.id == id {
			// Copy so that a dispatch in progress keeps its snapshot.
			subs := make([]subscription, 0, len(e.subs)-1)
			subs = append(subs, e.subs[:i]...)
			e.subs = append(subs, e.subs[i+1:]...)
			return
		}
	}
}

func (e *Events) Listeners() int { return len(e.subs) }

// AtRest reports the last evaluated rest state.
func (e *Events) AtRest() bool { return e.atRest }

// Clamped reports the last evaluated clamp state of an axis.
func (e *Events) Clamped(axis int) bool {
	return axis >= 0 && axis < len(e.clamped) && e.clamped[axis]
}

// prime records the current state without firing.
func (e *Events) prime(atRest bool, clamped []bool) {
	e.primed = true
	e.atRest = atRest
	e.clamped = append(e.clamped[:0], clamped...)
}

func (e *Events) update(atRest bool, clamped []bool) {
	if !e.primed {
		e.prime(atRest, clamped)
		return
	}

	var fired []Event
	if atRest != e.atRest {
		kind := EventMoving
		if atRest {
			kind = EventRest
		}
		fired = append(fired, Event{Kind: kind, Axis: AllAxes})
	}
	for i, c := range clamped {
		if c == e.Clamped(i) {
			continue
		}
		kind := EventUnclamped
		if c {
			kind = EventClamped
		}
		fired = append(fired, Event{Kind: kind, Axis: i})
	}

	e.atRest = atRest
	e.clamped = append(e.clamped[:0], clamped...)

	subs := e.subs
	for _, ev := range fired {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}
