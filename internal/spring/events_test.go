package spring

import (
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
)

type recorder struct {
	events []Event
}

func (r *recorder) listen(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestEventsRestAndMovingEdges(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetForce(100)
	s.SetDrag(20)
	s.Initialize()

	var rec recorder
	s.Events().Subscribe(rec.listen)

	s.SetTarget(1)
	stepN(s, 600, 1.0/60.0)

	if got := rec.count(EventMoving); got != 1 {
		t.Errorf("moving fired %d times, want 1", got)
	}
	if got := rec.count(EventRest); got != 1 {
		t.Errorf("rest fired %d times, want 1", got)
	}
	if len(rec.events) != 2 || rec.events[0].Kind != EventMoving || rec.events[1].Axis != AllAxes {
		t.Errorf("events = %v", rec.events)
	}
}

func TestEventsInitializeDoesNotFire(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	var rec recorder
	s.Events().Subscribe(rec.listen)

	s.SetTarget(1)
	s.Initialize()
	if len(rec.events) != 0 {
		t.Errorf("Initialize fired %v", rec.events)
	}
	if s.Events().AtRest() {
		t.Error("primed state should be moving with a distant target")
	}
}

func TestEventsReachEquilibriumFiresRest(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(1)
	s.Initialize()

	var rec recorder
	s.Events().Subscribe(rec.listen)
	s.ReachEquilibrium()
	s.ReachEquilibrium()

	if len(rec.events) != 1 || rec.events[0].Kind != EventRest {
		t.Errorf("events = %v, want a single rest", rec.events)
	}
}

func TestEventsClampEdges(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetClampCurrentValue(true)
	s.SetStopOnClamp(true)
	s.Initialize()

	var rec recorder
	s.Events().Subscribe(rec.listen)

	s.SetTarget(5)
	stepN(s, 60, 1.0/60.0)
	if got := rec.count(EventClamped); got != 1 {
		t.Fatalf("clamped fired %d times, want 1", got)
	}

	s.SetTarget(0.5)
	s.Step(1.0 / 60.0)
	if got := rec.count(EventUnclamped); got != 1 {
		t.Errorf("unclamped fired %d times, want 1", got)
	}
	for _, ev := range rec.events {
		if (ev.Kind == EventClamped || ev.Kind == EventUnclamped) && ev.Axis != 0 {
			t.Errorf("scalar clamp event on axis %d", ev.Axis)
		}
	}
}

func TestEventsCancel(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.Initialize()

	var first, second recorder
	cancel := s.Events().Subscribe(first.listen)
	s.Events().Subscribe(second.listen)
	if s.Events().Listeners() != 2 {
		t.Fatalf("listeners = %d", s.Events().Listeners())
	}

	cancel()
	cancel()
	s.SetTarget(1)
	s.Step(1.0 / 60.0)

	if len(first.events) != 0 {
		t.Errorf("cancelled listener received %v", first.events)
	}
	if len(second.events) != 1 {
		t.Errorf("remaining listener received %v", second.events)
	}
}

func TestEventsCancelDuringDispatch(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.Initialize()

	var cancel func()
	calls := 0
	cancel = s.Events().Subscribe(func(Event) {
		calls++
		cancel()
	})
	var rec recorder
	s.Events().Subscribe(rec.listen)

	s.SetTarget(1)
	s.Step(1.0 / 60.0)
	s.ReachEquilibrium()

	if calls != 1 {
		t.Errorf("self-cancelling listener called %d times", calls)
	}
	if len(rec.events) != 2 {
		t.Errorf("other listener saw %v, want moving then rest", rec.events)
	}
}

func TestEventsVectorAxes(t *testing.T) {
	v := NewVector3(dynamo.DefaultTuning())
	v.SetClampCurrentValue(true)
	v.SetStopOnClamp(true)
	v.Initialize()

	var rec recorder
	v.Events().Subscribe(rec.listen)

	target := v.Target()
	target[2] = 4
	v.SetTarget(target)
	stepN(v, 60, 1.0/60.0)

	clamped := 0
	for _, ev := range rec.events {
		if ev.Kind == EventClamped {
			clamped++
			if ev.Axis != 2 {
				t.Errorf("clamp reported on axis %d, want 2", ev.Axis)
			}
		}
	}
	if clamped != 1 {
		t.Errorf("clamped fired %d times, want 1", clamped)
	}
	if !v.AxisClamped(2) || v.AxisClamped(0) {
		t.Error("per-axis clamp state wrong")
	}
	if rec.count(EventMoving) != 1 {
		t.Errorf("aggregate moving fired %d times, want 1", rec.count(EventMoving))
	}
}

func TestEventKindString(t *testing.T) {
	if EventRest.String() != "rest" || EventUnclamped.String() != "unclamped" {
		t.Error("unexpected kind names")
	}
	if got := (Event{Kind: EventClamped, Axis: 1}).String(); got != "clamped[1]" {
		t.Errorf("Event.String() = %q", got)
	}
}
