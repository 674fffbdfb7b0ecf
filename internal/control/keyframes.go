package control

import (
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/dynamo"
)

type Keyframe struct {
	Time   float64   `yaml:"time" json:"time"`
	Target []float64 `yaml:"target" json:"target"`
}

// Keyframes retargets each time the clock passes a keyframe. Between
// keyframes the spring is left alone to settle.
type Keyframes struct {
	frames []Keyframe
	next   int
}

func NewKeyframes(frames ...Keyframe) *Keyframes {
	sorted := make([]Keyframe, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Keyframes{frames: sorted}
}

func (k *Keyframes) Frames() []Keyframe { return k.frames }

// Validate checks that every keyframe carries dim finite targets.
func (k *Keyframes) Validate(dim int) error {
	for i, f := range k.frames {
		if len(f.Target) != dim {
			return fmt.Errorf("%w: keyframe %d has %d targets, want %d", dynamo.ErrDimensionMismatch, i, len(f.Target), dim)
		}
		if !dynamo.State(f.Target).IsValid() || f.Time < 0 {
			return fmt.Errorf("%w: keyframe %d", dynamo.ErrInvalidValue, i)
		}
	}
	return nil
}

func (k *Keyframes) Compute(x dynamo.State, t float64) dynamo.Control {
	var u dynamo.Control
	for k.next < len(k.frames) && k.frames[k.next].Time <= t {
		u = k.frames[k.next].Target
		k.next++
	}
	if u == nil {
		return nil
	}
	return dynamo.Control(u).Clone()
}

// Reset rewinds to the first keyframe.
func (k *Keyframes) Reset() {
	k.next = 0
}
