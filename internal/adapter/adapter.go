package adapter

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springsim/internal/spring"
)

// Animator is the spring surface a Component needs.
type Animator[T any] interface {
	Initialize()
	SetTarget(v T)
	SetCurrentValue(v T)
	CurrentValue() T
	Step(dt float64)
	ReachEquilibrium()
}

var (
	_ Animator[float64]      = (*spring.Scalar)(nil)
	_ Animator[mgl64.Vec2]   = (*spring.Vector[mgl64.Vec2])(nil)
	_ Animator[mgl64.Vec3]   = (*spring.Vector[mgl64.Vec3])(nil)
	_ Animator[mgl64.Vec4]   = (*spring.Vector[mgl64.Vec4])(nil)
	_ Animator[spring.Color] = (*spring.Vector[spring.Color])(nil)
	_ Animator[mgl64.Quat]   = (*spring.Rotation)(nil)
)

// Source reads a host property. ok is false when the property is missing.
type Source[T any] interface {
	Read() (v T, ok bool)
}

// Sink writes a host property.
type Sink[T any] interface {
	Apply(v T)
}

type SourceFunc[T any] func() (T, bool)

func (f SourceFunc[T]) Read() (T, bool) { return f() }

type SinkFunc[T any] func(T)

func (f SinkFunc[T]) Apply(v T) { f(v) }

// FromPointer reads *p; a nil p reads as missing.
func FromPointer[T any](p *T) Source[T] {
	return SourceFunc[T](func() (T, bool) {
		if p == nil {
			var zero T
			return zero, false
		}
		return *p, true
	})
}

// ToPointer writes into *p; a nil p discards writes.
func ToPointer[T any](p *T) Sink[T] {
	return SinkFunc[T](func(v T) {
		if p != nil {
			*p = v
		}
	})
}

// Property is an in-memory host property usable as both Source and Sink.
type Property[T any] struct {
	value  T
	writes int
}

func NewProperty[T any](v T) *Property[T] {
	return &Property[T]{value: v}
}

func (p *Property[T]) Read() (T, bool) { return p.value, true }

func (p *Property[T]) Apply(v T) {
	p.value = v
	p.writes++
}

func (p *Property[T]) Value() T    { return p.value }
func (p *Property[T]) Writes() int { return p.writes }
