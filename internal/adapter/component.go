package adapter

import (
	"fmt"
	"strings"

	"github.com/san-kum/springsim/internal/dynamo"
)

// ValidationError lists why a Component cannot run.
type ValidationError struct {
	Component string
	Reasons   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("component %q: %s", e.Component, strings.Join(e.Reasons, "; "))
}

func (e *ValidationError) Unwrap() error {
	return dynamo.ErrInvalidComponent
}

// Component drives one host property with one spring.
type Component[T any] struct {
	name   string
	spring Animator[T]
	source Source[T]
	sink   Sink[T]

	initial     *T
	target      *T
	initialized bool
}

func NewComponent[T any](name string, spring Animator[T], source Source[T], sink Sink[T]) *Component[T] {
	return &Component[T]{
		name:   name,
		spring: spring,
		source: source,
		sink:   sink,
	}
}

func (c *Component[T]) Name() string        { return c.name }
func (c *Component[T]) Spring() Animator[T] { return c.spring }
func (c *Component[T]) Initialized() bool   { return c.initialized }

// SetInitialValue overrides the value read from the source at Initialize.
func (c *Component[T]) SetInitialValue(v T) {
	c.initial = &v
}

// SetTargetValue overrides the target read from the source at Initialize.
// After Initialize it retargets the spring directly.
func (c *Component[T]) SetTargetValue(v T) {
	c.target = &v
	if c.initialized {
		c.spring.SetTarget(v)
	}
}

// IsValid reports whether the component can run and, if not, why.
func (c *Component[T]) IsValid() (bool, []string) {
	var reasons []string
	if c.spring == nil {
		reasons = append(reasons, "no spring assigned")
	}
	if c.sink == nil {
		reasons = append(reasons, "no target property to apply the spring value to")
	}
	needSource := c.initial == nil || c.target == nil
	switch {
	case needSource && c.source == nil:
		reasons = append(reasons, "no source property to read the default initial value and target from")
	case needSource:
		if _, ok := c.source.Read(); !ok {
			reasons = append(reasons, "source property is missing")
		}
	}
	return len(reasons) == 0, reasons
}

// Initialize seeds the spring from the overrides or the source and applies
// the starting value once.
func (c *Component[T]) Initialize() error {
	if ok, reasons := c.IsValid(); !ok {
		return &ValidationError{Component: c.name, Reasons: reasons}
	}

	var fromSource T
	if c.initial == nil || c.target == nil {
		fromSource, _ = c.source.Read()
	}
	initial, target := fromSource, fromSource
	if c.initial != nil {
		initial = *c.initial
	}
	if c.target != nil {
		target = *c.target
	}

	c.spring.SetCurrentValue(initial)
	c.spring.SetTarget(target)
	c.spring.Initialize()
	c.initialized = true
	c.Apply()
	return nil
}

func (c *Component[T]) Step(dt float64) {
	if c.initialized {
		c.spring.Step(dt)
	}
}

func (c *Component[T]) Apply() {
	if c.initialized {
		c.sink.Apply(c.spring.CurrentValue())
	}
}

// ReachEquilibrium snaps the spring and applies the result.
func (c *Component[T]) ReachEquilibrium() {
	if c.spring == nil {
		return
	}
	c.spring.ReachEquilibrium()
	c.Apply()
}
