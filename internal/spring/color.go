package spring

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/springsim/internal/dynamo"
)

// Color is a straight-alpha RGBA colour with channels nominally in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	Black = Color{0, 0, 0, 1}
	White = Color{1, 1, 1, 1}
	Clear = Color{0, 0, 0, 0}
)

// NewColor returns a colour spring with every channel clamped to [0, 1].
func NewColor(tuning dynamo.TuningConfig) *Vector[Color] {
	v := NewVector[Color](ColorCodec{}, tuning)
	v.SetMinValue(Clear)
	v.SetMaxValue(White)
	v.SetClampCurrentValue(true)
	v.SetClampTarget(true)
	return v
}

func FromColorful(c colorful.Color, alpha float64) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}
}

// ParseHex reads "#rrggbb" as an opaque colour.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: colour %q: %v", dynamo.ErrInvalidValue, s, err)
	}
	return FromColorful(c, 1), nil
}

// Colorful drops alpha.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func (c Color) Hex() string {
	return c.Colorful().Clamped().Hex()
}

// Lerp blends towards o in CIE L*a*b*; alpha is blended linearly.
func (c Color) Lerp(o Color, t float64) Color {
	mixed := c.Colorful().Clamped().BlendLab(o.Colorful().Clamped(), t)
	return FromColorful(mixed, c.A+(o.A-c.A)*t)
}

// RGBA implements image/color.Color with premultiplied alpha.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := unit(c.A)
	a = uint32(alpha*0xffff + 0.5)
	r = uint32(unit(c.R)*alpha*0xffff + 0.5)
	g = uint32(unit(c.G)*alpha*0xffff + 0.5)
	b = uint32(unit(c.B)*alpha*0xffff + 0.5)
	return r, g, b, a
}

func unit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
