package spring

import "github.com/go-gl/mathgl/mgl64"

// Codec maps a host tuple type to and from its float components.
type Codec[T any] interface {
	Arity() int
	Component(v T, i int) float64
	Compose(c []float64) T
}

type Vec2Codec struct{}

func (Vec2Codec) Arity() int                            { return 2 }
func (Vec2Codec) Component(v mgl64.Vec2, i int) float64 { return v[i] }
func (Vec2Codec) Compose(c []float64) mgl64.Vec2        { return mgl64.Vec2{c[0], c[1]} }

type Vec3Codec struct{}

func (Vec3Codec) Arity() int                            { return 3 }
func (Vec3Codec) Component(v mgl64.Vec3, i int) float64 { return v[i] }
func (Vec3Codec) Compose(c []float64) mgl64.Vec3        { return mgl64.Vec3{c[0], c[1], c[2]} }

type Vec4Codec struct{}

func (Vec4Codec) Arity() int                            { return 4 }
func (Vec4Codec) Component(v mgl64.Vec4, i int) float64 { return v[i] }
func (Vec4Codec) Compose(c []float64) mgl64.Vec4        { return mgl64.Vec4{c[0], c[1], c[2], c[3]} }

// ColorCodec orders channels R, G, B, A.
type ColorCodec struct{}

func (ColorCodec) Arity() int { return 4 }

func (ColorCodec) Component(c Color, i int) float64 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	}
	return c.A
}

func (ColorCodec) Compose(c []float64) Color {
	return Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}
