package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springsim/internal/spring"
)

// Camera looks down -Z from Distance, after tilting the scene.
type Camera struct {
	Distance float64
	Near     float64
	Zoom     float64
	Tilt     mgl64.Quat
}

func NewCamera() *Camera {
	return &Camera{Distance: 6, Near: 0.1, Zoom: 1, Tilt: spring.EulerToQuat(25, -35, 0)}
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(4, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.25, c.Zoom/1.2) }

// Project maps p to dot coordinates on a w x h canvas. ok is false behind
// the near plane.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (int, int, bool) {
	q := c.Tilt.Rotate(p).Mul(c.Zoom)
	depth := c.Distance - q.Z()
	if depth <= c.Near {
		return 0, 0, false
	}
	scale := c.Distance / depth * float64(min(w, h)) / 3
	x := int(math.Round(q.X()*scale)) + w/2
	y := int(math.Round(-q.Y()*scale)) + h/2
	return x, y, true
}

type Edge struct {
	A, B mgl64.Vec3
}

type Wireframe struct {
	Edges []Edge
}

// NewCube returns a cube of the given edge length with a short spike out of
// its +Y face so the orientation reads at a glance.
func NewCube(size float64) *Wireframe {
	s := size / 2
	v := []mgl64.Vec3{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
	idx := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	w := &Wireframe{Edges: make([]Edge, 0, len(idx)+1)}
	for _, e := range idx {
		w.Edges = append(w.Edges, Edge{v[e[0]], v[e[1]]})
	}
	w.Edges = append(w.Edges, Edge{mgl64.Vec3{0, s, 0}, mgl64.Vec3{0, 2 * s, 0}})
	return w
}

// Render draws w turned by orient onto c.
func (w *Wireframe) Render(c *Canvas, cam *Camera, orient mgl64.Quat) {
	cw, ch := c.Size()
	for _, e := range w.Edges {
		x0, y0, ok0 := cam.Project(orient.Rotate(e.A), cw, ch)
		x1, y1, ok1 := cam.Project(orient.Rotate(e.B), cw, ch)
		if ok0 && ok1 {
			c.Line(x0, y0, x1, y1)
		}
	}
}
