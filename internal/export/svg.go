package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/dynamo"
)

// Series is one polyline of a chart.
type Series struct {
	Points []analysis.Point
	Stroke string
}

type bounds struct {
	minX, minY, rangeX, rangeY float64
}

// fit returns padded bounds covering every point of every series.
func fit(series []Series) (bounds, bool) {
	first := true
	var minX, maxX, minY, maxY float64
	for _, s := range series {
		for _, p := range s.Points {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	if first {
		return bounds{}, false
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX:   minX - rangeX*0.1,
		minY:   minY - rangeY*0.1,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
	}, true
}

// ChartToSVG draws series on a shared, padded coordinate frame. It returns
// an empty string when fewer than two points are given in total.
func ChartToSVG(series []Series, width, height int) string {
	total := 0
	for _, s := range series {
		total += len(s.Points)
	}
	b, ok := fit(series)
	if !ok || total < 2 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, s.Stroke)
		for i, p := range s.Points {
			x := (p.X - b.minX) / b.rangeX * float64(width)
			y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
			if i == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// RunToSVG charts position and target of one axis against time.
func RunToSVG(result *dynamo.Result, axis, width, height int, positionStroke, targetStroke string) (string, error) {
	if len(result.States) == 0 {
		return "", fmt.Errorf("%w: run has no samples", dynamo.ErrDimensionMismatch)
	}
	if axis < 0 || axis >= len(result.States[0])/2 {
		return "", fmt.Errorf("%w: axis %d", dynamo.ErrDimensionMismatch, axis)
	}

	position := Series{Stroke: positionStroke}
	goal := Series{Stroke: targetStroke}
	for i, x := range result.States {
		t := float64(i)
		if i < len(result.Times) {
			t = result.Times[i]
		}
		position.Points = append(position.Points, analysis.Point{X: t, Y: x[axis]})
		if i < len(result.Controls) && axis < len(result.Controls[i]) {
			goal.Points = append(goal.Points, analysis.Point{X: t, Y: result.Controls[i][axis]})
		}
	}
	return ChartToSVG([]Series{position, goal}, width, height), nil
}

func PhasePortraitToSVG(p *analysis.PhasePortrait, width, height int, stroke string) string {
	if p == nil {
		return ""
	}
	return ChartToSVG([]Series{{Points: p.Points, Stroke: stroke}}, width, height)
}

func WriteSVG(w io.Writer, svg string) error {
	_, err := io.WriteString(w, svg)
	return err
}

func SaveSVG(path, svg string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSVG(f, svg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
