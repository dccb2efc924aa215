package review

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/disintegration/imaging"
)

type PadState int

const (
	PadEmpty PadState = iota
	PadDrawing
	PadCaptured
)

func (s PadState) String() string {
	switch s {
	case PadDrawing:
		return "drawing"
	case PadCaptured:
		return "captured"
	}
	return "empty"
}

// Point is a pointer position normalized to the pad: (0,0) top left,
// (1,1) bottom right.
type Point struct{ X, Y float64 }

// Pad captures a freehand signature and turns it into an image reference
// that can be stored in place of the signature.
type Pad interface {
	Down(p Point)
	Move(p Point)
	Up()
	Clear()
	State() PadState
	// ImageRef returns "" while the pad is empty.
	ImageRef() (string, error)
}

// RasterPad keeps the strokes and rasterizes them to a transparent PNG data
// URL on demand.
type RasterPad struct {
	Width, Height int
	// LineWidth is in output pixels.
	LineWidth float64

	mu      sync.Mutex
	strokes [][]Point
	state   PadState
}

// supersample draws at this multiple of the output size and scales down,
// which smooths the line edges.
const supersample = 3

func NewRasterPad(width, height int) *RasterPad {
	return &RasterPad{Width: width, Height: height, LineWidth: 2}
}

func (p *RasterPad) Down(pt Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strokes = append(p.strokes, []Point{clampPoint(pt)})
	p.state = PadDrawing
}

func (p *RasterPad) Move(pt Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PadDrawing {
		return
	}
	last := len(p.strokes) - 1
	p.strokes[last] = append(p.strokes[last], clampPoint(pt))
}

func (p *RasterPad) Up() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PadDrawing {
		p.state = PadCaptured
	}
}

func (p *RasterPad) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strokes = nil
	p.state = PadEmpty
}

func (p *RasterPad) State() PadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *RasterPad) ImageRef() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.strokes) == 0 {
		return "", nil
	}
	if p.Width <= 0 || p.Height <= 0 {
		return "", fmt.Errorf("signature pad has no size (%dx%d)", p.Width, p.Height)
	}

	w, h := p.Width*supersample, p.Height*supersample
	canvas := imaging.New(w, h, color.NRGBA{})
	radius := math.Max(p.LineWidth*supersample/2, 1)
	ink := color.NRGBA{A: 255}
	for _, s := range p.strokes {
		for i := range s {
			a := s[i]
			b := a
			if i+1 < len(s) {
				b = s[i+1]
			}
			drawSegment(canvas, scale(a, w, h), scale(b, w, h), radius, ink)
		}
	}
	out := imaging.Resize(canvas, p.Width, p.Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode signature: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func clampPoint(p Point) Point {
	return Point{X: math.Min(math.Max(p.X, 0), 1), Y: math.Min(math.Max(p.Y, 0), 1)}
}

func scale(p Point, w, h int) Point {
	return Point{X: p.X * float64(w-1), Y: p.Y * float64(h-1)}
}

// drawSegment stamps discs of radius r along a to b.
func drawSegment(img *image.NRGBA, a, b Point, r float64, c color.NRGBA) {
	steps := int(math.Ceil(math.Hypot(b.X-a.X, b.Y-a.Y)))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		disc(img, a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, r, c)
	}
}

func disc(img *image.NRGBA, cx, cy, r float64, c color.NRGBA) {
	bounds := img.Bounds()
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			if !image.Pt(x, y).In(bounds) {
				continue
			}
			if dx, dy := float64(x)-cx, float64(y)-cy; dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}
