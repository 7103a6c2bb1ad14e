package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"github.com/ivlev/inkreplay/internal/element"
)

const ellipseSegments = 48

// Raster is the reference renderer: it draws frames into an RGBA
// buffer, good enough to replay headlessly and to export frame
// sequences. Path-like elements reveal along their length; shapes
// reveal their outline and fade their fill in.
type Raster struct {
	width  int
	height int

	mu       sync.Mutex
	viewport Viewport
	img      *image.RGBA
	rast     *vector.Rasterizer
}

// NewRaster creates a renderer with a surface of the given size.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render surface %dx%d has zero dimensions", width, height)
	}
	return &Raster{
		width:    width,
		height:   height,
		viewport: Viewport{Scale: 1, Width: width, Height: height},
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
		rast:     vector.NewRasterizer(width, height),
	}, nil
}

func (r *Raster) SetViewport(v Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.Scale <= 0 {
		v.Scale = 1
	}
	r.viewport = v
}

func (r *Raster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw.Draw(r.img, r.img.Bounds(), image.White, image.Point{}, draw.Src)
}

// RenderFrame draws every visible element at its reveal progress. A
// malformed element is logged and skipped; one bad element never aborts
// the frame.
func (r *Raster) RenderFrame(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	draw.Draw(r.img, r.img.Bounds(), image.White, image.Point{}, draw.Src)

	for _, e := range f.Elements {
		p, ok := f.Progress[e.ID]
		if !ok || p <= 0 {
			continue
		}
		if err := r.drawElement(e, p); err != nil {
			log.Printf("[!] Skipping element %s: %v", e.ID, err)
		}
	}

	if f.Overlay != nil {
		r.drawOverlay(f.Overlay)
	}
	if f.Badge != "" {
		r.drawBadge()
	}
	return nil
}

// Image returns a copy of the last rendered frame.
func (r *Raster) Image() *image.RGBA {
	return r.Snapshot(nil)
}

// Snapshot copies the last rendered frame into dst, allocating when
// dst is nil or the wrong size. The export pipeline passes pooled
// buffers here.
func (r *Raster) Snapshot(dst *image.RGBA) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dst == nil || !dst.Bounds().Eq(r.img.Bounds()) {
		dst = image.NewRGBA(r.img.Bounds())
	}
	copy(dst.Pix, r.img.Pix)
	return dst
}

func (r *Raster) drawElement(e *element.Element, progress float64) error {
	switch e.Type {
	case element.TypePath, element.TypeHighlighter:
		if len(e.Points) == 0 {
			return fmt.Errorf("path element has no points")
		}
		r.strokePolyline(e.Points, e.Style, progress, false)
	case element.TypeLine, element.TypeArrow:
		r.strokePolyline(lineOutline(e), e.Style, progress, false)
	case element.TypeRectangle, element.TypeDiamond, element.TypeEllipse:
		outline := shapeOutline(e)
		if fill, ok := parseColor(e.Style.FillColor); ok {
			r.fillPolygon(outline, scaleAlpha(fill, progress*opacity(e.Style)))
		}
		r.strokePolyline(outline, e.Style, progress, true)
	case element.TypeText, element.TypeLibrary:
		// Rendered as a fading placeholder box; glyph and component
		// rasterization belongs to the host surface.
		outline := shapeOutline(e)
		col, ok := parseColor(e.Style.StrokeColor)
		if !ok {
			col = color.NRGBA{A: 255}
		}
		r.fillPolygon(outline, scaleAlpha(col, 0.25*progress*opacity(e.Style)))
		r.strokePolyline(outline, e.Style, progress, true)
	default:
		return fmt.Errorf("unknown element type %q", e.Type)
	}
	return nil
}

// strokePolyline reveals a polyline up to progress of its cumulative
// length. Closed outlines are stroked the same way, so shape borders
// draw themselves clockwise from the first corner.
func (r *Raster) strokePolyline(pts []element.Point, style element.Style, progress float64, closed bool) {
	if len(pts) == 0 {
		return
	}
	col, ok := parseColor(style.StrokeColor)
	if !ok {
		col = color.NRGBA{A: 255}
	}
	col = scaleAlpha(col, opacity(style))

	width := style.StrokeWidth
	if width <= 0 {
		width = 2
	}
	half := width / 2 * r.viewport.Scale
	if half < 0.5 {
		half = 0.5
	}

	if closed && len(pts) > 1 {
		pts = append(append([]element.Point{}, pts...), pts[0])
	}
	visible := partialPolyline(pts, progress)

	if len(visible) == 1 {
		// Single point: a dot the width of the stroke.
		sx, sy := r.toSurface(visible[0])
		r.fillCircle(sx, sy, half, col)
		return
	}

	for i := 1; i < len(visible); i++ {
		ax, ay := r.toSurface(visible[i-1])
		bx, by := r.toSurface(visible[i])
		r.fillSegment(ax, ay, bx, by, half, col)
		r.fillCircle(bx, by, half, col)
	}
	if len(visible) > 1 {
		ax, ay := r.toSurface(visible[0])
		r.fillCircle(ax, ay, half, col)
	}
}

func (r *Raster) fillPolygon(pts []element.Point, col color.NRGBA) {
	if len(pts) < 3 || col.A == 0 {
		return
	}
	r.rast.Reset(r.width, r.height)
	sx, sy := r.toSurface(pts[0])
	r.rast.MoveTo(float32(sx), float32(sy))
	for _, p := range pts[1:] {
		x, y := r.toSurface(p)
		r.rast.LineTo(float32(x), float32(y))
	}
	r.rast.ClosePath()
	r.rast.Draw(r.img, r.img.Bounds(), image.NewUniform(col), image.Point{})
}

// fillSegment rasterizes one stroked segment as a quad perpendicular to
// its direction.
func (r *Raster) fillSegment(ax, ay, bx, by, half float64, col color.NRGBA) {
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Perpendicular unit vector scaled to half width.
	px, py := -dy/length*half, dx/length*half

	r.rast.Reset(r.width, r.height)
	r.rast.MoveTo(float32(ax+px), float32(ay+py))
	r.rast.LineTo(float32(bx+px), float32(by+py))
	r.rast.LineTo(float32(bx-px), float32(by-py))
	r.rast.LineTo(float32(ax-px), float32(ay-py))
	r.rast.ClosePath()
	r.rast.Draw(r.img, r.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (r *Raster) fillCircle(cx, cy, radius float64, col color.NRGBA) {
	if radius <= 0 {
		return
	}
	r.rast.Reset(r.width, r.height)
	for i := 0; i <= ellipseSegments; i++ {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		x := float32(cx + radius*math.Cos(a))
		y := float32(cy + radius*math.Sin(a))
		if i == 0 {
			r.rast.MoveTo(x, y)
		} else {
			r.rast.LineTo(x, y)
		}
	}
	r.rast.ClosePath()
	r.rast.Draw(r.img, r.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (r *Raster) drawOverlay(o *Overlay) {
	t := o.Progress
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	switch o.Type {
	case "slide":
		// A wipe that has uncovered t of the surface.
		covered := int(float64(r.width) * (1 - t))
		if covered <= 0 {
			return
		}
		veil := image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 230})
		rect := image.Rect(r.width-covered, 0, r.width, r.height)
		draw.Draw(r.img, rect, veil, image.Point{}, draw.Over)
	default: // fade, zoom
		// Fade out then back in: strongest at the midpoint.
		alpha := uint8(200 * (1 - math.Abs(2*t-1)))
		veil := image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: alpha})
		draw.Draw(r.img, r.img.Bounds(), veil, image.Point{}, draw.Over)
	}
}

// drawBadge marks the corner while the page badge window is open. The
// reference renderer has no text shaping, so the badge is a plain tab.
func (r *Raster) drawBadge() {
	badge := image.Rect(12, 12, 108, 40)
	draw.Draw(r.img, badge, image.NewUniform(color.NRGBA{R: 34, G: 34, B: 34, A: 220}), image.Point{}, draw.Over)
}

func (r *Raster) toSurface(p element.Point) (float64, float64) {
	return (p.X - r.viewport.X) * r.viewport.Scale, (p.Y - r.viewport.Y) * r.viewport.Scale
}

// partialPolyline cuts a polyline at progress of its cumulative length.
func partialPolyline(pts []element.Point, progress float64) []element.Point {
	if progress >= 1 || len(pts) < 2 {
		return pts
	}
	if progress <= 0 {
		return nil
	}

	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	if total == 0 {
		return pts[:1]
	}

	budget := total * progress
	out := []element.Point{pts[0]}
	for i := 1; i < len(pts) && budget > 0; i++ {
		seg := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		if seg <= budget {
			out = append(out, pts[i])
			budget -= seg
			continue
		}
		t := budget / seg
		out = append(out, element.Point{
			X: pts[i-1].X + (pts[i].X-pts[i-1].X)*t,
			Y: pts[i-1].Y + (pts[i].Y-pts[i-1].Y)*t,
		})
		break
	}
	return out
}

// shapeOutline returns the closed outline for a bounding-box type.
func shapeOutline(e *element.Element) []element.Point {
	x, y, w, h := e.X, e.Y, e.Width, e.Height
	switch e.Type {
	case element.TypeDiamond:
		return []element.Point{
			{X: x + w/2, Y: y},
			{X: x + w, Y: y + h/2},
			{X: x + w/2, Y: y + h},
			{X: x, Y: y + h/2},
		}
	case element.TypeEllipse:
		cx, cy := x+w/2, y+h/2
		pts := make([]element.Point, 0, ellipseSegments)
		for i := 0; i < ellipseSegments; i++ {
			a := 2 * math.Pi * float64(i) / ellipseSegments
			pts = append(pts, element.Point{
				X: cx + w/2*math.Cos(a),
				Y: cy + h/2*math.Sin(a),
			})
		}
		return pts
	default:
		return []element.Point{
			{X: x, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		}
	}
}

// lineOutline returns the stroke path for line and arrow elements,
// including the arrowhead barbs.
func lineOutline(e *element.Element) []element.Point {
	start := element.Point{X: e.X, Y: e.Y}
	end := element.Point{X: e.X + e.Width, Y: e.Y + e.Height}
	pts := []element.Point{start, end}
	if e.Type != element.TypeArrow {
		return pts
	}

	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return pts
	}
	head := math.Min(14, length/3)
	angle := math.Atan2(dy, dx)
	for _, spread := range []float64{math.Pi * 7 / 8, -math.Pi * 7 / 8} {
		pts = append(pts, element.Point{
			X: end.X + head*math.Cos(angle+spread),
			Y: end.Y + head*math.Sin(angle+spread),
		}, end)
	}
	return pts
}

// parseColor understands #rgb, #rrggbb and #rrggbbaa. Empty values and
// "transparent" report ok=false.
func parseColor(s string) (color.NRGBA, bool) {
	if s == "" || s == "transparent" || s == "none" {
		return color.NRGBA{}, false
	}
	if s[0] == '#' {
		s = s[1:]
	}
	hex := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		}
		return 0, false
	}
	pair := func(i int) (uint8, bool) {
		hi, ok1 := hex(s[i])
		lo, ok2 := hex(s[i+1])
		return hi<<4 | lo, ok1 && ok2
	}

	switch len(s) {
	case 3:
		r, ok1 := hex(s[0])
		g, ok2 := hex(s[1])
		b, ok3 := hex(s[2])
		if !ok1 || !ok2 || !ok3 {
			return color.NRGBA{}, false
		}
		return color.NRGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, true
	case 6, 8:
		r, ok1 := pair(0)
		g, ok2 := pair(2)
		b, ok3 := pair(4)
		a := uint8(255)
		ok4 := true
		if len(s) == 8 {
			a, ok4 = pair(6)
		}
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return color.NRGBA{}, false
		}
		return color.NRGBA{R: r, G: g, B: b, A: a}, true
	}
	return color.NRGBA{}, false
}

// opacity treats the zero value as fully opaque so hand-built elements
// without an explicit style still draw.
func opacity(s element.Style) float64 {
	if s.Opacity <= 0 {
		return 1
	}
	return s.Opacity
}

func scaleAlpha(c color.NRGBA, factor float64) color.NRGBA {
	if factor <= 0 {
		c.A = 0
		return c
	}
	if factor > 1 {
		factor = 1
	}
	c.A = uint8(float64(c.A) * factor)
	return c
}
