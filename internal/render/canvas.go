package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	white     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	axisGray  = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	gridGray  = color.RGBA{R: 225, G: 225, B: 225, A: 255}
	barBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	boxOrange = color.RGBA{R: 255, G: 160, B: 90, A: 255}
)

// glyph metrics of basicfont.Face7x13
const (
	glyphW = 7
	glyphH = 13
)

type anchor int

const (
	anchorLeft anchor = iota
	anchorCenter
	anchorRight
)

// canvas is a white RGBA image with a few plotting primitives.
type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return &canvas{img: img}
}

func (c *canvas) bounds() image.Rectangle { return c.img.Bounds() }

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *canvas) hline(x0, x1, y int, col color.Color) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	c.fill(image.Rect(x0, y, x1+1, y+1), col)
}

func (c *canvas) vline(x, y0, y1 int, col color.Color) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	c.fill(image.Rect(x, y0, x+1, y1+1), col)
}

func (c *canvas) outline(r image.Rectangle, col color.Color) {
	c.hline(r.Min.X, r.Max.X-1, r.Min.Y, col)
	c.hline(r.Min.X, r.Max.X-1, r.Max.Y-1, col)
	c.vline(r.Min.X, r.Min.Y, r.Max.Y-1, col)
	c.vline(r.Max.X-1, r.Min.Y, r.Max.Y-1, col)
}

func (c *canvas) dot(x, y, radius int, col color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				c.img.Set(x+dx, y+dy, col)
			}
		}
	}
}

// textSize returns the pixel size of s drawn at scale.
func textSize(s string, scale float64) (int, int) {
	n := len([]rune(s))
	return int(math.Ceil(float64(n*glyphW) * scale)), int(math.Ceil(glyphH * scale))
}

// textImage renders s at native size onto a transparent image.
func textImage(s string, col color.Color) *image.RGBA {
	w := len([]rune(s)) * glyphW
	if w == 0 {
		w = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, glyphH))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(0), Y: fixed.I(basicfont.Face7x13.Ascent)},
	}
	d.DrawString(s)
	return img
}

// text draws s with its vertical center at y. The anchor picks which side of
// the string sits at x.
func (c *canvas) text(x, y int, s string, col color.Color, scale float64, a anchor) image.Rectangle {
	w, h := textSize(s, scale)
	switch a {
	case anchorCenter:
		x -= w / 2
	case anchorRight:
		x -= w
	}
	dst := image.Rect(x, y-h/2, x+w, y-h/2+h)
	c.blit(textImage(s, col), dst)
	return dst
}

// vtext draws s rotated a quarter turn counter-clockwise, centered on (x, y).
func (c *canvas) vtext(x, y int, s string, col color.Color, scale float64) {
	src := rotateCCW(textImage(s, col))
	w, h := textSize(s, scale)
	dst := image.Rect(x-h/2, y-w/2, x-h/2+h, y-w/2+w)
	c.blit(src, dst)
}

// vtextTop draws rotated text whose end is at (x, y), reading upward.
func (c *canvas) vtextTop(x, y int, s string, col color.Color, scale float64) {
	src := rotateCCW(textImage(s, col))
	w, h := textSize(s, scale)
	dst := image.Rect(x-h/2, y, x-h/2+h, y+w)
	c.blit(src, dst)
}

func (c *canvas) blit(src *image.RGBA, dst image.Rectangle) {
	if dst.Dx() == src.Bounds().Dx() && dst.Dy() == src.Bounds().Dy() {
		draw.Draw(c.img, dst, src, image.Point{}, draw.Over)
		return
	}
	xdraw.CatmullRom.Scale(c.img, dst, src, src.Bounds(), draw.Over, nil)
}

func rotateCCW(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(y, b.Dx()-1-x, src.At(x, y))
		}
	}
	return out
}

// title draws a centered chart title near the top edge.
func (c *canvas) title(s string) {
	c.text(c.bounds().Dx()/2, 24, s, black, 1.6, anchorCenter)
}

func (c *canvas) png() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// niceTicks returns evenly spaced round values covering [lo, hi].
func niceTicks(lo, hi float64, n int) []float64 {
	if n < 2 || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	if hi <= lo {
		hi = lo + 1
	}
	mag := math.Pow(10, math.Floor(math.Log10((hi-lo)/float64(n-1))))
	best, bestScore := mag, math.MaxFloat64
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		step := m * mag
		count := math.Ceil((hi - lo) / step)
		if s := math.Abs(count - float64(n)); s < bestScore {
			best, bestScore = step, s
		}
	}
	var out []float64
	for v := math.Floor(lo/best) * best; v <= math.Ceil(hi/best)*best+best/2; v += best {
		out = append(out, v)
	}
	return out
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// valueAxis maps data values in [lo, hi] to pixel rows in plot and draws
// gridlines with tick labels on the left edge.
type valueAxis struct {
	lo, hi float64
	plot   image.Rectangle
}

func (a valueAxis) y(v float64) int {
	f := (v - a.lo) / (a.hi - a.lo)
	return a.plot.Max.Y - int(math.Round(f*float64(a.plot.Dy())))
}

func (a valueAxis) draw(c *canvas, ticks []float64, name string) {
	for _, t := range ticks {
		if t < a.lo || t > a.hi {
			continue
		}
		y := a.y(t)
		c.hline(a.plot.Min.X, a.plot.Max.X, y, gridGray)
		c.hline(a.plot.Min.X-5, a.plot.Min.X, y, axisGray)
		c.text(a.plot.Min.X-8, y, formatTick(t), axisGray, 1, anchorRight)
	}
	c.vline(a.plot.Min.X, a.plot.Min.Y, a.plot.Max.Y, axisGray)
	c.hline(a.plot.Min.X, a.plot.Max.X, a.plot.Max.Y, axisGray)
	c.vtext(a.plot.Min.X-60, (a.plot.Min.Y+a.plot.Max.Y)/2, name, black, 1.2)
}
