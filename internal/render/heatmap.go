package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// colormap is a piecewise-linear gradient over [0, 1].
type colormap []color.RGBA

var (
	coolwarm = colormap{{59, 76, 192, 255}, {221, 221, 221, 255}, {180, 4, 38, 255}}
	blues    = colormap{{247, 251, 255, 255}, {107, 174, 214, 255}, {8, 48, 107, 255}}
)

func (m colormap) at(f float64) color.RGBA {
	if math.IsNaN(f) {
		return white
	}
	f = math.Max(0, math.Min(1, f))
	seg := f * float64(len(m)-1)
	i := int(seg)
	if i >= len(m)-1 {
		return m[len(m)-1]
	}
	t := seg - float64(i)
	a, b := m[i], m[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + t*(float64(y)-float64(x)))) }
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

// isDark picks the annotation color for a cell background.
func isDark(c color.RGBA) bool {
	lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	return lum < 128
}

// heatmap is an annotated matrix plot with a color bar.
type heatmap struct {
	Title          string
	XLabel, YLabel string
	Rows, Cols     []string
	Values         [][]float64
	Format         string // annotation format, e.g. "%.2f"
	Lo, Hi         float64
	Cmap           colormap
}

const heatCell = 64

func (h heatmap) render(minW, minH int) ([]byte, error) {
	if len(h.Rows) == 0 || len(h.Cols) == 0 {
		return nil, fmt.Errorf("heatmap %q: empty matrix", h.Title)
	}
	maxLen := func(ss []string) int {
		n := 0
		for _, s := range ss {
			if l := len([]rune(s)); l > n {
				n = l
			}
		}
		return n
	}
	left := maxLen(h.Rows)*glyphW + 60
	bottom := maxLen(h.Cols)*glyphW + 50
	top, right := 60, 110
	w := left + len(h.Cols)*heatCell + right
	ht := top + len(h.Rows)*heatCell + bottom
	if w < minW {
		w = minW
	}
	if ht < minH {
		ht = minH
	}
	c := newCanvas(w, ht)
	c.title(h.Title)

	span := h.Hi - h.Lo
	if span <= 0 {
		span = 1
	}
	for i, rl := range h.Rows {
		y0 := top + i*heatCell
		c.text(left-8, y0+heatCell/2, rl, black, 1, anchorRight)
		for j := range h.Cols {
			x0 := left + j*heatCell
			v := h.Values[i][j]
			bg := h.Cmap.at((v - h.Lo) / span)
			cell := image.Rect(x0, y0, x0+heatCell, y0+heatCell)
			c.fill(cell, bg)
			c.outline(cell, white)
			label := "-"
			if !math.IsNaN(v) {
				label = fmt.Sprintf(h.Format, v)
			}
			fg := color.Color(black)
			if isDark(bg) {
				fg = white
			}
			c.text(x0+heatCell/2, y0+heatCell/2, label, fg, 1, anchorCenter)
		}
	}
	gridBottom := top + len(h.Rows)*heatCell
	for j, cl := range h.Cols {
		c.vtextTop(left+j*heatCell+heatCell/2, gridBottom+8, cl, black, 1)
	}
	if h.XLabel != "" {
		c.text(left+len(h.Cols)*heatCell/2, ht-16, h.XLabel, black, 1.2, anchorCenter)
	}
	if h.YLabel != "" {
		c.vtext(18, top+len(h.Rows)*heatCell/2, h.YLabel, black, 1.2)
	}

	// color bar
	barX := left + len(h.Cols)*heatCell + 24
	barH := len(h.Rows) * heatCell
	for k := 0; k < barH; k++ {
		f := 1 - float64(k)/float64(barH-1)
		c.hline(barX, barX+16, top+k, h.Cmap.at(f))
	}
	c.outline(image.Rect(barX, top, barX+17, top+barH), axisGray)
	for _, t := range niceTicks(h.Lo, h.Hi, 5) {
		if t < h.Lo || t > h.Hi {
			continue
		}
		y := top + int(math.Round((1-(t-h.Lo)/span)*float64(barH-1)))
		c.hline(barX+17, barX+21, y, axisGray)
		c.text(barX+24, y, formatTick(t), axisGray, 1, anchorLeft)
	}
	return c.png()
}

// rangeOf returns the finite min and max of a matrix.
func rangeOf(vals [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range vals {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi
}
