package render

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
)

// plotArea leaves room for the title, the axis names and tick labels.
func plotArea(w, h int) image.Rectangle {
	return image.Rect(110, 60, w-40, h-80)
}

// countPlot draws one vertical bar per category.
func countPlot(title, xName string, counts []analysis.CategoryCount, w, h int) ([]byte, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("count plot %q: no categories", title)
	}
	c := newCanvas(w, h)
	c.title(title)
	plot := plotArea(w, h)

	maxN := 0
	for _, kv := range counts {
		if kv.Count > maxN {
			maxN = kv.Count
		}
	}
	ticks := niceTicks(0, float64(maxN), 6)
	ax := valueAxis{lo: 0, hi: ticks[len(ticks)-1], plot: plot}
	ax.draw(c, ticks, "Count")

	slot := plot.Dx() / len(counts)
	barW := int(float64(slot) * 0.8)
	for i, kv := range counts {
		cx := plot.Min.X + i*slot + slot/2
		top := ax.y(float64(kv.Count))
		c.fill(image.Rect(cx-barW/2, top, cx+barW/2, plot.Max.Y), barBlue)
		c.text(cx, top-10, strconv.Itoa(kv.Count), axisGray, 1, anchorCenter)
		c.text(cx, plot.Max.Y+14, kv.Value, black, 1, anchorCenter)
	}
	c.text(plot.Min.X+plot.Dx()/2, h-30, xName, black, 1.2, anchorCenter)
	return c.png()
}

// boxPlot draws Tukey box plots, one per group.
func boxPlot(title, xName, yName string, groups []analysis.BoxGroup, w, h int) ([]byte, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("box plot %q: no groups", title)
	}
	c := newCanvas(w, h)
	c.title(title)
	plot := plotArea(w, h)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		lo = math.Min(lo, g.Min)
		hi = math.Max(hi, g.Max)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	ticks := niceTicks(lo-pad, hi+pad, 6)
	ax := valueAxis{lo: ticks[0], hi: ticks[len(ticks)-1], plot: plot}
	ax.draw(c, ticks, yName)

	slot := plot.Dx() / len(groups)
	boxW := int(float64(slot) * 0.5)
	for i, g := range groups {
		cx := plot.Min.X + i*slot + slot/2
		q1, q3, med := ax.y(g.Q1), ax.y(g.Q3), ax.y(g.Median)
		lw, hw := ax.y(g.LowWhisker), ax.y(g.HiWhisker)

		c.vline(cx, hw, q3, axisGray)
		c.vline(cx, q1, lw, axisGray)
		c.hline(cx-boxW/4, cx+boxW/4, hw, axisGray)
		c.hline(cx-boxW/4, cx+boxW/4, lw, axisGray)

		box := image.Rect(cx-boxW/2, q3, cx+boxW/2, q1+1)
		c.fill(box, boxOrange)
		c.outline(box, axisGray)
		c.fill(image.Rect(cx-boxW/2, med-1, cx+boxW/2, med+1), black)

		for _, o := range g.Outliers {
			c.dot(cx, ax.y(o), 3, axisGray)
		}
		c.text(cx, plot.Max.Y+14, g.Key, black, 1, anchorCenter)
	}
	c.text(plot.Min.X+plot.Dx()/2, h-30, xName, black, 1.2, anchorCenter)
	return c.png()
}
