package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
)

var cloudPalette = []color.RGBA{
	{R: 68, G: 1, B: 84, A: 255},
	{R: 59, G: 82, B: 139, A: 255},
	{R: 33, G: 145, B: 140, A: 255},
	{R: 94, G: 201, B: 98, A: 255},
	{R: 49, G: 104, B: 142, A: 255},
	{R: 253, G: 231, B: 37, A: 255},
}

const (
	cloudMinScale = 1.0
	cloudMaxScale = 5.0
)

// wordCloud places the most frequent terms on an Archimedean spiral from the
// center, largest first. Terms that do not fit are left out.
func wordCloud(title string, terms []analysis.TermCount, w, h int) ([]byte, int, error) {
	if len(terms) == 0 {
		return nil, 0, fmt.Errorf("word cloud %q: no terms", title)
	}
	c := newCanvas(w, h)
	c.title(title)
	area := image.Rect(10, 50, w-10, h-10)

	maxC, minC := terms[0].Count, terms[len(terms)-1].Count
	scaleOf := func(n int) float64 {
		if maxC == minC {
			return (cloudMinScale + cloudMaxScale) / 2
		}
		f := float64(n-minC) / float64(maxC-minC)
		return cloudMinScale + f*(cloudMaxScale-cloudMinScale)
	}

	cx, cy := area.Min.X+area.Dx()/2, area.Min.Y+area.Dy()/2
	var placed []image.Rectangle
	for i, tc := range terms {
		scale := scaleOf(tc.Count)
		tw, th := textSize(tc.Term, scale)
		if tw > area.Dx() || th > area.Dy() {
			continue
		}
		spot, ok := findSpot(area, placed, tw, th, cx, cy)
		if !ok {
			continue
		}
		col := cloudPalette[i%len(cloudPalette)]
		c.text(spot.Min.X, spot.Min.Y+th/2, tc.Term, col, scale, anchorLeft)
		placed = append(placed, spot)
	}
	b, err := c.png()
	return b, len(placed), err
}

func findSpot(area image.Rectangle, placed []image.Rectangle, tw, th, cx, cy int) (image.Rectangle, bool) {
	const step = 0.15
	limit := math.Hypot(float64(area.Dx()), float64(area.Dy()))
	for t := 0.0; ; t += step {
		r := 4 * t
		if r > limit {
			return image.Rectangle{}, false
		}
		x := cx + int(r*math.Cos(t)) - tw/2
		y := cy + int(r*math.Sin(t)*float64(area.Dy())/float64(area.Dx())) - th/2
		cand := image.Rect(x, y, x+tw, y+th)
		if !cand.In(area) {
			continue
		}
		free := true
		for _, p := range placed {
			if cand.Overlaps(p.Inset(-1)) {
				free = false
				break
			}
		}
		if free {
			return cand, true
		}
	}
}
