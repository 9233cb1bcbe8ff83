// Package figure renders a confusion matrix chart
package figure

import "errors"
import "fmt"
import "image"
import "image/color"
import "image/draw"
import "image/png"
import "os"

import "golang.org/x/image/font"
import "golang.org/x/image/font/basicfont"
import "golang.org/x/image/math/fixed"

import "github.com/neurlang/fetalheart/metrics"

const cell = 72
const margin = 96
const summary = 56

var white = color.RGBA{255, 255, 255, 255}
var black = color.RGBA{0, 0, 0, 255}
var grey = color.RGBA{232, 232, 232, 255}

// diagonal cells are shaded blue, off-diagonal red, by share of the row
var blue = color.RGBA{0, 114, 189, 255}
var red = color.RGBA{217, 83, 25, 255}

func blend(c color.RGBA, share float64) color.RGBA {
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	mix := func(a uint8) uint8 {
		return uint8(float64(255) - share*float64(255-int(a)))
	}
	return color.RGBA{mix(c.R), mix(c.G), mix(c.B), 255}
}

func ink(c color.RGBA) color.RGBA {
	if int(c.R)+int(c.G)+int(c.B) < 3*150 {
		return white
	}
	return black
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

// text draws s centered on (cx, cy)
func text(img *image.RGBA, s string, cx, cy int, c color.Color) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: basicfont.Face7x13}
	w := d.MeasureString(s).Round()
	d.Dot = fixed.P(cx-w/2, cy+basicfont.Face7x13.Ascent/2)
	d.DrawString(s)
}

func percent(v float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*v)
}

// ConfusionChart draws the confusion matrix of r. Rows are true classes,
// columns predicted classes. The column right of the matrix holds per-class
// recall, the row below it per-class precision.
func ConfusionChart(r *metrics.Report, title string) (*image.RGBA, error) {
	k := len(r.Classes)
	if k == 0 || len(r.Confusion) != k || len(r.PerClass) != k {
		return nil, errors.New("figure: empty or inconsistent confusion matrix")
	}
	width := 2*margin + k*cell + summary
	height := 2*margin + k*cell + summary
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), white)

	text(img, title, width/2, margin/3, black)
	text(img, "Predicted Class", margin+k*cell/2, height-margin/3, black)
	text(img, "True", margin/3, margin+k*cell/2-8, black)
	text(img, "Class", margin/3, margin+k*cell/2+8, black)

	for t := 0; t < k; t++ {
		support := r.PerClass[t].Support
		y0 := margin + t*cell
		text(img, r.Classes[t], margin-margin/3, y0+cell/2, black)
		for p := 0; p < k; p++ {
			x0 := margin + p*cell
			var share float64
			if support > 0 {
				share = float64(r.Confusion[t][p]) / float64(support)
			}
			base := red
			if t == p {
				base = blue
			}
			bg := blend(base, share)
			fill(img, image.Rect(x0+1, y0+1, x0+cell, y0+cell), bg)
			text(img, fmt.Sprint(r.Confusion[t][p]), x0+cell/2, y0+cell/2, ink(bg))
		}
		x0 := margin + k*cell
		fill(img, image.Rect(x0+1, y0+1, x0+summary, y0+cell), grey)
		text(img, percent(r.PerClass[t].Recall, r.PerClass[t].RecallDefined), x0+summary/2, y0+cell/2, black)
	}
	for p := 0; p < k; p++ {
		x0 := margin + p*cell
		y0 := margin + k*cell
		text(img, r.Classes[p], x0+cell/2, margin-margin/4, black)
		fill(img, image.Rect(x0+1, y0+1, x0+cell, y0+summary), grey)
		text(img, percent(r.PerClass[p].Precision, r.PerClass[p].PrecisionDefined), x0+cell/2, y0+summary/2, black)
	}
	x0, y0 := margin+k*cell, margin+k*cell
	fill(img, image.Rect(x0+1, y0+1, x0+summary, y0+summary), grey)
	text(img, percent(r.Accuracy, r.Total > 0), x0+summary/2, y0+summary/2, black)
	return img, nil
}

// SavePNG writes img as a PNG file
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
