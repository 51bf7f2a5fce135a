package render

import (
	"image"
	"image/color"
	"math"

	"github.com/pspoerri/metgrid/internal/dataplane"
)

// Stop pins a colour to a position in [0, 1] along a ramp.
type Stop struct {
	At    float64
	Color color.RGBA
}

// Ramp is a piecewise-linear colour scale. Stops must be sorted by At.
type Ramp []Stop

// DefaultRamp runs blue, cyan, green, yellow, red.
var DefaultRamp = Ramp{
	{0.00, color.RGBA{0, 0, 160, 255}},
	{0.25, color.RGBA{0, 200, 255, 255}},
	{0.50, color.RGBA{40, 200, 40, 255}},
	{0.75, color.RGBA{255, 230, 0, 255}},
	{1.00, color.RGBA{200, 0, 0, 255}},
}

// GreyRamp runs black to white.
var GreyRamp = Ramp{
	{0, color.RGBA{0, 0, 0, 255}},
	{1, color.RGBA{255, 255, 255, 255}},
}

// Color returns the ramp colour at f, clamped to [0, 1].
func (r Ramp) Color(f float64) color.RGBA {
	if len(r) == 0 {
		return color.RGBA{}
	}
	if f <= r[0].At || math.IsNaN(f) {
		return r[0].Color
	}
	for i := 1; i < len(r); i++ {
		if f > r[i].At {
			continue
		}
		a, b := r[i-1], r[i]
		t := (f - a.At) / (b.At - a.At)
		mix := func(x, y uint8) uint8 {
			return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
		}
		return color.RGBA{
			R: mix(a.Color.R, b.Color.R),
			G: mix(a.Color.G, b.Color.G),
			B: mix(a.Color.B, b.Color.B),
			A: mix(a.Color.A, b.Color.A),
		}
	}
	return r[len(r)-1].Color
}

// Options controls Image.
type Options struct {
	// Min and Max bound the colour scale. When both are zero the range of
	// the plane is used.
	Min, Max float64
	Ramp     Ramp
	// Scale repeats every grid point Scale x Scale times (default 1).
	Scale int
}

// Image paints p through the colour ramp, north up. Bad data is
// transparent.
func Image(p *dataplane.Plane, opts Options) *image.RGBA {
	lo, hi := opts.Min, opts.Max
	if lo == 0 && hi == 0 {
		lo, hi, _ = p.Range()
	}
	ramp := opts.Ramp
	if ramp == nil {
		ramp = DefaultRamp
	}
	span := hi - lo

	return paint(p, opts.Scale, func(v float64) color.RGBA {
		if dataplane.IsBad(v) {
			return color.RGBA{}
		}
		if span <= 0 {
			return ramp.Color(0.5)
		}
		return ramp.Color((v - lo) / span)
	})
}

// paint maps every grid point through fn into an image with row 0 at the
// top (the last grid row).
func paint(p *dataplane.Plane, scale int, fn func(float64) color.RGBA) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	nx, ny := p.Nx(), p.Ny()
	img := image.NewRGBA(image.Rect(0, 0, nx*scale, ny*scale))
	for y := 0; y < ny; y++ {
		row := p.Row(y)
		top := (ny - 1 - y) * scale
		for x, v := range row {
			c := fn(v)
			for j := 0; j < scale; j++ {
				for i := 0; i < scale; i++ {
					img.SetRGBA(x*scale+i, top+j, c)
				}
			}
		}
	}
	return img
}
