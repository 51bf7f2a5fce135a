// Package dataplane holds a two-dimensional field of values on a grid.
package dataplane

import (
	"fmt"
	"math"
	"time"
)

// BadData marks a missing value.
const BadData = -9999.0

// IsBad reports whether v is the bad-data sentinel (or NaN).
func IsBad(v float64) bool {
	return math.IsNaN(v) || math.Abs(v-BadData) < 1.0e-4
}

// Plane is an Nx x Ny field stored row-major (index y*Nx + x) with
// (0, 0) at the lower-left grid point.
type Plane struct {
	nx, ny int
	data   []float64

	InitTime  time.Time
	ValidTime time.Time
	LeadSec   int
	AccumSec  int
}

// New returns an nx x ny plane filled with BadData.
func New(nx, ny int) *Plane {
	if nx < 0 || ny < 0 {
		panic(fmt.Sprintf("dataplane: negative dimensions %dx%d", nx, ny))
	}
	p := &Plane{nx: nx, ny: ny, data: make([]float64, nx*ny)}
	p.Fill(BadData)
	return p
}

// FromSlice wraps data, which must hold nx*ny values, without copying.
func FromSlice(nx, ny int, data []float64) (*Plane, error) {
	if len(data) != nx*ny {
		return nil, fmt.Errorf("dataplane: %d values for a %dx%d plane", len(data), nx, ny)
	}
	return &Plane{nx: nx, ny: ny, data: data}, nil
}

func (p *Plane) Nx() int { return p.nx }
func (p *Plane) Ny() int { return p.ny }

// Data returns the backing slice.
func (p *Plane) Data() []float64 { return p.data }

// InBounds reports whether (x, y) is a pixel of the plane.
func (p *Plane) InBounds(x, y int) bool {
	return x >= 0 && x < p.nx && y >= 0 && y < p.ny
}

func (p *Plane) Get(x, y int) float64 {
	return p.data[y*p.nx+x]
}

func (p *Plane) Set(x, y int, v float64) {
	p.data[y*p.nx+x] = v
}

// Row returns row y as a sub-slice of the backing array.
func (p *Plane) Row(y int) []float64 {
	return p.data[y*p.nx : (y+1)*p.nx]
}

// Fill sets every value to v.
func (p *Plane) Fill(v float64) {
	for i := range p.data {
		p.data[i] = v
	}
}

// Range returns the minimum and maximum of the good values. ok is false when
// the plane has none.
func (p *Plane) Range() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range p.data {
		if IsBad(v) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// CountBad returns the number of bad values.
func (p *Plane) CountBad() int {
	n := 0
	for _, v := range p.data {
		if IsBad(v) {
			n++
		}
	}
	return n
}

// CopyTimes copies the timing metadata of o onto p.
func (p *Plane) CopyTimes(o *Plane) {
	p.InitTime = o.InitTime
	p.ValidTime = o.ValidTime
	p.LeadSec = o.LeadSec
	p.AccumSec = o.AccumSec
}
