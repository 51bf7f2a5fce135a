package regrid

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// bounder is implemented by grids that know their own lat/lon extent
// (grid.Grid handles poles and the antimeridian there).
type bounder interface {
	Bounds() *geom.Bounds
}

// mapperBounds returns the lat/lon extent of m with X = east-positive
// longitude, sampled along the grid edges when m cannot report it.
func mapperBounds(m Mapper) *geom.Bounds {
	if b, ok := m.(bounder); ok {
		return b.Bounds()
	}
	b := geom.NewBounds()
	nx, ny := m.Nx(), m.Ny()
	add := func(x, y int) {
		lat, lon := m.XYToLatLon(float64(x), float64(y))
		e := math.Mod(-lon+540.0, 360.0) - 180.0
		b.Extend(geom.NewBoundsPoint(geom.Point{X: e, Y: lat}))
	}
	for x := 0; x < nx; x++ {
		add(x, 0)
		add(x, ny-1)
	}
	for y := 0; y < ny; y++ {
		add(0, y)
		add(nx-1, y)
	}
	return b
}

// overlaps compares two extents, treating a box spanning more than 180
// degrees of longitude as possibly wrapping the antimeridian.
func overlaps(a, b *geom.Bounds) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	if a.Max.Y < b.Min.Y || b.Max.Y < a.Min.Y {
		return false
	}
	if a.Max.X-a.Min.X > 180 || b.Max.X-b.Min.X > 180 {
		return true
	}
	return a.Overlaps(b)
}

// checkOverlap warns when no source covers any part of the target. Such a
// run is valid but produces an all-bad plane.
func (r *Regridder) checkOverlap() {
	tb := mapperBounds(r.target)
	covered := false
	for _, s := range []*Source{r.north, r.south} {
		if s != nil && overlaps(tb, mapperBounds(s.Grid)) {
			covered = true
		}
	}
	if !covered {
		r.log.WithFields(logrus.Fields{
			"target_min": tb.Min,
			"target_max": tb.Max,
		}).Warn("Target grid does not overlap any source grid")
	}
}
