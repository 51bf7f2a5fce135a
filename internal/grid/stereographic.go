package grid

import (
	"fmt"
	"math"
)

type stereographicGrid struct {
	d     StereographicData
	north bool

	alpha  float64
	bx, by float64
}

func newStereographic(d StereographicData) *stereographicGrid {
	g := &stereographicGrid{d: d, north: d.Hemisphere == 'N'}
	g.alpha = (1.0 + sind(math.Abs(d.ScaleLat))) * (d.RKm / d.DKm)

	r0 := stFunc(d.LatPin, g.north)
	theta0 := reduce(d.LonOrient - d.LonPin)
	if !g.north {
		theta0 = -theta0
	}
	g.bx = d.XPin - g.alpha*r0*sind(theta0)
	g.by = d.YPin + g.alpha*r0*cosd(theta0)
	return g
}

func stFunc(lat float64, north bool) float64 {
	if north {
		return tand(45.0 - 0.5*lat)
	}
	return tand(45.0 + 0.5*lat)
}

func stInvFunc(r float64, north bool) float64 {
	lat := 90.0 - 2.0*atand(r)
	if !north {
		lat = -lat
	}
	return lat
}

func (g *stereographicGrid) kind() string { return TypeStereographic }
func (g *stereographicGrid) name() string { return g.d.Name }
func (g *stereographicGrid) nx() int      { return g.d.Nx }
func (g *stereographicGrid) ny() int      { return g.d.Ny }
func (g *stereographicGrid) data() any    { return g.d }

func (g *stereographicGrid) latLonToXY(lat, lon float64) (x, y float64) {
	r := stFunc(lat, g.north)
	theta := reduce(g.d.LonOrient - lon)
	if !g.north {
		theta = -theta
	}
	x = g.bx + g.alpha*r*sind(theta)
	y = g.by - g.alpha*r*cosd(theta)
	return
}

func (g *stereographicGrid) xyToLatLon(x, y float64) (lat, lon float64) {
	u := (x - g.bx) / g.alpha
	v := (y - g.by) / g.alpha
	r := math.Hypot(u, v)

	lat = stInvFunc(r, g.north)

	var theta float64
	if r >= 1.0e-5 {
		theta = atan2d(u, -v) // not atan2d(v, u)
	}
	if !g.north {
		theta = -theta
	}
	lon = reduce(g.d.LonOrient - theta)
	return
}

func (g *stereographicGrid) serialize() string {
	return fmt.Sprintf("Projection: Stereographic Nx: %d Ny: %d IsNorthHemisphere: %t Lon_orient: %.3f Bx: %.3f By: %.3f Alpha: %.4f",
		g.d.Nx, g.d.Ny, g.north, g.d.LonOrient, g.bx, g.by, g.alpha)
}
