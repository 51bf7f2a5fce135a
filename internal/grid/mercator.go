package grid

import (
	"fmt"
	"math"
)

// mercatorGrid maps (u, v) = (-lon, ln(tan(pi/4 + lat/2))) in radians onto
// pixels with x = Mx*u + Bx, y = My*v + By.
type mercatorGrid struct {
	d MercatorData

	lonLL, lonUR float64 // normalised corner longitudes, degrees
	lonURRad     float64
	mx, bx       float64
	my, by       float64
}

func newMercator(d MercatorData) *mercatorGrid {
	lll := d.LonLL
	if math.Abs(lll) < 0.001 {
		lll = 0
	}
	lur := d.LonUR
	if math.Abs(lur) < 0.001 {
		lur = 0
	}

	if lll == 0 && lur == 0 {
		lll = 359.9999
		lur = 0
	} else {
		lll -= 360.0 * math.Floor((lll+180.0)/360.0)
		lur -= 360.0 * math.Floor((lur+180.0)/360.0)
		// West-positive: the upper-right corner lies east of, and so
		// numerically below, the lower-left one.
		lur += 360.0 * math.Floor((lll-lur)/360.0)
	}

	// Corners at the same longitude describe a full-world grid, running
	// eastward (downward in west-positive degrees) from lll.
	if math.Abs(lur-lll) < 1.0e-2 {
		lur = lll - 359.9999
	}

	g := &mercatorGrid{
		d:        d,
		lonLL:    lll,
		lonUR:    lur,
		lonURRad: lur * radPerDeg,
	}

	uFirst := -lll * radPerDeg
	uLast := -lur * radPerDeg
	g.mx = float64(d.Nx-1) / (uLast - uFirst)
	g.bx = -g.mx * uFirst

	vFirst := mercFunc(d.LatLL * radPerDeg)
	vLast := mercFunc(d.LatUR * radPerDeg)
	g.my = float64(d.Ny-1) / (vLast - vFirst)
	g.by = -g.my * vFirst
	return g
}

// mercFunc is the Mercator ordinate of a latitude in radians.
func mercFunc(lat float64) float64 {
	return math.Log(math.Tan(math.Pi/4.0 + lat/2.0))
}

// mercInvFunc inverts mercFunc.
func mercInvFunc(v float64) float64 {
	return math.Atan(math.Sinh(v))
}

// mercLonToU wraps lon (radians) into [lonMin, lonMin + 2pi) before negating.
func mercLonToU(lonMin, lon float64) float64 {
	lon -= 2.0 * math.Pi * math.Floor((lon-lonMin)/(2.0*math.Pi))
	return -lon
}

func mercUToLon(lonMin, u float64) float64 {
	lon := -u
	lon -= 2.0 * math.Pi * math.Floor((lon-lonMin)/(2.0*math.Pi))
	return lon
}

func (g *mercatorGrid) kind() string { return TypeMercator }
func (g *mercatorGrid) name() string { return g.d.Name }
func (g *mercatorGrid) nx() int      { return g.d.Nx }
func (g *mercatorGrid) ny() int      { return g.d.Ny }
func (g *mercatorGrid) data() any    { return g.d }

func (g *mercatorGrid) latLonToXY(lat, lon float64) (x, y float64) {
	u := mercLonToU(g.lonURRad, lon*radPerDeg)
	v := mercFunc(lat * radPerDeg)
	x = g.mx*u + g.bx
	y = g.my*v + g.by
	return
}

func (g *mercatorGrid) xyToLatLon(x, y float64) (lat, lon float64) {
	u := (x - g.bx) / g.mx
	v := (y - g.by) / g.my
	lon = RescaleLon(mercUToLon(g.lonURRad, u) * degPerRad)
	lat = mercInvFunc(v) * degPerRad
	return
}

func (g *mercatorGrid) serialize() string {
	return fmt.Sprintf("Projection: Mercator Nx: %d Ny: %d lat_ll: %.3f lon_ll: %.3f lat_ur: %.3f lon_ur: %.3f",
		g.d.Nx, g.d.Ny, g.d.LatLL, g.lonLL, g.d.LatUR, g.lonUR)
}
