package grid

import (
	"fmt"
	"math"
)

type latLonGrid struct {
	d LatLonData
	// mid is the longitude offset of the grid's centre column from LonLL.
	// Inverse longitudes are wrapped into a 360 degree window around it.
	mid float64
}

func newLatLon(d LatLonData) *latLonGrid {
	return &latLonGrid{
		d:   d,
		mid: 0.5 * float64(d.Nlon-1) * d.DeltaLon,
	}
}

func (g *latLonGrid) kind() string { return TypeLatLon }
func (g *latLonGrid) name() string { return g.d.Name }
func (g *latLonGrid) nx() int      { return g.d.Nlon }
func (g *latLonGrid) ny() int      { return g.d.Nlat }
func (g *latLonGrid) data() any    { return g.d }

// Longitudes increase eastward with x, so the west-positive longitude
// decreases by DeltaLon per column.
func (g *latLonGrid) xyToLatLon(x, y float64) (lat, lon float64) {
	lat = g.d.LatLL + y*g.d.DeltaLat
	lon = RescaleLon(g.d.LonLL - x*g.d.DeltaLon)
	return
}

func (g *latLonGrid) latLonToXY(lat, lon float64) (x, y float64) {
	n := g.d.LonLL - lon
	n -= 360.0 * math.Floor((n-g.mid)/360.0+0.5)
	x = n / g.d.DeltaLon
	y = (lat - g.d.LatLL) / g.d.DeltaLat
	return
}

// wrapsGlobally reports whether the columns cover the full circle.
func (g *latLonGrid) wrapsGlobally() bool {
	return math.Abs(float64(g.d.Nlon)*g.d.DeltaLon-360.0) < LooseTol
}

func (g *latLonGrid) serialize() string {
	return fmt.Sprintf("Projection: Lat/Lon Nx: %d Ny: %d lat_ll: %.3f lon_ll: %.3f delta_lat: %.3f delta_lon: %.3f",
		g.d.Nlon, g.d.Nlat, g.d.LatLL, g.d.LonLL, g.d.DeltaLat, g.d.DeltaLon)
}

// WrapsLongitude reports whether g is a Lat/Lon grid whose columns cover the
// full circle, so column Nx-1 is adjacent to column 0.
func (g Grid) WrapsLongitude() bool {
	ll, ok := g.p.(*latLonGrid)
	return ok && ll.wrapsGlobally()
}
