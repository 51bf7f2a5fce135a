package tile

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/pspoerri/metgrid/internal/grid"
	"github.com/pspoerri/metgrid/internal/regrid"
)

// ResolutionKm is the ground size of one pixel at lat for tiles of size
// pixels at zoom z.
func ResolutionKm(lat float64, z, size int) float64 {
	circ := 2 * math.Pi * grid.NCEPEarthRadiusKm
	return circ * math.Cos(lat*math.Pi/180.0) / math.Exp2(float64(z)) / float64(size)
}

// MaxZoomForResolution returns the deepest zoom whose pixels are still no
// finer than pixelKm.
func MaxZoomForResolution(pixelKm, lat float64, size int) int {
	for z := 24; z >= 0; z-- {
		if ResolutionKm(lat, z, size) >= pixelKm {
			return z
		}
	}
	return 0
}

// AutoZoomRange picks six zoom levels ending at the native resolution.
func AutoZoomRange(pixelKm, lat float64, size int) (minZoom, maxZoom int) {
	maxZoom = MaxZoomForResolution(pixelKm, lat, size)
	return max(0, maxZoom-6), maxZoom
}

// Spacing returns the great-circle distance between the centre pixel of g
// and its eastern neighbour, and the latitude of the centre.
func Spacing(g regrid.Mapper) (km, lat float64) {
	cx, cy := float64(g.Nx()/2), float64(g.Ny()/2)
	lat0, lon0 := g.XYToLatLon(cx, cy)
	lat1, lon1 := g.XYToLatLon(cx+1, cy)
	a := s2.LatLngFromDegrees(lat0, grid.ToEast(lon0))
	b := s2.LatLngFromDegrees(lat1, grid.ToEast(lon1))
	return a.Distance(b).Radians() * grid.NCEPEarthRadiusKm, lat0
}
