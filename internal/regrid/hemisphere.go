package regrid

// Hemisphere is the part of the globe a target grid draws data from.
type Hemisphere int

const (
	North Hemisphere = iota
	South
	Both
)

func (h Hemisphere) String() string {
	switch h {
	case North:
		return "north"
	case South:
		return "south"
	case Both:
		return "both"
	}
	return "unknown"
}

// equatorProbes is the number of equator points, one every half degree,
// tested by FindHemisphere for grids that do not cross the equator on their
// edges.
const equatorProbes = 720

// FindHemisphere reports which hemispheres the target grid needs.
//
// The edges of the grid are converted to lat/lon first. If they show both
// hemispheres the answer is Both. Otherwise, for width > 1, points along the
// equator are mapped into the grid; one landing within the grid expanded by
// the neighbourhood half-width also gives Both. This probe is a sampling
// heuristic and can miss very narrow grids. A grid seen in neither hemisphere
// (for example one lying on the equator) is treated as North.
func FindHemisphere(target Mapper, width int) Hemisphere {
	nx, ny := target.Nx(), target.Ny()
	var north, south bool
	tag := func(x, y float64) {
		lat, _ := target.XYToLatLon(x, y)
		if lat > 0 {
			north = true
		}
		if lat < 0 {
			south = true
		}
	}

	for x := 0; x < nx; x++ {
		tag(float64(x), 0)
		tag(float64(x), float64(ny-1))
	}
	for y := 0; y < ny; y++ {
		tag(0, float64(y))
		tag(float64(nx-1), float64(y))
	}
	if north && south {
		return Both
	}

	if width > 1 {
		w := (width - 1) / 2
		xmin, xmax := -w, nx-1+w
		ymin, ymax := -w, ny-1+w
		for j := 0; j < equatorProbes; j++ {
			x, y := target.LatLonToXY(0, 0.5*float64(j))
			ix, iy := nint(x), nint(y)
			if ix >= xmin && ix <= xmax && iy >= ymin && iy <= ymax {
				return Both
			}
		}
	}

	if south {
		return South
	}
	return North
}
