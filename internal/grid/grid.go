// Package grid implements the MET grid projections and the Grid value that
// wraps exactly one of them.
//
// Pixel coordinates are zero-based with (0, 0) at the lower-left grid point.
// Latitudes are degrees north. Longitudes are degrees WEST-positive throughout
// the package; use FromEast/ToEast at the boundary.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

var (
	// ErrUnknownProjection is returned for an unrecognised projection type.
	ErrUnknownProjection = errors.New("unknown projection type")
	// ErrInvalidParameter is returned when a projection record fails validation.
	ErrInvalidParameter = errors.New("invalid projection parameter")
	// ErrGridMismatch is returned by CheckSame when two grids differ.
	ErrGridMismatch = errors.New("grid mismatch")
)

// projection is implemented by the five projection kinds of this package and
// by nothing else. Every method of Grid dispatches through it.
type projection interface {
	kind() string
	name() string
	nx() int
	ny() int
	xyToLatLon(x, y float64) (lat, lon float64)
	latLonToXY(lat, lon float64) (x, y float64)
	data() any
	equal(o projection) bool
	serialize() string
}

var (
	_ projection = (*latLonGrid)(nil)
	_ projection = (*mercatorGrid)(nil)
	_ projection = (*lambertGrid)(nil)
	_ projection = (*stereographicGrid)(nil)
	_ projection = (*laeaGrid)(nil)
)

// Grid is an immutable georeferenced grid. The zero value has no projection;
// use one of the constructors. Grids are safe for concurrent use.
type Grid struct {
	p projection
}

// NewLatLon returns a Lat/Lon grid.
func NewLatLon(d LatLonData) (Grid, error) {
	if err := d.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{p: newLatLon(d)}, nil
}

// NewMercator returns a Mercator grid.
func NewMercator(d MercatorData) (Grid, error) {
	if err := d.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{p: newMercator(d)}, nil
}

// NewLambert returns a Lambert Conformal Conic grid.
func NewLambert(d LambertData) (Grid, error) {
	if err := d.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{p: newLambert(d)}, nil
}

// NewStereographic returns a polar stereographic grid.
func NewStereographic(d StereographicData) (Grid, error) {
	if err := d.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{p: newStereographic(d)}, nil
}

// NewLaea returns a Lambert Azimuthal Equal-Area grid anchored at its first point.
func NewLaea(d LaeaData) (Grid, error) {
	if err := d.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{p: newLaea(d)}, nil
}

// NewLaeaCorner returns a Lambert Azimuthal Equal-Area grid defined by corners.
func NewLaeaCorner(d LaeaCornerData) (Grid, error) {
	if err := d.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{p: newLaeaCorner(d)}, nil
}

// New builds a grid from a projection type string and its parameter record.
// The record must be the one matching projType.
func New(projType string, data any) (Grid, error) {
	var ok bool
	switch projType {
	case TypeLatLon:
		_, ok = data.(LatLonData)
	case TypeMercator:
		_, ok = data.(MercatorData)
	case TypeLambert:
		_, ok = data.(LambertData)
	case TypeStereographic:
		_, ok = data.(StereographicData)
	case TypeLaea:
		switch data.(type) {
		case LaeaData, LaeaCornerData:
			ok = true
		}
	default:
		return Grid{}, fmt.Errorf("grid: %q: %w", projType, ErrUnknownProjection)
	}
	if !ok {
		return Grid{}, fmt.Errorf("grid: %s: parameter record has type %T: %w", projType, data, ErrInvalidParameter)
	}
	return FromData(data)
}

// FromData builds a grid from any of the parameter record types.
func FromData(data any) (Grid, error) {
	switch d := data.(type) {
	case LatLonData:
		return NewLatLon(d)
	case MercatorData:
		return NewMercator(d)
	case LambertData:
		return NewLambert(d)
	case StereographicData:
		return NewStereographic(d)
	case LaeaData:
		return NewLaea(d)
	case LaeaCornerData:
		return NewLaeaCorner(d)
	default:
		return Grid{}, fmt.Errorf("grid: parameter record of type %T: %w", data, ErrUnknownProjection)
	}
}

// IsZero reports whether g was never given a projection.
func (g Grid) IsZero() bool { return g.p == nil }

// Kind returns the projection type string, or "" for the zero Grid.
func (g Grid) Kind() string {
	if g.p == nil {
		return ""
	}
	return g.p.kind()
}

// Name returns the grid's name, if it has one.
func (g Grid) Name() string {
	if g.p == nil {
		return ""
	}
	return g.p.name()
}

func (g Grid) Nx() int { return g.p.nx() }
func (g Grid) Ny() int { return g.p.ny() }

// XYToLatLon converts a (possibly fractional) pixel position to lat/lon.
func (g Grid) XYToLatLon(x, y float64) (lat, lon float64) {
	return g.p.xyToLatLon(x, y)
}

// LatLonToXY converts lat/lon to a fractional pixel position. The result may
// lie outside [0, Nx) x [0, Ny).
func (g Grid) LatLonToXY(lat, lon float64) (x, y float64) {
	return g.p.latLonToXY(lat, lon)
}

// Data returns a copy of the parameter record the grid was built from.
func (g Grid) Data() any {
	if g.p == nil {
		return nil
	}
	return g.p.data()
}

// Equal reports whether g and o use the same projection with the same
// parameters. Real-valued fields are compared to within LooseTol and names
// are ignored.
func (g Grid) Equal(o Grid) bool {
	if g.p == nil || o.p == nil {
		return g.p == nil && o.p == nil
	}
	return g.p.equal(o.p)
}

// String returns a one-line description of the grid.
func (g Grid) String() string {
	if g.p == nil {
		return "Projection: (none)"
	}
	return g.p.serialize()
}

// CheckSame returns an error wrapping ErrGridMismatch when a and b differ.
func CheckSame(a, b Grid) error {
	if a.Equal(b) {
		return nil
	}
	return fmt.Errorf("grid: [%s] vs [%s]: %w", a, b, ErrGridMismatch)
}

// Bounds returns the lat/lon extent of the grid with X = east-positive
// longitude in [-180, 180] and Y = latitude. The extent is found by walking
// the grid edges; a grid that contains a pole is widened to include it.
func (g Grid) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	nx, ny := g.Nx(), g.Ny()
	add := func(x, y int) {
		lat, lon := g.XYToLatLon(float64(x), float64(y))
		b.Extend(geom.NewBoundsPoint(geom.Point{X: RescaleLon(ToEast(lon)), Y: lat}))
	}
	for x := 0; x < nx; x++ {
		add(x, 0)
		add(x, ny-1)
	}
	for y := 1; y < ny-1; y++ {
		add(0, y)
		add(nx-1, y)
	}
	for _, pole := range []float64{90, -90} {
		if g.Kind() == TypeLatLon || g.Kind() == TypeMercator {
			break
		}
		x, y := g.LatLonToXY(pole, 0)
		if x >= 0 && x <= float64(nx-1) && y >= 0 && y <= float64(ny-1) {
			b.Extend(&geom.Bounds{Min: geom.Point{X: -180, Y: math.Min(b.Min.Y, pole)}, Max: geom.Point{X: 180, Y: math.Max(b.Max.Y, pole)}})
		}
	}
	return b
}
