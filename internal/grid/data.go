package grid

import "fmt"

// Projection type strings. These are the values of the "Projection" attribute
// in MET NetCDF files and the result of Grid.Kind.
const (
	TypeLatLon        = "LatLon"
	TypeMercator      = "Mercator"
	TypeLambert       = "Lambert Conformal"
	TypeStereographic = "Polar Stereographic"
	TypeLaea          = "Lambert Azimuthal Equal Area"
)

// NCEPEarthRadiusKm is the spherical earth radius used by the NCEP grids.
const NCEPEarthRadiusKm = 6371.20

// All longitudes in the records below are west-positive.

// LatLonData defines a regular latitude/longitude grid anchored at its
// lower-left point.
type LatLonData struct {
	Name     string
	LatLL    float64
	LonLL    float64
	DeltaLat float64
	DeltaLon float64
	Nlat     int // rows (ny)
	Nlon     int // columns (nx)
}

// MercatorData defines a Mercator grid by its lower-left and upper-right corners.
type MercatorData struct {
	Name  string
	LatLL float64
	LonLL float64
	LatUR float64
	LonUR float64
	Nx    int
	Ny    int
}

// LambertData defines a Lambert Conformal Conic grid.
//
// The pin is a lat/lon whose pixel coordinate is (XPin, YPin). Hemisphere may
// be left zero, in which case it follows the sign of ScaleLat1.
type LambertData struct {
	Name       string
	Hemisphere byte
	ScaleLat1  float64
	ScaleLat2  float64
	LatPin     float64
	LonPin     float64
	XPin       float64
	YPin       float64
	LonOrient  float64
	DKm        float64
	RKm        float64
	Nx         int
	Ny         int
	SO2Angle   float64
}

// StereographicData defines a polar stereographic grid.
type StereographicData struct {
	Name       string
	Hemisphere byte
	ScaleLat   float64
	LatPin     float64
	LonPin     float64
	XPin       float64
	YPin       float64
	LonOrient  float64
	DKm        float64
	RKm        float64
	Nx         int
	Ny         int
}

// Spheroid is either a sphere (RadiusKm set) or an ellipsoid given by its
// semi-major and semi-minor axes.
type Spheroid struct {
	Name         string
	RadiusKm     float64
	EquatorialKm float64
	PolarKm      float64
}

// IsSphere reports whether s describes a sphere.
func (s Spheroid) IsSphere() bool {
	if s.RadiusKm > 0 {
		return true
	}
	return s.EquatorialKm > 0 && s.EquatorialKm == s.PolarKm
}

// LaeaData defines a Lambert Azimuthal Equal-Area grid anchored at its first
// grid point (Grib2 template 3.140 style).
type LaeaData struct {
	Name     string
	Spheroid Spheroid
	LatFirst float64
	LonFirst float64
	LatStd   float64 // latitude of the projection centre
	LonCen   float64 // longitude of the projection centre
	DxKm     float64
	DyKm     float64
	Nx       int
	Ny       int
}

// LaeaCornerData defines a Lambert Azimuthal Equal-Area grid by three of its
// corner points (lower-left, lower-right, upper-left).
type LaeaCornerData struct {
	Name     string
	Spheroid Spheroid
	LatStd   float64
	LonCen   float64
	LatLL    float64
	LonLL    float64
	LatLR    float64
	LonLR    float64
	LatUL    float64
	LonUL    float64
	Nx       int
	Ny       int
}

func invalid(kind, field string, v any, want string) error {
	return fmt.Errorf("grid: %s: %s must be %s (got %v): %w", kind, field, want, v, ErrInvalidParameter)
}

func checkCounts(kind string, nx, ny int) error {
	if nx <= 0 {
		return invalid(kind, "nx", nx, "> 0")
	}
	if ny <= 0 {
		return invalid(kind, "ny", ny, "> 0")
	}
	return nil
}

func checkHemisphere(kind string, h byte) error {
	if h != 'N' && h != 'S' {
		return invalid(kind, "hemisphere", fmt.Sprintf("%q", h), "'N' or 'S'")
	}
	return nil
}

func checkLat(kind, field string, lat float64) error {
	if lat < -90.0 || lat > 90.0 {
		return invalid(kind, field, lat, "in [-90, 90]")
	}
	return nil
}

// Validate checks the record's invariants.
func (d LatLonData) Validate() error {
	if err := checkCounts("latlon", d.Nlon, d.Nlat); err != nil {
		return err
	}
	if d.DeltaLat <= 0 {
		return invalid("latlon", "delta_lat", d.DeltaLat, "> 0")
	}
	if d.DeltaLon <= 0 {
		return invalid("latlon", "delta_lon", d.DeltaLon, "> 0")
	}
	return checkLat("latlon", "lat_ll", d.LatLL)
}

// Validate checks the record's invariants.
func (d MercatorData) Validate() error {
	if err := checkCounts("mercator", d.Nx, d.Ny); err != nil {
		return err
	}
	if d.LatLL <= -90.0 || d.LatLL >= 90.0 {
		return invalid("mercator", "lat_ll", d.LatLL, "in (-90, 90)")
	}
	if d.LatUR <= -90.0 || d.LatUR >= 90.0 {
		return invalid("mercator", "lat_ur", d.LatUR, "in (-90, 90)")
	}
	if d.LatUR <= d.LatLL {
		return invalid("mercator", "lat_ur", d.LatUR, fmt.Sprintf("> lat_ll (%v)", d.LatLL))
	}
	return nil
}

// Validate checks the record's invariants.
func (d LambertData) Validate() error {
	if err := checkCounts("lambert", d.Nx, d.Ny); err != nil {
		return err
	}
	if d.DKm <= 0 {
		return invalid("lambert", "d_km", d.DKm, "> 0")
	}
	if d.RKm <= 0 {
		return invalid("lambert", "r_km", d.RKm, "> 0")
	}
	if d.Hemisphere != 0 {
		if err := checkHemisphere("lambert", d.Hemisphere); err != nil {
			return err
		}
	}
	if d.ScaleLat1 == 0 || d.ScaleLat2 == 0 || (d.ScaleLat1 > 0) != (d.ScaleLat2 > 0) {
		return invalid("lambert", "scale_lat_1/scale_lat_2", fmt.Sprintf("%v/%v", d.ScaleLat1, d.ScaleLat2),
			"non-zero and in the same hemisphere")
	}
	if err := checkLat("lambert", "scale_lat_1", d.ScaleLat1); err != nil {
		return err
	}
	if err := checkLat("lambert", "scale_lat_2", d.ScaleLat2); err != nil {
		return err
	}
	return checkLat("lambert", "lat_pin", d.LatPin)
}

// Validate checks the record's invariants.
func (d StereographicData) Validate() error {
	if err := checkCounts("stereographic", d.Nx, d.Ny); err != nil {
		return err
	}
	if err := checkHemisphere("stereographic", d.Hemisphere); err != nil {
		return err
	}
	if d.DKm <= 0 {
		return invalid("stereographic", "d_km", d.DKm, "> 0")
	}
	if d.RKm <= 0 {
		return invalid("stereographic", "r_km", d.RKm, "> 0")
	}
	if err := checkLat("stereographic", "scale_lat", d.ScaleLat); err != nil {
		return err
	}
	return checkLat("stereographic", "lat_pin", d.LatPin)
}

func (s Spheroid) validate(kind string) error {
	if s.RadiusKm > 0 {
		return nil
	}
	if s.EquatorialKm <= 0 {
		return invalid(kind, "semi_major_axis_km", s.EquatorialKm, "> 0")
	}
	if s.PolarKm <= 0 || s.PolarKm > s.EquatorialKm {
		return invalid(kind, "semi_minor_axis_km", s.PolarKm, "in (0, semi_major_axis_km]")
	}
	return nil
}

// Validate checks the record's invariants.
func (d LaeaData) Validate() error {
	if err := checkCounts("laea", d.Nx, d.Ny); err != nil {
		return err
	}
	if err := d.Spheroid.validate("laea"); err != nil {
		return err
	}
	if d.DxKm <= 0 {
		return invalid("laea", "dx_km", d.DxKm, "> 0")
	}
	if d.DyKm <= 0 {
		return invalid("laea", "dy_km", d.DyKm, "> 0")
	}
	if err := checkLat("laea", "lat_first", d.LatFirst); err != nil {
		return err
	}
	return checkLat("laea", "standard_lat", d.LatStd)
}

// Validate checks the record's invariants.
func (d LaeaCornerData) Validate() error {
	if err := checkCounts("laea", d.Nx, d.Ny); err != nil {
		return err
	}
	if d.Nx < 2 || d.Ny < 2 {
		return invalid("laea", "nx/ny", fmt.Sprintf("%d/%d", d.Nx, d.Ny), ">= 2 for a corner-defined grid")
	}
	if err := d.Spheroid.validate("laea"); err != nil {
		return err
	}
	return checkLat("laea", "standard_lat", d.LatStd)
}
