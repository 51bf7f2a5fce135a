// Package rangeazi implements the storm-centred range-azimuth grid used by
// the tropical cyclone diagnostics. Pixel x is the range index and pixel y
// the azimuth index, measured clockwise from north.
package rangeazi

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/pspoerri/metgrid/internal/grid"
)

const (
	degPerRad = 180.0 / math.Pi
	radPerDeg = math.Pi / 180.0

	kmPerNauticalMile = 1.852
)

// Data defines a range-azimuth grid. LonCenter is west-positive.
type Data struct {
	Name          string
	RangeN        int
	AzimuthN      int
	RangeMaxKm    float64
	EarthRadiusKm float64
	LatCenter     float64
	LonCenter     float64
}

// Validate checks the record's invariants.
func (d Data) Validate() error {
	switch {
	case d.RangeN < 2:
		return fmt.Errorf("rangeazi: range_n must be >= 2 (got %d): %w", d.RangeN, grid.ErrInvalidParameter)
	case d.AzimuthN < 1:
		return fmt.Errorf("rangeazi: azimuth_n must be >= 1 (got %d): %w", d.AzimuthN, grid.ErrInvalidParameter)
	case d.RangeMaxKm <= 0:
		return fmt.Errorf("rangeazi: range_max_km must be > 0 (got %v): %w", d.RangeMaxKm, grid.ErrInvalidParameter)
	case d.EarthRadiusKm <= 0:
		return fmt.Errorf("rangeazi: earth radius must be > 0 (got %v): %w", d.EarthRadiusKm, grid.ErrInvalidParameter)
	case d.LatCenter < -90 || d.LatCenter > 90:
		return fmt.Errorf("rangeazi: lat_center must be in [-90, 90] (got %v): %w", d.LatCenter, grid.ErrInvalidParameter)
	}
	return nil
}

// Grid is a range-azimuth grid around a movable centre. A Grid is not safe
// for concurrent use while SetCenter is called; copy it per goroutine.
type Grid struct {
	d Data

	rangeDeltaKm    float64
	azimuthDeltaDeg float64

	center s2.LatLng
}

// New returns a range-azimuth grid. EarthRadiusKm defaults to the NCEP
// radius when zero.
func New(d Data) (*Grid, error) {
	if d.EarthRadiusKm == 0 {
		d.EarthRadiusKm = grid.NCEPEarthRadiusKm
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	g := &Grid{
		d:               d,
		rangeDeltaKm:    d.RangeMaxKm / float64(d.RangeN-1),
		azimuthDeltaDeg: 360.0 / float64(d.AzimuthN),
	}
	g.SetCenter(d.LatCenter, d.LonCenter)
	return g, nil
}

// RangeMaxFromRMW scales the maximum range to the radius of maximum winds
// (in nautical miles) as the TC-RMW tool does.
func RangeMaxFromRMW(rmwScale, rmwNm float64, rangeN int) float64 {
	return rmwScale * rmwNm * kmPerNauticalMile * float64(rangeN)
}

// SetCenter moves the grid to a new track point. lon is west-positive.
func (g *Grid) SetCenter(lat, lon float64) {
	g.d.LatCenter = lat
	g.d.LonCenter = lon
	g.center = s2.LatLngFromDegrees(lat, grid.ToEast(lon))
}

// SetRangeMax changes the maximum range, keeping RangeN.
func (g *Grid) SetRangeMax(km float64) error {
	if km <= 0 {
		return fmt.Errorf("rangeazi: range_max_km must be > 0 (got %v): %w", km, grid.ErrInvalidParameter)
	}
	g.d.RangeMaxKm = km
	g.rangeDeltaKm = km / float64(g.d.RangeN-1)
	return nil
}

func (g *Grid) Data() Data               { return g.d }
func (g *Grid) Nx() int                  { return g.d.RangeN }
func (g *Grid) Ny() int                  { return g.d.AzimuthN }
func (g *Grid) RangeDeltaKm() float64    { return g.rangeDeltaKm }
func (g *Grid) AzimuthDeltaDeg() float64 { return g.azimuthDeltaDeg }

// RangeAziToLatLon returns the point rangeKm from the centre along the great
// circle leaving it at azimuthDeg clockwise from north. lon is west-positive.
func (g *Grid) RangeAziToLatLon(rangeKm, azimuthDeg float64) (lat, lon float64) {
	lat1 := g.center.Lat.Radians()
	lon1 := g.center.Lng.Radians()
	delta := rangeKm / g.d.EarthRadiusKm
	theta := azimuthDeg * radPerDeg

	sinLat2 := math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta)
	sinLat2 = math.Max(-1, math.Min(1, sinLat2))
	lat2 := math.Asin(sinLat2)
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*sinLat2,
	)

	lat = lat2 * degPerRad
	lon = grid.FromEast(grid.RescaleLon(lon2 * degPerRad))
	return
}

// XYToLatLon maps a range index and an azimuth index to lat/lon.
func (g *Grid) XYToLatLon(x, y float64) (lat, lon float64) {
	return g.RangeAziToLatLon(x*g.rangeDeltaKm, y*g.azimuthDeltaDeg)
}

// rangeAzimuth returns the great-circle distance (km) and the initial
// bearing (degrees clockwise from north, in [0, 360)) from the centre.
func (g *Grid) rangeAzimuth(lat, lon float64) (rangeKm, azimuthDeg float64) {
	p := s2.LatLngFromDegrees(lat, grid.ToEast(lon))
	rangeKm = g.center.Distance(p).Radians() * g.d.EarthRadiusKm

	lat1, lat2 := g.center.Lat.Radians(), p.Lat.Radians()
	dLon := (p.Lng - g.center.Lng).Radians()
	b := s1.Angle(math.Atan2(
		math.Sin(dLon)*math.Cos(lat2),
		math.Cos(lat1)*math.Sin(lat2)-math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon),
	))
	azimuthDeg = math.Mod(b.Degrees()+360.0, 360.0)
	return
}

// LatLonToXY inverts XYToLatLon. The azimuth index lies in
// [-0.5, AzimuthN-0.5) so that bearings just short of north round to index 0.
func (g *Grid) LatLonToXY(lat, lon float64) (x, y float64) {
	r, az := g.rangeAzimuth(lat, lon)
	x, y = r/g.rangeDeltaKm, az/g.azimuthDeltaDeg
	if n := float64(g.d.AzimuthN); y >= n-0.5 {
		y -= n
	}
	return x, y
}

// LatLonArrays returns the lat/lon of every grid point, indexed
// ir*AzimuthN + ia. Longitudes are east-positive, ready for output.
func (g *Grid) LatLonArrays() (lat, lon []float64) {
	n := g.d.RangeN * g.d.AzimuthN
	lat = make([]float64, n)
	lon = make([]float64, n)
	for ir := 0; ir < g.d.RangeN; ir++ {
		for ia := 0; ia < g.d.AzimuthN; ia++ {
			i := ir*g.d.AzimuthN + ia
			la, lo := g.RangeAziToLatLon(float64(ir)*g.rangeDeltaKm, float64(ia)*g.azimuthDeltaDeg)
			lat[i] = la
			lon[i] = grid.ToEast(lo)
		}
	}
	return lat, lon
}

// WindNEToRA rotates a wind with eastward component u and northward
// component v at (lat, lon) into its radial (outward) and tangential
// (counter-clockwise) components about the centre.
func (g *Grid) WindNEToRA(lat, lon, u, v float64) (radial, tangential float64) {
	_, az := g.rangeAzimuth(lat, lon)
	s, c := math.Sincos(az * radPerDeg)
	radial = u*s + v*c
	tangential = -u*c + v*s
	return
}

func (g *Grid) String() string {
	return fmt.Sprintf("Projection: Range-Azimuth range_n: %d azimuth_n: %d range_max_km: %.3f lat_center: %.3f lon_center: %.3f",
		g.d.RangeN, g.d.AzimuthN, g.d.RangeMaxKm, g.d.LatCenter, g.d.LonCenter)
}
