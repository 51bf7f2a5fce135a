// Package ncgrid reads and writes MET-style NetCDF-3 files: the projection
// attributes that describe a grid and the lat x lon data planes on it.
//
// Two generations of attribute names are understood. Files whose MET_version
// global attribute is below V3 use the v2 names (lat_ll_deg, p1_deg, ...);
// everything else uses the v3 names (lat_ll, scale_lat_1, ...). Longitudes in
// the file are east-positive and are negated once on the way in and out.
package ncgrid

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/spf13/cast"

	"github.com/pspoerri/metgrid/internal/grid"
)

// ErrMissingAttribute is returned when a required attribute is absent.
var ErrMissingAttribute = errors.New("missing attribute")

// METVersion is written to the MET_version global attribute.
const METVersion = "V3.0"

// names maps projection parameters to attribute names. An empty name means
// the parameter is not stored and takes its default.
type names struct {
	latLL, lonLL, deltaLat, deltaLon string
	nlat, nlon                       string

	latUR, lonUR string

	scaleLat1, scaleLat2 string
	scaleLat, hemisphere string
	latPin, lonPin       string
	xPin, yPin           string
	lonOrient            string
	dKm, rKm             string
	nx, ny               string
}

var v3Names = names{
	latLL:      "lat_ll",
	lonLL:      "lon_ll",
	deltaLat:   "delta_lat",
	deltaLon:   "delta_lon",
	nlat:       "Nlat",
	nlon:       "Nlon",
	latUR:      "lat_ur",
	lonUR:      "lon_ur",
	scaleLat1:  "scale_lat_1",
	scaleLat2:  "scale_lat_2",
	scaleLat:   "scale_lat",
	hemisphere: "hemisphere",
	latPin:     "lat_pin",
	lonPin:     "lon_pin",
	xPin:       "x_pin",
	yPin:       "y_pin",
	lonOrient:  "lon_orient",
	dKm:        "d_km",
	rKm:        "r_km",
	nx:         "nx",
	ny:         "ny",
}

// v2 files carry no pin pixel and no stereographic hemisphere.
var v2Names = names{
	latLL:     "lat_ll_deg",
	lonLL:     "lon_ll_deg",
	deltaLat:  "delta_lat_deg",
	deltaLon:  "delta_lon_deg",
	nlat:      "Nlat",
	nlon:      "Nlon",
	latUR:     "lat_ur_deg",
	lonUR:     "lon_ur_deg",
	scaleLat1: "p1_deg",
	scaleLat2: "p2_deg",
	scaleLat:  "p1_deg",
	latPin:    "p0_deg",
	lonPin:    "l0_deg",
	lonOrient: "lcen_deg",
	dKm:       "d_km",
	rKm:       "r_km",
	nx:        "nx",
	ny:        "ny",
}

// namesFor picks the attribute table for a MET_version value. A missing or
// unparseable version is treated as v3.
func namesFor(version string) names {
	v := strings.TrimLeft(strings.TrimSpace(version), "Vv")
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	major, err := cast.ToFloat64E(v)
	if err == nil && major < 3 {
		return v2Names
	}
	return v3Names
}

// attrs reads scalar attributes off a header. The first failure is kept in
// err so a whole record can be filled before checking.
type attrs struct {
	h   *cdf.Header
	v   string // variable, "" for global attributes
	err error
}

// scalar returns the first value of attribute a. MET stores most numeric
// attributes as text such as "40.000000 degrees_north"; only the leading
// field is used.
func (r *attrs) scalar(a string) (any, bool) {
	switch val := r.h.GetAttribute(r.v, a).(type) {
	case string:
		return firstField(val)
	case []uint8:
		return firstField(string(val))
	case []int16:
		if len(val) > 0 {
			return val[0], true
		}
	case []int32:
		if len(val) > 0 {
			return val[0], true
		}
	case []float32:
		if len(val) > 0 {
			return val[0], true
		}
	case []float64:
		if len(val) > 0 {
			return val[0], true
		}
	}
	return nil, false
}

func firstField(s string) (any, bool) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil, false
	}
	return f[0], true
}

func (r *attrs) has(a string) bool {
	_, ok := r.scalar(a)
	return ok
}

func (r *attrs) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *attrs) float(a string) float64 {
	val, ok := r.scalar(a)
	if !ok {
		r.fail(fmt.Errorf("ncgrid: attribute %q: %w", a, ErrMissingAttribute))
		return 0
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		r.fail(fmt.Errorf("ncgrid: attribute %q: %v: %w", a, err, grid.ErrInvalidParameter))
	}
	return f
}

// floatOr returns def when the parameter has no attribute name in the
// current table.
func (r *attrs) floatOr(a string, def float64) float64 {
	if a == "" {
		return def
	}
	return r.float(a)
}

// int parses through float64 so that text such as "0100" is read as decimal.
func (r *attrs) int(a string) int {
	return int(math.Round(r.float(a)))
}

func (r *attrs) string(a string) string {
	val, ok := r.scalar(a)
	if !ok {
		r.fail(fmt.Errorf("ncgrid: attribute %q: %w", a, ErrMissingAttribute))
		return ""
	}
	return cast.ToString(val)
}

// ReadGrid builds the grid described by the global attributes of h.
func ReadGrid(h *cdf.Header) (grid.Grid, error) {
	r := &attrs{h: h}
	var version string
	if r.has("MET_version") {
		version = r.string("MET_version")
	}
	n := namesFor(version)

	proj, ok := h.GetAttribute("", "Projection").(string)
	if !ok {
		return grid.Grid{}, fmt.Errorf("ncgrid: global attribute %q: %w", "Projection", ErrMissingAttribute)
	}
	proj = strings.TrimSpace(proj)

	var d any
	switch proj {
	case grid.TypeLatLon:
		d = grid.LatLonData{
			Name:     proj,
			LatLL:    r.float(n.latLL),
			LonLL:    grid.FromEast(r.float(n.lonLL)),
			DeltaLat: r.float(n.deltaLat),
			DeltaLon: r.float(n.deltaLon),
			Nlat:     r.int(n.nlat),
			Nlon:     r.int(n.nlon),
		}

	case grid.TypeMercator:
		d = grid.MercatorData{
			Name:  proj,
			LatLL: r.float(n.latLL),
			LonLL: grid.FromEast(r.float(n.lonLL)),
			LatUR: r.float(n.latUR),
			LonUR: grid.FromEast(r.float(n.lonUR)),
			Nx:    r.int(n.nx),
			Ny:    r.int(n.ny),
		}

	case grid.TypeLambert:
		d = grid.LambertData{
			Name:      proj,
			ScaleLat1: r.float(n.scaleLat1),
			ScaleLat2: r.float(n.scaleLat2),
			LatPin:    r.float(n.latPin),
			LonPin:    grid.FromEast(r.float(n.lonPin)),
			XPin:      r.floatOr(n.xPin, 0),
			YPin:      r.floatOr(n.yPin, 0),
			LonOrient: grid.FromEast(r.float(n.lonOrient)),
			DKm:       r.float(n.dKm),
			RKm:       r.float(n.rKm),
			Nx:        r.int(n.nx),
			Ny:        r.int(n.ny),
		}

	case grid.TypeStereographic:
		hemi := byte('N')
		if n.hemisphere != "" {
			if s := r.string(n.hemisphere); s != "" {
				hemi = s[0]
			}
		}
		d = grid.StereographicData{
			Name:       proj,
			Hemisphere: hemi,
			ScaleLat:   r.float(n.scaleLat),
			LatPin:     r.float(n.latPin),
			LonPin:     grid.FromEast(r.float(n.lonPin)),
			XPin:       r.floatOr(n.xPin, 0),
			YPin:       r.floatOr(n.yPin, 0),
			LonOrient:  grid.FromEast(r.float(n.lonOrient)),
			DKm:        r.float(n.dKm),
			RKm:        r.float(n.rKm),
			Nx:         r.int(n.nx),
			Ny:         r.int(n.ny),
		}

	default:
		return grid.Grid{}, fmt.Errorf("ncgrid: projection %q: %w", proj, grid.ErrUnknownProjection)
	}
	if r.err != nil {
		return grid.Grid{}, r.err
	}
	return grid.FromData(d)
}

// addGridAttributes writes the v3 projection attributes of g to the global
// attributes of h, in the text form MET uses.
func addGridAttributes(h *cdf.Header, g grid.Grid) error {
	add := func(name, format string, v any) {
		h.AddAttribute("", name, fmt.Sprintf(format, v))
	}
	n := v3Names

	h.AddAttribute("", "Projection", g.Kind())
	switch d := g.Data().(type) {
	case grid.LatLonData:
		add(n.latLL, "%f degrees_north", d.LatLL)
		add(n.lonLL, "%f degrees_east", grid.ToEast(d.LonLL))
		add(n.deltaLat, "%f degrees", d.DeltaLat)
		add(n.deltaLon, "%f degrees", d.DeltaLon)
		add(n.nlat, "%d grid_points", d.Nlat)
		add(n.nlon, "%d grid_points", d.Nlon)

	case grid.MercatorData:
		add(n.latLL, "%f degrees_north", d.LatLL)
		add(n.lonLL, "%f degrees_east", grid.ToEast(d.LonLL))
		add(n.latUR, "%f degrees_north", d.LatUR)
		add(n.lonUR, "%f degrees_east", grid.ToEast(d.LonUR))
		add(n.nx, "%d grid_points", d.Nx)
		add(n.ny, "%d grid_points", d.Ny)

	case grid.LambertData:
		add(n.scaleLat1, "%f degrees_north", d.ScaleLat1)
		add(n.scaleLat2, "%f degrees_north", d.ScaleLat2)
		add(n.latPin, "%f degrees_north", d.LatPin)
		add(n.lonPin, "%f degrees_east", grid.ToEast(d.LonPin))
		add(n.xPin, "%f", d.XPin)
		add(n.yPin, "%f", d.YPin)
		add(n.lonOrient, "%f degrees_east", grid.ToEast(d.LonOrient))
		add(n.dKm, "%f km", d.DKm)
		add(n.rKm, "%f km", d.RKm)
		add(n.nx, "%d grid_points", d.Nx)
		add(n.ny, "%d grid_points", d.Ny)

	case grid.StereographicData:
		add(n.hemisphere, "%c", d.Hemisphere)
		add(n.scaleLat, "%f degrees_north", d.ScaleLat)
		add(n.latPin, "%f degrees_north", d.LatPin)
		add(n.lonPin, "%f degrees_east", grid.ToEast(d.LonPin))
		add(n.xPin, "%f", d.XPin)
		add(n.yPin, "%f", d.YPin)
		add(n.lonOrient, "%f degrees_east", grid.ToEast(d.LonOrient))
		add(n.dKm, "%f km", d.DKm)
		add(n.rKm, "%f km", d.RKm)
		add(n.nx, "%d grid_points", d.Nx)
		add(n.ny, "%d grid_points", d.Ny)

	default:
		return fmt.Errorf("ncgrid: cannot store a %q grid: %w", g.Kind(), grid.ErrUnknownProjection)
	}
	return nil
}
