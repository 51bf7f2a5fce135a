package grid

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// ParseSpec builds a grid from a MET grid specification string:
//
//	latlon   Nx Ny lat_ll lon_ll delta_lat delta_lon
//	mercator Nx Ny lat_ll lon_ll lat_ur lon_ur
//	lambert  Nx Ny lat_ll lon_ll lon_orient D_km R_km std_lat1 [std_lat2] N|S
//	stereo   Nx Ny lat_ll lon_ll lon_orient D_km R_km lat_scale N|S
//
// Longitudes in a spec string are east-positive. The lower-left point pins
// pixel (0, 0).
func ParseSpec(spec string) (Grid, error) {
	f := strings.Fields(spec)
	if len(f) == 0 {
		return Grid{}, fmt.Errorf("grid: empty grid specification: %w", ErrInvalidParameter)
	}
	p := specParser{fields: f, kind: strings.ToLower(f[0])}

	switch p.kind {
	case "latlon":
		if err := p.count(7); err != nil {
			return Grid{}, err
		}
		d := LatLonData{
			Name:     "To (latlon)",
			Nlon:     p.int(1),
			Nlat:     p.int(2),
			LatLL:    p.float(3),
			LonLL:    FromEast(p.float(4)),
			DeltaLat: p.float(5),
			DeltaLon: p.float(6),
		}
		if p.err != nil {
			return Grid{}, p.err
		}
		return NewLatLon(d)

	case "mercator":
		if err := p.count(7); err != nil {
			return Grid{}, err
		}
		d := MercatorData{
			Name:  "To (mercator)",
			Nx:    p.int(1),
			Ny:    p.int(2),
			LatLL: p.float(3),
			LonLL: FromEast(p.float(4)),
			LatUR: p.float(5),
			LonUR: FromEast(p.float(6)),
		}
		if p.err != nil {
			return Grid{}, p.err
		}
		return NewMercator(d)

	case "lambert":
		if err := p.count(10, 11); err != nil {
			return Grid{}, err
		}
		d := LambertData{
			Name:      "To (lambert)",
			Nx:        p.int(1),
			Ny:        p.int(2),
			LatPin:    p.float(3),
			LonPin:    FromEast(p.float(4)),
			LonOrient: FromEast(p.float(5)),
			DKm:       p.float(6),
			RKm:       p.float(7),
			ScaleLat1: p.float(8),
		}
		d.ScaleLat2 = d.ScaleLat1
		h := 9
		if len(f) == 11 {
			d.ScaleLat2 = p.float(9)
			h = 10
		}
		d.Hemisphere = p.hemisphere(h)
		if p.err != nil {
			return Grid{}, p.err
		}
		return NewLambert(d)

	case "stereo":
		if err := p.count(10); err != nil {
			return Grid{}, err
		}
		d := StereographicData{
			Name:       "To (stereographic)",
			Nx:         p.int(1),
			Ny:         p.int(2),
			LatPin:     p.float(3),
			LonPin:     FromEast(p.float(4)),
			LonOrient:  FromEast(p.float(5)),
			DKm:        p.float(6),
			RKm:        p.float(7),
			ScaleLat:   p.float(8),
			Hemisphere: p.hemisphere(9),
		}
		if p.err != nil {
			return Grid{}, p.err
		}
		return NewStereographic(d)
	}
	return Grid{}, fmt.Errorf("grid: grid specification %q: %w", f[0], ErrUnknownProjection)
}

// Resolve returns the named catalog grid called s, or parses s as a grid
// specification string.
func Resolve(s string) (Grid, error) {
	if g, ok := FindByName(strings.TrimSpace(s)); ok {
		return g, nil
	}
	return ParseSpec(s)
}

// specParser records the first conversion error so the struct literals above
// can be filled in without per-field checks.
type specParser struct {
	fields []string
	kind   string
	err    error
}

func (p *specParser) count(want ...int) error {
	for _, n := range want {
		if len(p.fields) == n {
			return nil
		}
	}
	return fmt.Errorf("grid: %s grid specification should have %v entries, got %d: %w",
		p.kind, want, len(p.fields), ErrInvalidParameter)
}

func (p *specParser) int(i int) int {
	v, err := cast.ToIntE(p.fields[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("grid: %s entry %d (%q) is not an integer: %w", p.kind, i, p.fields[i], ErrInvalidParameter)
	}
	return v
}

func (p *specParser) float(i int) float64 {
	v, err := cast.ToFloat64E(p.fields[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("grid: %s entry %d (%q) is not a number: %w", p.kind, i, p.fields[i], ErrInvalidParameter)
	}
	return v
}

func (p *specParser) hemisphere(i int) byte {
	s := p.fields[i]
	if len(s) != 1 || (s[0] != 'N' && s[0] != 'S') {
		if p.err == nil {
			p.err = fmt.Errorf("grid: %s: bad hemisphere %q in grid specification: %w", p.kind, s, ErrInvalidParameter)
		}
		return 0
	}
	return s[0]
}
