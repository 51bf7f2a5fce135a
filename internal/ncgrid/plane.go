package ncgrid

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/spf13/cast"

	"github.com/pspoerri/metgrid/internal/dataplane"
	"github.com/pspoerri/metgrid/internal/grid"
)

// AccumPolicy selects how a textual accum_time attribute is read. An
// integer accum_time_sec attribute, when present, always wins.
type AccumPolicy int

const (
	// AccumHHMMSS reads accum_time as HHMMSS, e.g. "030000" is 3 hours.
	AccumHHMMSS AccumPolicy = iota
	// AccumHours reads accum_time as a whole number of hours.
	AccumHours
)

func (p AccumPolicy) String() string {
	switch p {
	case AccumHHMMSS:
		return "hhmmss"
	case AccumHours:
		return "hours"
	}
	return fmt.Sprintf("AccumPolicy(%d)", int(p))
}

// ParseAccumPolicy parses "hhmmss" or "hours".
func ParseAccumPolicy(s string) (AccumPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hhmmss", "":
		return AccumHHMMSS, nil
	case "hours", "hh":
		return AccumHours, nil
	}
	return 0, fmt.Errorf("ncgrid: unknown accumulation policy %q (want hhmmss or hours)", s)
}

// seconds converts an accum_time value under the policy.
func (p AccumPolicy) seconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("ncgrid: accum_time %q is not a digit string", s)
		}
	}
	if p == AccumHours {
		h, err := strconv.Atoi(s)
		return h * 3600, err
	}
	if len(s) < 6 {
		s = strings.Repeat("0", 6-len(s)) + s
	}
	n := len(s)
	h, err := strconv.Atoi(s[:n-4])
	if err != nil {
		return 0, err
	}
	m, _ := strconv.Atoi(s[n-4 : n-2])
	sec, _ := strconv.Atoi(s[n-2:])
	return h*3600 + m*60 + sec, nil
}

func formatHHMMSS(sec int) string {
	return fmt.Sprintf("%.2d%.2d%.2d", sec/3600, (sec%3600)/60, sec%60)
}

const timeLayout = "20060102_150405"

// time returns the time in attribute <base>_ut (unix seconds), falling
// back to <base> in YYYYMMDD_HHMMSS form. Zero means unset.
func (r *attrs) time(base string) (time.Time, error) {
	if val, ok := r.scalar(base + "_ut"); ok {
		ut, err := cast.ToFloat64E(val)
		if err != nil {
			return time.Time{}, fmt.Errorf("ncgrid: attribute %q: %v: %w", base+"_ut", err, grid.ErrInvalidParameter)
		}
		if ut == 0 {
			return time.Time{}, nil
		}
		return time.Unix(int64(ut), 0).UTC(), nil
	}
	if val, ok := r.scalar(base); ok {
		t, err := time.Parse(timeLayout, cast.ToString(val))
		if err != nil {
			return time.Time{}, fmt.Errorf("ncgrid: attribute %q: %v: %w", base, err, grid.ErrInvalidParameter)
		}
		return t, nil
	}
	return time.Time{}, nil
}

func (r *attrs) accum(policy AccumPolicy) (int, error) {
	if val, ok := r.scalar("accum_time_sec"); ok {
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return 0, fmt.Errorf("ncgrid: attribute %q: %v: %w", "accum_time_sec", err, grid.ErrInvalidParameter)
		}
		return int(math.Round(f)), nil
	}
	if val, ok := r.scalar("accum_time"); ok {
		return policy.seconds(cast.ToString(val))
	}
	return 0, nil
}

// ReadPlane reads variable from the MET NetCDF file at path. The variable
// must be dimensioned lat x lon to match the grid in the global attributes.
// Fill values become dataplane.BadData.
func ReadPlane(path, variable string, policy AccumPolicy) (*dataplane.Plane, grid.Grid, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, grid.Grid{}, fmt.Errorf("ncgrid: opening %s: %w", path, err)
	}
	defer ff.Close()

	f, err := cdf.Open(ff)
	if err != nil {
		return nil, grid.Grid{}, fmt.Errorf("ncgrid: reading %s: %w", path, err)
	}
	g, err := ReadGrid(f.Header)
	if err != nil {
		return nil, grid.Grid{}, fmt.Errorf("%s: %w", path, err)
	}
	p, err := readPlane(f, variable, g, policy)
	if err != nil {
		return nil, grid.Grid{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, g, nil
}

// Variables lists the variables of the file at path that are dimensioned
// like a data plane (two dimensions).
func Variables(path string) ([]string, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncgrid: opening %s: %w", path, err)
	}
	defer ff.Close()
	h, err := cdf.ReadHeader(ff)
	if err != nil {
		return nil, fmt.Errorf("ncgrid: reading %s: %w", path, err)
	}
	var out []string
	for _, v := range h.Variables() {
		if v == "lat" || v == "lon" {
			continue
		}
		if len(h.Lengths(v)) == 2 {
			out = append(out, v)
		}
	}
	return out, nil
}

// ReadGridFile returns the grid of the MET NetCDF file at path.
func ReadGridFile(path string) (grid.Grid, error) {
	ff, err := os.Open(path)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("ncgrid: opening %s: %w", path, err)
	}
	defer ff.Close()
	h, err := cdf.ReadHeader(ff)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("ncgrid: reading %s: %w", path, err)
	}
	return ReadGrid(h)
}

func readPlane(f *cdf.File, variable string, g grid.Grid, policy AccumPolicy) (*dataplane.Plane, error) {
	lengths := f.Header.Lengths(variable)
	if lengths == nil {
		return nil, fmt.Errorf("ncgrid: no variable %q", variable)
	}
	nx, ny := g.Nx(), g.Ny()
	if len(lengths) != 2 || lengths[0] != ny || lengths[1] != nx {
		return nil, fmt.Errorf("ncgrid: variable %q has shape %v, grid is %d x %d (lat x lon): %w",
			variable, lengths, ny, nx, grid.ErrGridMismatch)
	}

	r := f.Reader(variable, nil, nil)
	buf := r.Zero(nx * ny)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ncgrid: reading variable %q: %w", variable, err)
	}
	data := make([]float64, nx*ny)
	switch b := buf.(type) {
	case []float32:
		for i, v := range b {
			data[i] = float64(v)
		}
	case []float64:
		copy(data, b)
	case []int32:
		for i, v := range b {
			data[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("ncgrid: variable %q has unsupported type %T", variable, buf)
	}

	a := &attrs{h: f.Header, v: variable}
	if fill, ok := a.scalar("_FillValue"); ok {
		fv := cast.ToFloat64(fill)
		for i, v := range data {
			if v == fv {
				data[i] = dataplane.BadData
			}
		}
	}

	p, err := dataplane.FromSlice(nx, ny, data)
	if err != nil {
		return nil, err
	}
	if p.InitTime, err = a.time("init_time"); err != nil {
		return nil, err
	}
	if p.ValidTime, err = a.time("valid_time"); err != nil {
		return nil, err
	}
	if !p.InitTime.IsZero() && !p.ValidTime.IsZero() {
		p.LeadSec = int(p.ValidTime.Sub(p.InitTime) / time.Second)
	}
	if p.AccumSec, err = a.accum(policy); err != nil {
		return nil, err
	}
	return p, nil
}

// Field is a named data plane to write.
type Field struct {
	Name  string
	Plane *dataplane.Plane
}

// WritePlane writes p as variable name on grid g to a new MET NetCDF file at
// path, along with lat/lon coordinate variables (east-positive).
func WritePlane(path, name string, p *dataplane.Plane, g grid.Grid) error {
	return WriteFields(path, g, Field{Name: name, Plane: p})
}

// WriteFields writes several planes on grid g to a new MET NetCDF file.
func WriteFields(path string, g grid.Grid, fields ...Field) error {
	nx, ny := g.Nx(), g.Ny()
	seen := map[string]bool{"lat": true, "lon": true}
	for _, f := range fields {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("ncgrid: invalid or repeated variable name %q", f.Name)
		}
		seen[f.Name] = true
		if f.Plane.Nx() != nx || f.Plane.Ny() != ny {
			return fmt.Errorf("ncgrid: %s: %dx%d plane on a %dx%d grid: %w",
				f.Name, f.Plane.Nx(), f.Plane.Ny(), nx, ny, grid.ErrGridMismatch)
		}
	}

	h := cdf.NewHeader([]string{"lat", "lon"}, []int{ny, nx})
	h.AddAttribute("", "FileOrigins", fmt.Sprintf("File %s generated %s UTC by metgrid",
		path, time.Now().UTC().Format(timeLayout)))
	h.AddAttribute("", "MET_version", METVersion)
	h.AddAttribute("", "MET_tool", "metgrid")
	if err := addGridAttributes(h, g); err != nil {
		return err
	}

	dims := []string{"lat", "lon"}
	h.AddVariable("lat", dims, []float32{0})
	h.AddAttribute("lat", "long_name", "latitude")
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddAttribute("lat", "standard_name", "latitude")
	h.AddVariable("lon", dims, []float32{0})
	h.AddAttribute("lon", "long_name", "longitude")
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddAttribute("lon", "standard_name", "longitude")

	for _, f := range fields {
		h.AddVariable(f.Name, dims, []float32{0})
		h.AddAttribute(f.Name, "name", f.Name)
		h.AddAttribute(f.Name, "_FillValue", []float32{float32(dataplane.BadData)})
		addTimeAttributes(h, f.Name, f.Plane)
	}
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ncgrid: creating %s: %w", path, err)
	}
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("ncgrid: writing header of %s: %w", path, err)
	}

	lat := make([]float32, nx*ny)
	lon := make([]float32, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			la, lo := g.XYToLatLon(float64(x), float64(y))
			lat[y*nx+x] = float32(la)
			lon[y*nx+x] = float32(grid.RescaleLon(grid.ToEast(lo)))
		}
	}
	write := func(name string, data []float32) error {
		// A write that fills a fixed-size variable reports io.EOF.
		n, err := f.Writer(name, nil, nil).Write(data)
		if err == io.EOF && n == len(data) {
			err = nil
		}
		if err != nil {
			return fmt.Errorf("ncgrid: writing variable %s to %s: %w", name, path, err)
		}
		return nil
	}
	if err := write("lat", lat); err != nil {
		return err
	}
	if err := write("lon", lon); err != nil {
		return err
	}
	vals := make([]float32, nx*ny)
	for _, fld := range fields {
		for i, v := range fld.Plane.Data() {
			if dataplane.IsBad(v) {
				v = dataplane.BadData
			}
			vals[i] = float32(v)
		}
		if err := write(fld.Name, vals); err != nil {
			return err
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("ncgrid: finishing %s: %w", path, err)
	}
	return ff.Close()
}

func addTimeAttributes(h *cdf.Header, v string, p *dataplane.Plane) {
	unix := func(t time.Time) int64 {
		if t.IsZero() {
			return 0
		}
		return t.Unix()
	}
	format := func(t time.Time) string {
		if t.IsZero() {
			return time.Unix(0, 0).UTC().Format(timeLayout)
		}
		return t.UTC().Format(timeLayout)
	}
	h.AddAttribute(v, "init_time", format(p.InitTime))
	h.AddAttribute(v, "init_time_ut", strconv.FormatInt(unix(p.InitTime), 10))
	h.AddAttribute(v, "valid_time", format(p.ValidTime))
	h.AddAttribute(v, "valid_time_ut", strconv.FormatInt(unix(p.ValidTime), 10))
	if p.AccumSec != 0 {
		h.AddAttribute(v, "accum_time", formatHHMMSS(p.AccumSec))
		h.AddAttribute(v, "accum_time_sec", []int32{int32(p.AccumSec)})
	}
}
