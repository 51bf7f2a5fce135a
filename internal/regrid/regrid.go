// Package regrid resamples data planes from one or two source grids onto a
// target grid.
//
// For every target pixel the regridder converts the pixel to lat/lon, picks
// the source whose hemisphere matches, converts to a source pixel and tests
// it. Width 1 copies the nearest source sample. Wider neighbourhoods sample a
// width x width "fat" sub-grid around each target pixel and reduce it with an
// interp.Interpolator. Each sub-sample chooses its own hemisphere, which
// stitches northern and southern sources together across the equator.
package regrid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/metgrid/internal/dataplane"
	"github.com/pspoerri/metgrid/internal/interp"
)

var (
	// ErrMissingHemisphere is returned when the target grid needs a source
	// hemisphere that was not supplied.
	ErrMissingHemisphere = errors.New("missing source for required hemisphere")
	// ErrInvalidSource is returned when a source plane does not match its grid.
	ErrInvalidSource = errors.New("invalid source")
	// ErrNoPixelAge is returned when pixel ages are requested but no source
	// has an age plane.
	ErrNoPixelAge = errors.New("pixel age requested without age data")
)

// Mapper converts between pixel and lat/lon coordinates. Longitudes are
// west-positive. grid.Grid and rangeazi.Grid satisfy it.
type Mapper interface {
	Nx() int
	Ny() int
	XYToLatLon(x, y float64) (lat, lon float64)
	LatLonToXY(lat, lon float64) (x, y float64)
}

// Source is one input field. Age is optional and holds the age of every
// pixel in minutes.
type Source struct {
	Grid Mapper
	Data *dataplane.Plane
	Age  *dataplane.Plane
}

// Config controls a regrid run.
type Config struct {
	Method    interp.Method
	Width     int
	VldThresh float64 // fraction of good samples needed, in [0, 1]

	// MaxMinutes rejects samples whose age is not below it. Zero or less
	// disables the check.
	MaxMinutes    int
	WritePixelAge bool

	Concurrency int
	Log         logrus.FieldLogger
	Progress    bool

	// SingleSource uses the north source for every pixel and skips the
	// hemisphere selection.
	SingleSource bool
}

// Stats holds regrid statistics.
type Stats struct {
	GoodCells int64
	BadCells  int64
	Rows      int64
}

// Regridder holds a validated configuration. It is safe to Run more than once.
type Regridder struct {
	cfg    Config
	log    logrus.FieldLogger
	target Mapper
	north  *Source
	south  *Source
	hemi   Hemisphere
	proto  interp.Interpolator
}

// New validates the configuration and the sources against the hemispheres the
// target grid needs. All configuration errors surface here, before any pixel
// is computed.
func New(cfg Config, target Mapper, north, south *Source) (*Regridder, error) {
	if target == nil {
		return nil, fmt.Errorf("regrid: no target grid")
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	proto, err := interp.New(cfg.Method, cfg.Width, cfg.VldThresh)
	if err != nil {
		return nil, fmt.Errorf("regrid: %w", err)
	}

	for _, s := range []struct {
		name string
		src  *Source
	}{{"north", north}, {"south", south}} {
		if err := s.src.validate(s.name); err != nil {
			return nil, err
		}
	}

	hemi := North
	if !cfg.SingleSource {
		hemi = FindHemisphere(target, cfg.Width)
	}
	needNorth := cfg.SingleSource || hemi == North || hemi == Both
	needSouth := !cfg.SingleSource && (hemi == South || hemi == Both)
	if needNorth && north == nil {
		return nil, fmt.Errorf("regrid: target grid covers %s, no northern source: %w", hemi, ErrMissingHemisphere)
	}
	if needSouth && south == nil {
		return nil, fmt.Errorf("regrid: target grid covers %s, no southern source: %w", hemi, ErrMissingHemisphere)
	}

	if cfg.WritePixelAge && (north == nil || north.Age == nil) && (south == nil || south.Age == nil) {
		return nil, fmt.Errorf("regrid: %w", ErrNoPixelAge)
	}

	r := &Regridder{
		cfg:    cfg,
		log:    log,
		target: target,
		north:  north,
		south:  south,
		hemi:   hemi,
		proto:  proto,
	}
	r.checkOverlap()

	log.WithFields(logrus.Fields{
		"method":       cfg.Method,
		"width":        cfg.Width,
		"ngood_needed": proto.NGoodNeeded(),
		"hemisphere":   hemi,
		"nx":           target.Nx(),
		"ny":           target.Ny(),
		"max_minutes":  cfg.MaxMinutes,
		"pixel_age":    cfg.WritePixelAge,
	}).Debug("Regrid configured")
	return r, nil
}

func (s *Source) validate(name string) error {
	if s == nil {
		return nil
	}
	if s.Grid == nil || s.Data == nil {
		return fmt.Errorf("regrid: %s source needs a grid and a data plane: %w", name, ErrInvalidSource)
	}
	nx, ny := s.Grid.Nx(), s.Grid.Ny()
	if s.Data.Nx() != nx || s.Data.Ny() != ny {
		return fmt.Errorf("regrid: %s data plane is %dx%d, grid is %dx%d: %w",
			name, s.Data.Nx(), s.Data.Ny(), nx, ny, ErrInvalidSource)
	}
	if s.Age != nil && (s.Age.Nx() != nx || s.Age.Ny() != ny) {
		return fmt.Errorf("regrid: %s age plane is %dx%d, grid is %dx%d: %w",
			name, s.Age.Nx(), s.Age.Ny(), nx, ny, ErrInvalidSource)
	}
	return nil
}

// Hemisphere returns the hemisphere coverage found for the target grid.
func (r *Regridder) Hemisphere() Hemisphere { return r.hemi }

// Run computes the target plane. Rows are distributed over a pool of
// workers, each with its own interpolator.
func (r *Regridder) Run(ctx context.Context) (*dataplane.Plane, Stats, error) {
	nx, ny := r.target.Nx(), r.target.Ny()
	out := dataplane.New(nx, ny)
	if src := r.north; src != nil {
		out.CopyTimes(src.Data)
	} else if src := r.south; src != nil {
		out.CopyTimes(src.Data)
	}

	var good, bad, rows atomic.Int64

	var pb *progressBar
	if r.cfg.Progress {
		pb = newProgressBar("Regrid", int64(ny))
	}

	jobs := make(chan int, r.cfg.Concurrency*2)
	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	for w := 0; w < r.cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.newCell()
			for y := range jobs {
				if err := ctx.Err(); err != nil {
					select {
					case errCh <- err:
					default:
					}
					return
				}
				row := out.Row(y)
				var g, b int64
				for x := 0; x < nx; x++ {
					v := c.value(x, y)
					row[x] = v
					if dataplane.IsBad(v) {
						b++
					} else {
						g++
					}
				}
				good.Add(g)
				bad.Add(b)
				rows.Add(1)
				if pb != nil {
					pb.Increment()
				}
			}
		}()
	}

feed:
	for y := 0; y < ny; y++ {
		select {
		case jobs <- y:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if pb != nil {
		pb.Finish()
	}

	stats := Stats{GoodCells: good.Load(), BadCells: bad.Load(), Rows: rows.Load()}
	select {
	case err := <-errCh:
		return nil, stats, fmt.Errorf("regrid: %w", err)
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("regrid: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"good": stats.GoodCells,
		"bad":  stats.BadCells,
		"rows": stats.Rows,
	}).Debug("Regrid finished")
	return out, stats, nil
}

// Plane regrids one data plane from src to dst. It is the single-source entry
// point used for fixed grids and for range-azimuth grids.
func Plane(ctx context.Context, src Mapper, data *dataplane.Plane, dst Mapper, cfg Config) (*dataplane.Plane, error) {
	cfg.SingleSource = true
	r, err := New(cfg, dst, &Source{Grid: src, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	out, _, err := r.Run(ctx)
	return out, err
}

// nint rounds half up, as pixel lookups in the source grids expect.
func nint(v float64) int {
	return int(math.Floor(v + 0.5))
}
