package regrid

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pspoerri/metgrid/internal/dataplane"
	"github.com/pspoerri/metgrid/internal/grid"
	"github.com/pspoerri/metgrid/internal/interp"
)

func latLonGrid(t *testing.T, latLL, lonLL, d float64, nx, ny int) grid.Grid {
	t.Helper()
	g, err := grid.NewLatLon(grid.LatLonData{LatLL: latLL, LonLL: lonLL, DeltaLat: d, DeltaLon: d, Nlat: ny, Nlon: nx})
	require.NoError(t, err)
	return g
}

func constPlane(nx, ny int, v float64) *dataplane.Plane {
	p := dataplane.New(nx, ny)
	p.Fill(v)
	return p
}

func quietConfig(method interp.Method, width int, vld float64) Config {
	log, _ := test.NewNullLogger()
	return Config{Method: method, Width: width, VldThresh: vld, Concurrency: 2, Log: log}
}

// A 4x4 target regridded from an identical source grid with one bad pixel:
// each target pixel's 3x3 neighbourhood is exactly the surrounding source
// pixels.
func TestRegridAverageScenario(t *testing.T) {
	target, err := grid.ParseSpec("latlon 4 4 10.0 -100.0 1.0 1.0")
	require.NoError(t, err)
	src := target

	data := dataplane.New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			data.Set(x, y, float64(10*y+x))
		}
	}
	data.Set(2, 2, dataplane.BadData)

	cfg := quietConfig(interp.Average, 3, 5.0/9.0)
	r, err := New(cfg, target, &Source{Grid: src, Data: data}, nil)
	require.NoError(t, err)
	require.Equal(t, North, r.Hemisphere())

	out, stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Rows)
	assert.Equal(t, int64(16), stats.GoodCells+stats.BadCells)

	// (1, 1): source (2, 2) is the only bad cell, 8 good >= 5.
	want := (0.0 + 1 + 2 + 10 + 11 + 12 + 20 + 21) / 8
	assert.InDelta(t, want, out.Get(1, 1), 1e-9)

	// (0, 0): five cells fall off the source grid, 4 good < 5.
	assert.True(t, dataplane.IsBad(out.Get(0, 0)))
	// (3, 3): five off-grid cells plus the bad pixel.
	assert.True(t, dataplane.IsBad(out.Get(3, 3)))
}

func TestRegridWidthOneCopiesNearest(t *testing.T) {
	src := latLonGrid(t, 0, 20, 1, 10, 10)
	data := dataplane.New(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			data.Set(x, y, float64(100*y+x))
		}
	}
	// Half-degree target: pixel (x, y) sits at source (x/2, y/2).
	target := latLonGrid(t, 2, 18, 0.5, 6, 6)

	out, err := Plane(context.Background(), src, data, target, quietConfig(interp.Nearest, 1, 0))
	require.NoError(t, err)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			sx, sy := nint(2+0.5*float64(x)), nint(2+0.5*float64(y))
			assert.Equal(t, float64(100*sy+sx), out.Get(x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestRegridOutsideSourceIsBad(t *testing.T) {
	src := latLonGrid(t, 40, 100, 1, 5, 5)
	target := latLonGrid(t, 40, 98, 1, 5, 5) // shifted two columns east

	out, err := Plane(context.Background(), src, constPlane(5, 5, 1), target, quietConfig(interp.Nearest, 1, 0))
	require.NoError(t, err)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if x <= 2 {
				assert.Equal(t, 1.0, out.Get(x, y))
			} else {
				assert.True(t, dataplane.IsBad(out.Get(x, y)), "pixel (%d, %d)", x, y)
			}
		}
	}
}

func TestRegridGlobalSourceSeam(t *testing.T) {
	src, ok := grid.FindByName("G003")
	require.True(t, ok)
	data := dataplane.New(src.Nx(), src.Ny())
	for y := 0; y < src.Ny(); y++ {
		for x := 0; x < src.Nx(); x++ {
			data.Set(x, y, float64(x))
		}
	}

	// Columns at 0.7W and 0.3W sit either side of the prime meridian.
	target := latLonGrid(t, 10, 0.7, 0.4, 2, 1)
	out, err := Plane(context.Background(), src, data, target, quietConfig(interp.Nearest, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 359.0, out.Get(0, 0))
	assert.Equal(t, 0.0, out.Get(1, 0))
}

func TestFindHemisphere(t *testing.T) {
	tests := []struct {
		name   string
		target grid.Grid
		width  int
		want   Hemisphere
	}{
		{"north", latLonGrid(t, 30, 100, 1, 10, 10), 1, North},
		{"north wide", latLonGrid(t, 30, 100, 1, 10, 10), 5, North},
		{"south", latLonGrid(t, -60, 100, 1, 10, 10), 3, South},
		{"straddling", latLonGrid(t, -5, 100, 1, 10, 10), 1, Both},
		{"near equator, width 1", latLonGrid(t, 0.5, 100, 1, 10, 5), 1, North},
		{"near equator, width 3", latLonGrid(t, 0.5, 100, 1, 10, 5), 3, Both},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindHemisphere(tt.target, tt.width))
		})
	}

	// Every edge pixel of the WWMCA northern grid lies south of the equator,
	// so only the equator scan of a wide neighbourhood finds the north.
	nh, ok := grid.FindByName("wwmca_north")
	require.True(t, ok)
	assert.Equal(t, South, FindHemisphere(nh, 1))
	assert.Equal(t, Both, FindHemisphere(nh, 3))
}

func TestMissingHemisphere(t *testing.T) {
	target := latLonGrid(t, -10, 100, 1, 5, 21)
	north := &Source{Grid: latLonGrid(t, 0, 110, 1, 20, 20), Data: constPlane(20, 20, 1)}

	_, err := New(quietConfig(interp.Average, 1, 0), target, north, nil)
	assert.ErrorIs(t, err, ErrMissingHemisphere)

	_, err = New(quietConfig(interp.Average, 1, 0), latLonGrid(t, -40, 100, 1, 5, 5), north, nil)
	assert.ErrorIs(t, err, ErrMissingHemisphere)
}

func TestHemisphereStitching(t *testing.T) {
	north := &Source{Grid: latLonGrid(t, 0, 110, 1, 20, 41), Data: constPlane(20, 41, 1)}
	south := &Source{Grid: latLonGrid(t, -40, 110, 1, 20, 41), Data: constPlane(20, 41, 2)}
	target := latLonGrid(t, -10, 100, 1, 5, 21) // lat -10..10

	r, err := New(quietConfig(interp.Average, 1, 0), target, north, south)
	require.NoError(t, err)
	require.Equal(t, Both, r.Hemisphere())
	out, _, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Get(2, 9))  // lat -1
	assert.Equal(t, 1.0, out.Get(2, 10)) // lat 0
	assert.Equal(t, 1.0, out.Get(2, 11)) // lat 1

	// With a 3x3 fat grid the equator row mixes one southern row of
	// sub-samples with two northern ones.
	r, err = New(quietConfig(interp.Average, 3, 0), target, north, south)
	require.NoError(t, err)
	out, _, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, out.Get(2, 10), 1e-12)
	assert.InDelta(t, 5.0/3.0, out.Get(2, 9), 1e-12)
	assert.Equal(t, 2.0, out.Get(2, 5))
}

func TestStalenessAndPixelAge(t *testing.T) {
	g := latLonGrid(t, 20, 100, 1, 3, 1)
	data, err := dataplane.FromSlice(3, 1, []float64{5, 6, 7})
	require.NoError(t, err)
	age, err := dataplane.FromSlice(3, 1, []float64{10, 45, dataplane.BadData})
	require.NoError(t, err)
	src := &Source{Grid: g, Data: data, Age: age}

	cfg := quietConfig(interp.Nearest, 1, 0)
	cfg.MaxMinutes = 30
	r, err := New(cfg, g, src, nil)
	require.NoError(t, err)
	out, stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.0, out.Get(0, 0))
	assert.True(t, dataplane.IsBad(out.Get(1, 0)), "stale pixel")
	assert.True(t, dataplane.IsBad(out.Get(2, 0)), "unknown age")
	assert.Equal(t, Stats{GoodCells: 1, BadCells: 2, Rows: 1}, stats)

	cfg.MaxMinutes = 0
	cfg.WritePixelAge = true
	r, err = New(cfg, g, src, nil)
	require.NoError(t, err)
	out, _, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.0, out.Get(0, 0))
	assert.Equal(t, 45.0, out.Get(1, 0))

	_, err = New(cfg, g, &Source{Grid: g, Data: data}, nil)
	assert.ErrorIs(t, err, ErrNoPixelAge)
}

func TestNewRejectsBadConfig(t *testing.T) {
	g := latLonGrid(t, 20, 100, 1, 4, 4)
	src := &Source{Grid: g, Data: constPlane(4, 4, 1)}

	_, err := New(quietConfig(interp.Average, 4, 0.5), g, src, nil)
	assert.ErrorIs(t, err, interp.ErrWidth)

	_, err = New(quietConfig(interp.Average, 3, 2), g, src, nil)
	assert.ErrorIs(t, err, interp.ErrNGood)

	_, err = New(quietConfig(interp.Average, 1, 0), g, &Source{Grid: g, Data: constPlane(3, 4, 1)}, nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestRunCancelled(t *testing.T) {
	g := latLonGrid(t, 20, 100, 1, 4, 4)
	r, err := New(quietConfig(interp.Nearest, 1, 0), g, &Source{Grid: g, Data: constPlane(4, 4, 1)}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoOverlapWarns(t *testing.T) {
	log, hook := test.NewNullLogger()
	cfg := quietConfig(interp.Nearest, 1, 0)
	cfg.Log = log

	src := &Source{Grid: latLonGrid(t, 20, 100, 1, 4, 4), Data: constPlane(4, 4, 1)}
	_, err := New(cfg, latLonGrid(t, 20, -60, 1, 4, 4), src, nil)
	require.NoError(t, err)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected an overlap warning")
}
