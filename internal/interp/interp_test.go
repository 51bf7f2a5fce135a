package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allMethods = []Method{Nearest, Average, Min, Max}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"nearest", Nearest},
		{"AVERAGE", Average},
		{" Min ", Min},
		{"max", Max},
		{"uw_mean", Average},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, mustParse(t, got.String()))
	}

	_, err := ParseMethod("bicubic")
	assert.ErrorIs(t, err, ErrMethod)
}

func mustParse(t *testing.T, s string) Method {
	t.Helper()
	m, err := ParseMethod(s)
	require.NoError(t, err)
	return m
}

func TestSetSizeRejectsEvenWidth(t *testing.T) {
	for _, m := range allMethods {
		in, err := New(m, 3, 0)
		require.NoError(t, err)
		for _, w := range []int{4, 0, -1, 2} {
			assert.ErrorIs(t, in.SetSize(w), ErrWidth, "%v width %d", m, w)
		}
		assert.Equal(t, 3, in.Width(), "failed SetSize must not change the width")

		_, err = New(m, 4, 0.5)
		assert.ErrorIs(t, err, ErrWidth)
	}
}

func TestSetSizeResets(t *testing.T) {
	in, err := New(Average, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, in.NGoodNeeded())

	in.PutGood(1, 1, 4)
	require.NoError(t, in.SetSize(5))
	assert.Equal(t, 5, in.Width())
	assert.Equal(t, 1, in.NGoodNeeded())
	assert.False(t, in.Interpolate(0, 0).OK, "all cells are bad after SetSize")
}

func TestSetNGoodNeeded(t *testing.T) {
	in, err := New(Max, 3, 0)
	require.NoError(t, err)
	assert.NoError(t, in.SetNGoodNeeded(0))
	assert.NoError(t, in.SetNGoodNeeded(9))
	assert.ErrorIs(t, in.SetNGoodNeeded(10), ErrNGood)
	assert.ErrorIs(t, in.SetNGoodNeeded(-1), ErrNGood)

	_, err = New(Max, 3, 1.5)
	assert.ErrorIs(t, err, ErrNGood)
}

func TestAcceptanceGate(t *testing.T) {
	values := []float64{3, -1, 7, 2, 10, 4}
	tests := []struct {
		method Method
		want   float64
	}{
		{Average, 25.0 / 6.0},
		{Min, -1},
		{Max, 10},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			in, err := New(tt.method, 3, 0)
			require.NoError(t, err)

			for ngood := 1; ngood <= 9; ngood++ {
				require.NoError(t, in.SetNGoodNeeded(ngood))
				for i := 0; i < 9; i++ {
					x, y := i%3, i/3
					if i < len(values) {
						in.PutGood(x, y, values[i])
					} else {
						in.PutBad(x, y)
					}
				}

				got := in.Interpolate(0, 0)
				if len(values) < ngood {
					assert.False(t, got.OK, "ngood=%d", ngood)
					continue
				}
				assert.True(t, got.OK, "ngood=%d", ngood)
				assert.InDelta(t, tt.want, got.Value, 1e-12, "ngood=%d", ngood)
			}
		})
	}
}

func TestZeroThresholdStillNeedsAGoodCell(t *testing.T) {
	for _, m := range []Method{Average, Min, Max} {
		in, err := New(m, 3, 0)
		require.NoError(t, err)
		require.NoError(t, in.SetNGoodNeeded(0))
		assert.False(t, in.Interpolate(0, 0).OK, "%s with no good cells", m)

		in.PutGood(2, 0, 5)
		assert.Equal(t, Value{OK: true, Value: 5}, in.Interpolate(0, 0), "%s with one good cell", m)
	}
}

func TestNearestBypassesGate(t *testing.T) {
	in, err := New(Nearest, 3, 1)
	require.NoError(t, err)
	require.Equal(t, 9, in.NGoodNeeded())

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			in.PutGood(x, y, float64(10*y+x))
		}
	}
	in.PutBad(1, 1)

	// Only 8 good cells, yet neighbours are returned verbatim.
	assert.Equal(t, Value{OK: true, Value: 12}, in.Interpolate(0.6, 0.2))
	assert.Equal(t, Value{OK: true, Value: 0}, in.Interpolate(-1, -1))
	assert.Equal(t, Value{OK: true, Value: 22}, in.Interpolate(0.9, 1.4))

	// The nearest cell is bad: returned as is.
	assert.Equal(t, Value{}, in.Interpolate(0.1, -0.3))
}

func TestPutOutOfRangePanics(t *testing.T) {
	for _, m := range allMethods {
		in, err := New(m, 3, 0)
		require.NoError(t, err)

		assert.PanicsWithValue(t, RangeError{X: 3, Y: 0, Width: 3}, func() { in.PutGood(3, 0, 1) })
		assert.PanicsWithValue(t, RangeError{X: 0, Y: -1, Width: 3}, func() { in.PutBad(0, -1) })
	}
}

func TestCloneIsIndependent(t *testing.T) {
	in, err := New(Average, 3, 0)
	require.NoError(t, err)
	in.PutGood(0, 0, 2)

	c := in.Clone()
	assert.Equal(t, in.Method(), c.Method())
	assert.Equal(t, in.Width(), c.Width())
	assert.Equal(t, in.NGoodNeeded(), c.NGoodNeeded())

	c.PutGood(1, 1, 4)
	assert.InDelta(t, 2.0, in.Interpolate(0, 0).Value, 1e-12)
	assert.InDelta(t, 3.0, c.Interpolate(0, 0).Value, 1e-12)
}

func TestNGoodFromPercent(t *testing.T) {
	tests := []struct {
		pct   float64
		width int
		want  int
	}{
		{50, 3, 5},
		{100, 3, 9},
		{0, 3, 0},
		{55.6, 3, 6},
		{50, 1, 1},
		{25, 5, 7},
		{200, 3, 9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NGoodFromPercent(tt.pct, tt.width), "pct=%v width=%d", tt.pct, tt.width)
	}
}
