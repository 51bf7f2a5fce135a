package interp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type average struct{ Buffer }

func (a *average) Method() Method { return Average }

func (a *average) Interpolate(dx, dy float64) Value {
	good := a.goodValues()
	if good == nil {
		return Value{}
	}
	return Value{OK: true, Value: floats.Sum(good) / float64(len(good))}
}

func (a *average) Clone() Interpolator {
	return &average{Buffer: a.clone()}
}

type minimum struct{ Buffer }

func (m *minimum) Method() Method { return Min }

func (m *minimum) Interpolate(dx, dy float64) Value {
	good := m.goodValues()
	if good == nil {
		return Value{}
	}
	return Value{OK: true, Value: floats.Min(good)}
}

func (m *minimum) Clone() Interpolator {
	return &minimum{Buffer: m.clone()}
}

type maximum struct{ Buffer }

func (m *maximum) Method() Method { return Max }

func (m *maximum) Interpolate(dx, dy float64) Value {
	good := m.goodValues()
	if good == nil {
		return Value{}
	}
	return Value{OK: true, Value: floats.Max(good)}
}

func (m *maximum) Clone() Interpolator {
	return &maximum{Buffer: m.clone()}
}

// nearest returns the cell closest to (dx, dy) as stored, good or bad. The
// good-count threshold does not apply.
type nearest struct{ Buffer }

func (n *nearest) Method() Method { return Nearest }

func (n *nearest) Interpolate(dx, dy float64) Value {
	x := nint(dx + float64(n.wm1o2))
	y := nint(dy + float64(n.wm1o2))
	return n.Cell(x, y)
}

func (n *nearest) Clone() Interpolator {
	return &nearest{Buffer: n.clone()}
}

// nint rounds half away from zero.
func nint(v float64) int {
	return int(math.Round(v))
}
