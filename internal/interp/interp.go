// Package interp reduces a square neighbourhood of tagged samples to one
// value. The four methods share a Buffer of width x width cells that callers
// fill with PutGood and PutBad before calling Interpolate.
package interp

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrWidth is returned for an even or non-positive neighbourhood width.
	ErrWidth = errors.New("interpolation width must be odd and >= 1")
	// ErrNGood is returned when the good-count threshold is outside [0, width²].
	ErrNGood = errors.New("good-count threshold out of range")
	// ErrMethod is returned for an unknown interpolation method name.
	ErrMethod = errors.New("unknown interpolation method")
)

// Method selects the neighbourhood reduction.
type Method int

const (
	Nearest Method = iota
	Average
	Min
	Max
)

func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Average:
		return "average"
	case Min:
		return "min"
	case Max:
		return "max"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a method name (average, nearest, min or max) to a
// Method. Matching is case-insensitive.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return Nearest, nil
	case "average", "uw_mean":
		return Average, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	}
	return 0, fmt.Errorf("interp: %q (supported: average, nearest, min, max): %w", s, ErrMethod)
}

// Value is the result of an interpolation. Value is meaningful only when OK.
type Value struct {
	OK    bool
	Value float64
}

// Interpolator is implemented by the four reductions. An Interpolator holds
// mutable per-cell state: give each goroutine its own via Clone.
type Interpolator interface {
	SetSize(width int) error
	SetNGoodNeeded(n int) error
	PutGood(x, y int, v float64)
	PutBad(x, y int)
	// Interpolate reduces the buffer. (dx, dy) is the sample position
	// relative to the centre cell; only Nearest uses it.
	Interpolate(dx, dy float64) Value
	Clone() Interpolator
	Method() Method
	Width() int
	NGoodNeeded() int
}

// New returns an interpolator of the given method and width whose good-count
// threshold is ceil(vldThresh * width²). vldThresh is a fraction in [0, 1].
func New(method Method, width int, vldThresh float64) (Interpolator, error) {
	var in Interpolator
	switch method {
	case Nearest:
		in = &nearest{}
	case Average:
		in = &average{}
	case Min:
		in = &minimum{}
	case Max:
		in = &maximum{}
	default:
		return nil, fmt.Errorf("interp: %v: %w", method, ErrMethod)
	}
	if err := in.SetSize(width); err != nil {
		return nil, err
	}
	if vldThresh < 0 || vldThresh > 1 {
		return nil, fmt.Errorf("interp: valid-data threshold %v not in [0, 1]: %w", vldThresh, ErrNGood)
	}
	if err := in.SetNGoodNeeded(ngoodFromFraction(vldThresh, width)); err != nil {
		return nil, err
	}
	return in, nil
}

// NGoodFromPercent converts a minimum-valid percentage to an absolute count
// for a width x width neighbourhood.
func NGoodFromPercent(pct float64, width int) int {
	return ngoodFromFraction(pct/100.0, width)
}

func ngoodFromFraction(f float64, width int) int {
	n2 := width * width
	n := int(math.Ceil(f*float64(n2) - 1e-9))
	if n < 0 {
		return 0
	}
	if n > n2 {
		return n2
	}
	return n
}
