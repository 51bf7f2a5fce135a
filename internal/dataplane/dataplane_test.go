package dataplane

import (
	"math"
	"testing"
)

func TestNewIsBad(t *testing.T) {
	p := New(3, 2)
	if p.Nx() != 3 || p.Ny() != 2 || len(p.Data()) != 6 {
		t.Fatalf("New(3, 2) = %dx%d with %d values", p.Nx(), p.Ny(), len(p.Data()))
	}
	if got := p.CountBad(); got != 6 {
		t.Errorf("CountBad() = %d, want 6", got)
	}
	if _, _, ok := p.Range(); ok {
		t.Errorf("Range() of an all-bad plane reported ok")
	}
}

func TestGetSetRowMajor(t *testing.T) {
	p := New(4, 3)
	p.Set(1, 2, 7.5)
	if got := p.Data()[2*4+1]; got != 7.5 {
		t.Errorf("Data()[9] = %v, want 7.5", got)
	}
	if got := p.Get(1, 2); got != 7.5 {
		t.Errorf("Get(1, 2) = %v, want 7.5", got)
	}
	if row := p.Row(2); row[1] != 7.5 || len(row) != 4 {
		t.Errorf("Row(2) = %v", row)
	}
}

func TestIsBad(t *testing.T) {
	tests := []struct {
		v    float64
		want bool
	}{
		{BadData, true},
		{-9999.00001, true},
		{-9998.9, false},
		{0, false},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		if got := IsBad(tt.v); got != tt.want {
			t.Errorf("IsBad(%v) = %t, want %t", tt.v, got, tt.want)
		}
	}
}

func TestRange(t *testing.T) {
	p, err := FromSlice(3, 1, []float64{4, BadData, -2})
	if err != nil {
		t.Fatal(err)
	}
	min, max, ok := p.Range()
	if !ok || min != -2 || max != 4 {
		t.Errorf("Range() = (%v, %v, %t), want (-2, 4, true)", min, max, ok)
	}

	if _, err := FromSlice(2, 2, []float64{1}); err == nil {
		t.Errorf("FromSlice with a short slice returned no error")
	}
}

func TestInBounds(t *testing.T) {
	p := New(2, 2)
	for _, c := range []struct {
		x, y int
		want bool
	}{
		{0, 0, true}, {1, 1, true}, {2, 0, false}, {0, -1, false},
	} {
		if got := p.InBounds(c.x, c.y); got != c.want {
			t.Errorf("InBounds(%d, %d) = %t, want %t", c.x, c.y, got, c.want)
		}
	}
}
