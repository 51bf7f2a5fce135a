package interp

import "fmt"

// RangeError is the panic value raised when a buffer cell outside
// [0, width)² is written.
type RangeError struct {
	X, Y, Width int
}

func (e RangeError) Error() string {
	return fmt.Sprintf("interp: cell (%d, %d) outside %dx%d neighbourhood", e.X, e.Y, e.Width, e.Width)
}

// Buffer is the neighbourhood state shared by every method. Cells are stored
// row-major, index y*width + x.
type Buffer struct {
	width int
	wm1o2 int
	ngood int
	cells []Value

	scratch []float64
}

// SetSize resizes the buffer, marks every cell bad and resets the good-count
// threshold to 1.
func (b *Buffer) SetSize(width int) error {
	if width < 1 || width%2 == 0 {
		return fmt.Errorf("interp: width %d: %w", width, ErrWidth)
	}
	b.width = width
	b.wm1o2 = (width - 1) / 2
	b.ngood = 1
	n := width * width
	if cap(b.cells) >= n {
		b.cells = b.cells[:n]
	} else {
		b.cells = make([]Value, n)
	}
	for i := range b.cells {
		b.cells[i] = Value{}
	}
	b.scratch = make([]float64, 0, n)
	return nil
}

// SetNGoodNeeded sets the number of good cells needed for a valid result.
func (b *Buffer) SetNGoodNeeded(n int) error {
	if n < 0 || n > b.width*b.width {
		return fmt.Errorf("interp: %d not in [0, %d]: %w", n, b.width*b.width, ErrNGood)
	}
	b.ngood = n
	return nil
}

func (b *Buffer) index(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.width {
		panic(RangeError{X: x, Y: y, Width: b.width})
	}
	return y*b.width + x
}

// PutGood stores a valid sample.
func (b *Buffer) PutGood(x, y int, v float64) {
	b.cells[b.index(x, y)] = Value{OK: true, Value: v}
}

// PutBad marks a cell as missing.
func (b *Buffer) PutBad(x, y int) {
	b.cells[b.index(x, y)] = Value{}
}

func (b *Buffer) Width() int       { return b.width }
func (b *Buffer) NGoodNeeded() int { return b.ngood }

// Wm1o2 is (width-1)/2, the offset of the centre cell.
func (b *Buffer) Wm1o2() int { return b.wm1o2 }

// Cell returns the stored value of a cell.
func (b *Buffer) Cell(x, y int) Value {
	return b.cells[b.index(x, y)]
}

// goodValues returns the good samples, or nil when there are fewer than the
// threshold. A neighbourhood with no good samples has no value even when the
// threshold is 0. The slice is reused across calls.
func (b *Buffer) goodValues() []float64 {
	b.scratch = b.scratch[:0]
	for _, c := range b.cells {
		if c.OK {
			b.scratch = append(b.scratch, c.Value)
		}
	}
	if len(b.scratch) < b.ngood || len(b.scratch) == 0 {
		return nil
	}
	return b.scratch
}

func (b *Buffer) clone() Buffer {
	c := *b
	c.cells = append([]Value(nil), b.cells...)
	c.scratch = make([]float64, 0, len(b.cells))
	return c
}
