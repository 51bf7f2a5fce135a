package regrid

import (
	"github.com/pspoerri/metgrid/internal/dataplane"
	"github.com/pspoerri/metgrid/internal/interp"
)

// cell computes target pixels for one worker. It owns its interpolator.
type cell struct {
	r     *Regridder
	in    interp.Interpolator
	wm1o2 int
	step  float64
}

func (r *Regridder) newCell() *cell {
	c := &cell{r: r, in: r.proto.Clone(), wm1o2: (r.cfg.Width - 1) / 2}
	if c.wm1o2 > 0 {
		c.step = 1.0 / float64(c.wm1o2)
	}
	return c
}

// value returns the output for target pixel (x, y), or dataplane.BadData.
func (c *cell) value(x, y int) float64 {
	if c.wm1o2 == 0 {
		v, ok := c.sample(float64(x), float64(y))
		if !ok {
			return dataplane.BadData
		}
		return v
	}

	w := c.wm1o2
	for xx := -w; xx <= w; xx++ {
		for yy := -w; yy <= w; yy++ {
			v, ok := c.sample(float64(x)+c.step*float64(xx), float64(y)+c.step*float64(yy))
			if ok {
				c.in.PutGood(xx+w, yy+w, v)
			} else {
				c.in.PutBad(xx+w, yy+w)
			}
		}
	}
	iv := c.in.Interpolate(0, 0)
	if !iv.OK {
		return dataplane.BadData
	}
	return iv.Value
}

// sample resolves a (possibly fractional) target position against the source
// for its hemisphere and tests the nearest source pixel.
func (c *cell) sample(tx, ty float64) (float64, bool) {
	lat, lon := c.r.target.XYToLatLon(tx, ty)

	src := c.r.north
	switch {
	case c.r.cfg.SingleSource:
	case c.r.hemi == South:
		src = c.r.south
	case c.r.hemi == Both && lat < 0:
		src = c.r.south
	}
	if src == nil {
		return 0, false
	}

	sx, sy := src.Grid.LatLonToXY(lat, lon)
	ix, iy := nint(sx), nint(sy)
	if !src.Data.InBounds(ix, iy) {
		return 0, false
	}
	v := src.Data.Get(ix, iy)
	if dataplane.IsBad(v) {
		return 0, false
	}

	if src.Age != nil {
		age := src.Age.Get(ix, iy)
		if dataplane.IsBad(age) {
			return 0, false
		}
		if max := c.r.cfg.MaxMinutes; max > 0 && age >= float64(max) {
			return 0, false
		}
		if c.r.cfg.WritePixelAge {
			return age, true
		}
	} else if c.r.cfg.WritePixelAge {
		return 0, true
	}
	return v, true
}
