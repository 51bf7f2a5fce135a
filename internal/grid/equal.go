package grid

import "math"

// LooseTol is the tolerance used when comparing real-valued grid parameters.
const LooseTol = 1.0e-5

func eqf(a, b float64) bool { return math.Abs(a-b) < LooseTol }

// eqLon compares two longitudes modulo 360.
func eqLon(a, b float64) bool { return math.Abs(reduce(RescaleLon(a)-RescaleLon(b))) < LooseTol }

func (g *latLonGrid) equal(o projection) bool {
	h, ok := o.(*latLonGrid)
	if !ok {
		return false
	}
	a, b := g.d, h.d
	return a.Nlat == b.Nlat && a.Nlon == b.Nlon &&
		eqf(a.LatLL, b.LatLL) && eqLon(a.LonLL, b.LonLL) &&
		eqf(a.DeltaLat, b.DeltaLat) && eqf(a.DeltaLon, b.DeltaLon)
}

func (g *mercatorGrid) equal(o projection) bool {
	h, ok := o.(*mercatorGrid)
	if !ok {
		return false
	}
	a, b := g.d, h.d
	return a.Nx == b.Nx && a.Ny == b.Ny &&
		eqf(a.LatLL, b.LatLL) && eqLon(a.LonLL, b.LonLL) &&
		eqf(a.LatUR, b.LatUR) && eqLon(a.LonUR, b.LonUR)
}

func (g *lambertGrid) equal(o projection) bool {
	h, ok := o.(*lambertGrid)
	if !ok {
		return false
	}
	a, b := g.d, h.d
	return a.Nx == b.Nx && a.Ny == b.Ny && g.south == h.south &&
		eqf(a.ScaleLat1, b.ScaleLat1) && eqf(a.ScaleLat2, b.ScaleLat2) &&
		eqf(a.LatPin, b.LatPin) && eqLon(a.LonPin, b.LonPin) &&
		eqf(a.XPin, b.XPin) && eqf(a.YPin, b.YPin) &&
		eqLon(a.LonOrient, b.LonOrient) &&
		eqf(a.DKm, b.DKm) && eqf(a.RKm, b.RKm)
}

func (g *stereographicGrid) equal(o projection) bool {
	h, ok := o.(*stereographicGrid)
	if !ok {
		return false
	}
	a, b := g.d, h.d
	return a.Nx == b.Nx && a.Ny == b.Ny && a.Hemisphere == b.Hemisphere &&
		eqf(a.ScaleLat, b.ScaleLat) &&
		eqf(a.LatPin, b.LatPin) && eqLon(a.LonPin, b.LonPin) &&
		eqf(a.XPin, b.XPin) && eqf(a.YPin, b.YPin) &&
		eqLon(a.LonOrient, b.LonOrient) &&
		eqf(a.DKm, b.DKm) && eqf(a.RKm, b.RKm)
}

// Two LAEA grids are equal when they were defined in the same form (first
// point or corners) and share the spheroid, the projection centre and the
// pixel mapping.
func (g *laeaGrid) equal(o projection) bool {
	h, ok := o.(*laeaGrid)
	if !ok {
		return false
	}
	if g.nX != h.nX || g.nY != h.nY || g.corner != h.corner {
		return false
	}
	if !eqf(g.a, h.a) || !eqf(g.e, h.e) || !eqf(g.latStd, h.latStd) || !eqLon(g.lonCen, h.lonCen) {
		return false
	}
	return g.aff.equal(h.aff)
}
