package grid

// affine maps projection-plane coordinates (u, v) to pixels:
//
//	x = m11*u + m12*v + bx
//	y = m21*u + m22*v + by
type affine struct {
	m11, m12 float64
	m21, m22 float64
	bx, by   float64
}

// scaleAffine maps (u0, v0) to pixel (0, 0) with spacings du, dv per pixel.
func scaleAffine(u0, v0, du, dv float64) affine {
	return affine{
		m11: 1.0 / du,
		m22: 1.0 / dv,
		bx:  -u0 / du,
		by:  -v0 / dv,
	}
}

// threePointAffine maps ll to pixel (0, 0), lr to (nx-1, 0) and ul to (0, ny-1).
func threePointAffine(llU, llV, lrU, lrV, ulU, ulV float64, nx, ny int) affine {
	// Plane vectors for one pixel step in x and in y.
	e1u, e1v := (lrU-llU)/float64(nx-1), (lrV-llV)/float64(nx-1)
	e2u, e2v := (ulU-llU)/float64(ny-1), (ulV-llV)/float64(ny-1)

	det := e1u*e2v - e1v*e2u
	a := affine{
		m11: e2v / det,
		m12: -e2u / det,
		m21: -e1v / det,
		m22: e1u / det,
	}
	a.bx = -(a.m11*llU + a.m12*llV)
	a.by = -(a.m21*llU + a.m22*llV)
	return a
}

func (a affine) forward(u, v float64) (x, y float64) {
	x = a.m11*u + a.m12*v + a.bx
	y = a.m21*u + a.m22*v + a.by
	return
}

func (a affine) reverse(x, y float64) (u, v float64) {
	det := a.m11*a.m22 - a.m12*a.m21
	dx, dy := x-a.bx, y-a.by
	u = (a.m22*dx - a.m12*dy) / det
	v = (a.m11*dy - a.m21*dx) / det
	return
}

func (a affine) equal(b affine) bool {
	return eqf(a.m11, b.m11) && eqf(a.m12, b.m12) &&
		eqf(a.m21, b.m21) && eqf(a.m22, b.m22) &&
		eqf(a.bx, b.bx) && eqf(a.by, b.by)
}
