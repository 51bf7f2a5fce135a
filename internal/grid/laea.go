package grid

import (
	"fmt"
	"math"
)

// laeaGrid is a Lambert Azimuthal Equal-Area projection on a sphere or an
// ellipsoid of revolution, after Snyder, "Map Projections: A Working Manual"
// (USGS PP 1395), chapter 24. Plane coordinates (u, v) are in km and reach
// pixels through an affine map.
type laeaGrid struct {
	d      any // LaeaData or LaeaCornerData
	corner bool
	nm     string
	nX, nY int

	a, e           float64 // semi-major axis (km), eccentricity
	qp             float64
	latStd, lonCen float64
	beta1, rq, dd  float64

	aff affine
}

func (s Spheroid) axes() (a, e float64) {
	if s.RadiusKm > 0 {
		return s.RadiusKm, 0
	}
	a = s.EquatorialKm
	if s.PolarKm < a {
		e = math.Sqrt(1.0 - (s.PolarKm*s.PolarKm)/(a*a))
	}
	return a, e
}

func newLaeaBase(sph Spheroid, latStd, lonCen float64, nx, ny int) *laeaGrid {
	g := &laeaGrid{nX: nx, nY: ny, latStd: latStd, lonCen: lonCen}
	g.a, g.e = sph.axes()
	g.qp = g.q(90.0)
	g.beta1 = g.beta(latStd)
	// eqs 3-13, 24-20
	g.rq = g.a * math.Sqrt(0.5*g.qp)
	g.dd = (g.a * g.m(latStd)) / (g.rq * cosd(g.beta1))
	return g
}

func newLaea(d LaeaData) *laeaGrid {
	g := newLaeaBase(d.Spheroid, d.LatStd, d.LonCen, d.Nx, d.Ny)
	g.d, g.nm = d, d.Name
	u0, v0 := g.snyderForward(d.LatFirst, d.LonFirst)
	g.aff = scaleAffine(u0, v0, d.DxKm, d.DyKm)
	return g
}

func newLaeaCorner(d LaeaCornerData) *laeaGrid {
	g := newLaeaBase(d.Spheroid, d.LatStd, d.LonCen, d.Nx, d.Ny)
	g.d, g.nm, g.corner = d, d.Name, true
	llU, llV := g.snyderForward(d.LatLL, d.LonLL)
	lrU, lrV := g.snyderForward(d.LatLR, d.LonLR)
	ulU, ulV := g.snyderForward(d.LatUL, d.LonUL)
	g.aff = threePointAffine(llU, llV, lrU, lrV, ulU, ulV, d.Nx, d.Ny)
	return g
}

// q is Snyder's eq 3-12. On a sphere it reduces to 2 sin(lat).
func (g *laeaGrid) q(lat float64) float64 {
	s := sind(lat)
	if g.e == 0 {
		return 2.0 * s
	}
	e := g.e
	es := e * s
	return (1.0 - e*e) * (s/(1.0-es*es) - (1.0/(2.0*e))*math.Log((1.0-es)/(1.0+es)))
}

// beta is the authalic latitude in degrees (eq 3-11).
func (g *laeaGrid) beta(lat float64) float64 {
	r := g.q(lat) / g.qp
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return asind(r)
}

// m is Snyder's eq 14-15.
func (g *laeaGrid) m(lat float64) float64 {
	es := g.e * sind(lat)
	return cosd(lat) / math.Sqrt(1.0-es*es)
}

// snyderForward returns plane coordinates in km. lon is west-positive.
func (g *laeaGrid) snyderForward(lat, lon float64) (u, v float64) {
	lambda := -lon
	lambda0 := -g.lonCen
	delta := lambda - lambda0

	beta := g.beta(lat)

	b := 1.0 + sind(g.beta1)*sind(beta) + cosd(g.beta1)*cosd(beta)*cosd(delta)
	b = g.rq * math.Sqrt(2.0/b) // eq 24-19

	// eqs 24-17, 24-18
	u = b * g.dd * cosd(beta) * sind(delta)
	v = (b / g.dd) * (cosd(g.beta1)*sind(beta) - sind(g.beta1)*cosd(beta)*cosd(delta))
	return
}

func (g *laeaGrid) snyderInverse(u, v float64) (lat, lon float64) {
	uu := u / g.dd
	vv := g.dd * v
	rho := math.Hypot(uu, vv) // eq 24-28
	if rho < 1.0e-9 {
		return g.latStd, g.lonCen
	}

	ce := 2.0 * asind(math.Min(1.0, rho/(2.0*g.rq))) // eq 24-29
	beta := asind(cosd(ce)*sind(g.beta1) + (g.dd*v/rho)*sind(ce)*cosd(g.beta1))

	num := u * sind(ce)
	den := g.dd*rho*cosd(g.beta1)*cosd(ce) - g.dd*g.dd*v*sind(g.beta1)*sind(ce)
	lon = -(-g.lonCen + atan2d(num, den)) // eq 24-26
	lon = reduce(lon)

	e2 := g.e * g.e
	e4 := e2 * e2
	e6 := e2 * e4
	t2 := e2/3.0 + (31.0*e4)/180.0 + (517.0*e6)/5040.0
	t4 := (23.0*e4)/360.0 + (251.0*e6)/3780.0
	t6 := (761.0 * e6) / 45360.0
	cor := t2*sind(2.0*beta) + t4*sind(4.0*beta) + t6*sind(6.0*beta) // eq 3-18

	lat = beta + cor*degPerRad
	return
}

func (g *laeaGrid) kind() string { return TypeLaea }
func (g *laeaGrid) name() string { return g.nm }
func (g *laeaGrid) nx() int      { return g.nX }
func (g *laeaGrid) ny() int      { return g.nY }
func (g *laeaGrid) data() any    { return g.d }

func (g *laeaGrid) latLonToXY(lat, lon float64) (x, y float64) {
	u, v := g.snyderForward(lat, lon)
	return g.aff.forward(u, v)
}

func (g *laeaGrid) xyToLatLon(x, y float64) (lat, lon float64) {
	u, v := g.aff.reverse(x, y)
	return g.snyderInverse(u, v)
}

func (g *laeaGrid) serialize() string {
	form := "first-point"
	if g.corner {
		form = "corner"
	}
	return fmt.Sprintf("Projection: Lambert Azimuthal Equal Area (%s) Nx: %d Ny: %d a_km: %.3f e: %.6f standard_lat: %.3f central_lon: %.3f",
		form, g.nX, g.nY, g.a, g.e, g.latStd, g.lonCen)
}
