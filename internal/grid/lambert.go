package grid

import (
	"fmt"
	"math"
)

// lambertGrid is a spherical Lambert Conformal Conic projection.
//
// In the northern case a point at radius r = tan(45 - lat/2)^n from the cone
// apex and angle theta = n*(lon_orient - lon) lands on pixel
//
//	x = Bx + alpha*r*sin(theta)
//	y = By - alpha*r*cos(theta)
//
// Southern grids are handled by reflecting latitude and theta.
type lambertGrid struct {
	d     LambertData
	south bool
	sign  float64 // +1 north, -1 south

	cone   float64
	alpha  float64
	bx, by float64
}

func newLambert(d LambertData) *lambertGrid {
	g := &lambertGrid{d: d, sign: 1}
	switch d.Hemisphere {
	case 'S':
		g.south = true
	case 0:
		g.south = d.ScaleLat1 < 0
	}
	if g.south {
		g.sign = -1
	}

	phi1 := g.sign * d.ScaleLat1
	phi2 := g.sign * d.ScaleLat2
	g.cone = lcCone(phi1, phi2)
	g.alpha = (-1.0 / lcDer(phi1, g.cone)) * (d.RKm / d.DKm)

	r0 := lcFunc(g.sign*d.LatPin, g.cone)
	theta0 := g.sign * g.cone * reduce(d.LonOrient-d.LonPin)
	g.bx = d.XPin - g.alpha*r0*sind(theta0)
	g.by = d.YPin + g.alpha*r0*cosd(theta0)
	return g
}

// lcCone returns the cone constant for standard parallels phi1, phi2 (degrees,
// northern hemisphere). Coincident parallels give the tangent cone sin(phi1).
func lcCone(phi1, phi2 float64) float64 {
	if math.Abs(phi1-phi2) < 1.0e-5 {
		return sind(phi1)
	}
	num := math.Log(cosd(phi1) / cosd(phi2))
	den := math.Log(tand(45.0-0.5*phi1) / tand(45.0-0.5*phi2))
	return num / den
}

func lcFunc(lat, cone float64) float64 {
	return math.Pow(tand(45.0-0.5*lat), cone)
}

// lcDer is d(lcFunc)/d(lat) with lat in radians.
func lcDer(lat, cone float64) float64 {
	return -(cone / cosd(lat)) * lcFunc(lat, cone)
}

func lcInvFunc(r, cone float64) float64 {
	return 90.0 - 2.0*atand(math.Pow(r, 1.0/cone))
}

func (g *lambertGrid) kind() string { return TypeLambert }
func (g *lambertGrid) name() string { return g.d.Name }
func (g *lambertGrid) nx() int      { return g.d.Nx }
func (g *lambertGrid) ny() int      { return g.d.Ny }
func (g *lambertGrid) data() any    { return g.d }

func (g *lambertGrid) latLonToXY(lat, lon float64) (x, y float64) {
	r := lcFunc(g.sign*lat, g.cone)
	theta := g.sign * g.cone * reduce(g.d.LonOrient-lon)
	x = g.bx + g.alpha*r*sind(theta)
	y = g.by - g.alpha*r*cosd(theta)
	return
}

func (g *lambertGrid) xyToLatLon(x, y float64) (lat, lon float64) {
	u := (x - g.bx) / g.alpha
	v := (y - g.by) / g.alpha
	r := math.Hypot(u, v)

	lat = g.sign * lcInvFunc(r, g.cone)

	var theta float64
	if r >= 1.0e-5 {
		theta = atan2d(u, -v) // not atan2d(v, u)
	}
	theta *= g.sign

	lon = reduce(g.d.LonOrient - theta/g.cone)
	return
}

func (g *lambertGrid) serialize() string {
	h := byte('N')
	if g.south {
		h = 'S'
	}
	return fmt.Sprintf("Projection: Lambert Conformal Nx: %d Ny: %d Hemisphere: %c Lon_orient: %.3f Bx: %.3f By: %.3f Alpha: %.4f Cone: %.4f",
		g.d.Nx, g.d.Ny, h, g.d.LonOrient, g.bx, g.by, g.alpha, g.cone)
}
