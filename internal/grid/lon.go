package grid

import "math"

const (
	degPerRad = 180.0 / math.Pi
	radPerDeg = math.Pi / 180.0
)

// FromEast converts an east-positive longitude (the convention used by
// NetCDF attributes, grid spec strings and most external tools) to the
// west-positive convention used by every projection in this package.
//
// Apply it exactly once at the boundary where a value enters the package.
func FromEast(lon float64) float64 { return -lon }

// ToEast converts an internal west-positive longitude back to east-positive.
func ToEast(lon float64) float64 { return -lon }

// RescaleLon reduces a longitude in degrees by whole turns until it lies in
// [-180, 180]. Values above 180 land in (-180, 180]; -180 itself is kept.
func RescaleLon(lon float64) float64 {
	if lon >= -180.0 && lon <= 180.0 {
		return lon
	}
	lon = math.Mod(lon, 360.0)
	if lon > 180.0 {
		lon -= 360.0
	} else if lon < -180.0 {
		lon += 360.0
	}
	return lon
}

// reduce maps an angle in degrees to [-180, 180).
func reduce(angle float64) float64 {
	return angle - 360.0*math.Floor(angle/360.0+0.5)
}

func sind(a float64) float64 { return math.Sin(a * radPerDeg) }
func cosd(a float64) float64 { return math.Cos(a * radPerDeg) }
func tand(a float64) float64 { return math.Tan(a * radPerDeg) }

func atand(x float64) float64     { return math.Atan(x) * degPerRad }
func asind(x float64) float64     { return math.Asin(x) * degPerRad }
func atan2d(y, x float64) float64 { return math.Atan2(y, x) * degPerRad }
