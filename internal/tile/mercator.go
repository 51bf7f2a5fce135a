// Package tile cuts a gridded field into web-mercator map tiles. A Tile is
// itself a regrid target, so every tile is produced by the same regridder
// that serves fixed grids, then rendered and handed to a tile writer.
package tile

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/pspoerri/metgrid/internal/grid"
)

// MaxLat is the latitude limit of the web-mercator square.
const MaxLat = 85.05112877980659

// DefaultSize is the usual web map tile edge in pixels.
const DefaultSize = 256

// Tile is tile X/Y at zoom Z of Size x Size pixels. As a grid, pixel (0, 0)
// is the south-west corner so that it maps like the other grids; image row 0
// is the northern edge.
type Tile struct {
	Z, X, Y int
	Size    int
}

func (t Tile) Nx() int { return t.Size }
func (t Tile) Ny() int { return t.Size }

// world is the number of pixels around the equator at this zoom.
func (t Tile) world() float64 {
	return float64(t.Size) * math.Exp2(float64(t.Z))
}

// XYToLatLon returns the centre of pixel (x, y). lon is west-positive.
func (t Tile) XYToLatLon(x, y float64) (lat, lon float64) {
	w := t.world()
	px := float64(t.X*t.Size) + x + 0.5
	py := float64((t.Y+1)*t.Size) - (y + 0.5)
	return pixelLat(py / w), grid.FromEast(px/w*360.0 - 180.0)
}

// LatLonToXY is the inverse of XYToLatLon. Latitudes are clamped to MaxLat.
func (t Tile) LatLonToXY(lat, lon float64) (x, y float64) {
	w := t.world()
	px := (grid.RescaleLon(grid.ToEast(lon)) + 180.0) / 360.0 * w
	py := mercatorY(lat) * w
	return px - float64(t.X*t.Size) - 0.5, float64((t.Y+1)*t.Size) - py - 0.5
}

// Bounds returns the lon/lat extent of the tile (X = east longitude).
func (t Tile) Bounds() *geom.Bounds {
	n := math.Exp2(float64(t.Z))
	return &geom.Bounds{
		Min: geom.Point{X: float64(t.X)/n*360.0 - 180.0, Y: pixelLat(float64(t.Y+1) / n)},
		Max: geom.Point{X: float64(t.X+1)/n*360.0 - 180.0, Y: pixelLat(float64(t.Y) / n)},
	}
}

// mercatorY maps a latitude to [0, 1], 0 at the northern edge.
func mercatorY(lat float64) float64 {
	lat = math.Max(-MaxLat, math.Min(MaxLat, lat))
	r := lat * math.Pi / 180.0
	return (1.0 - math.Log(math.Tan(r)+1.0/math.Cos(r))/math.Pi) / 2.0
}

// pixelLat is the inverse of mercatorY.
func pixelLat(v float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1.0-2.0*v))) * 180.0 / math.Pi
}

// At returns the tile containing east longitude lonE in [-180, 180] and
// latitude lat. Points off the map are clamped to the edge tiles.
func At(z int, lat, lonE float64) (x, y int) {
	n := math.Exp2(float64(z))
	maxTile := int(n) - 1
	x = int(math.Floor((lonE + 180.0) / 360.0 * n))
	y = int(math.Floor(mercatorY(lat) * n))
	return max(0, min(x, maxTile)), max(0, min(y, maxTile))
}

// Cover returns the tiles at zoom z that intersect b (X = east longitude).
// Tiles are ordered north to south, west to east.
func Cover(z, size int, b *geom.Bounds) []Tile {
	minX, minY := At(z, b.Max.Y, b.Min.X)
	maxX, maxY := At(z, b.Min.Y, b.Max.X)
	var tiles []Tile
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			tiles = append(tiles, Tile{Z: z, X: x, Y: y, Size: size})
		}
	}
	return tiles
}
