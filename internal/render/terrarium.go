package render

import (
	"image"
	"image/color"
	"math"

	"github.com/pspoerri/metgrid/internal/dataplane"
)

// The terrarium encoding packs value+32768 into R*256 + G + B/256, giving a
// range of about [-32768, 32768) at a resolution of 1/256.

// ValueToTerrarium encodes v. Bad data and non-finite values become a
// transparent pixel.
func ValueToTerrarium(v float64) color.RGBA {
	if dataplane.IsBad(v) || math.IsInf(v, 0) {
		return color.RGBA{}
	}
	value := math.Max(0, math.Min(v+32768.0, 65535.996))

	r := clampByte(int(value / 256))
	rem := value - float64(r)*256.0
	g := clampByte(int(rem))
	b := clampByte(int((rem - float64(g)) * 256.0))
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// TerrariumToValue decodes c, returning dataplane.BadData for a transparent
// pixel.
func TerrariumToValue(c color.RGBA) float64 {
	if c.A == 0 {
		return dataplane.BadData
	}
	return float64(c.R)*256.0 + float64(c.G) + float64(c.B)/256.0 - 32768.0
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// TerrariumImage encodes every value of p, north up.
func TerrariumImage(p *dataplane.Plane) *image.RGBA {
	return paint(p, 1, ValueToTerrarium)
}

// PlaneFromTerrarium decodes an image made by TerrariumImage.
func PlaneFromTerrarium(img image.Image) *dataplane.Plane {
	b := img.Bounds()
	nx, ny := b.Dx(), b.Dy()
	p := dataplane.New(nx, ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+i, b.Min.Y+j)).(color.RGBA)
			p.Set(i, ny-1-j, TerrariumToValue(c))
		}
	}
	return p
}
