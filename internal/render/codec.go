// Package render turns data planes into quick-look images: a colour-ramped
// picture for looking at, or a terrarium-encoded PNG that keeps the values.
package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"
)

// Format is an output image format.
type Format string

const (
	FormatPNG       Format = "png"
	FormatJPEG      Format = "jpeg"
	FormatWebP      Format = "webp"
	FormatTerrarium Format = "terrarium" // PNG with values packed into RGB
)

// ParseFormat accepts a format name ("jpg" is an alias for jpeg).
func ParseFormat(s string) (Format, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "png", "webp", "terrarium":
		return Format(f), nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("render: unsupported image format %q (supported: png, jpeg, webp, terrarium)", s)
}

// FormatForPath returns the format implied by the extension of path. A
// ".terrarium.png" suffix selects the terrarium encoding.
func FormatForPath(path string) (Format, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".terrarium.png") {
		return FormatTerrarium, nil
	}
	ext := filepath.Ext(lower)
	if ext == "" {
		return "", fmt.Errorf("render: %s has no extension to infer the image format from", path)
	}
	return ParseFormat(ext[1:])
}

func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTerrarium:
		return ".terrarium.png"
	}
	return "." + string(f)
}

// Encode writes img to w. quality applies to JPEG and lossy WebP and
// defaults to 85.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	if quality <= 0 {
		quality = 85
	}
	switch f {
	case FormatPNG, FormatTerrarium:
		enc := &png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatWebP:
		// Uses a system libwebp through purego when present, WASM otherwise.
		return webp.Encode(w, img, webp.Options{Quality: quality})
	}
	return fmt.Errorf("render: cannot encode format %q", f)
}

// Decode reads an image written by Encode.
func Decode(r io.Reader, f Format) (image.Image, error) {
	switch f {
	case FormatPNG, FormatTerrarium:
		return png.Decode(r)
	case FormatJPEG:
		return jpeg.Decode(r)
	case FormatWebP:
		return webp.Decode(r)
	}
	return nil, fmt.Errorf("render: cannot decode format %q", f)
}
