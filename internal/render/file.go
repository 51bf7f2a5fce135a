package render

import (
	"bufio"
	"fmt"
	"image"
	"os"

	"github.com/pspoerri/metgrid/internal/dataplane"
)

// WriteFile renders p to path in the format implied by the extension.
// Terrarium output ignores the ramp options.
func WriteFile(path string, p *dataplane.Plane, opts Options, quality int) error {
	f, err := FormatForPath(path)
	if err != nil {
		return err
	}
	var img image.Image
	if f == FormatTerrarium {
		img = TerrariumImage(p)
	} else {
		img = Image(p, opts)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: creating %s: %w", path, err)
	}
	w := bufio.NewWriter(out)
	if err := Encode(w, img, f, quality); err != nil {
		out.Close()
		return fmt.Errorf("render: encoding %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("render: writing %s: %w", path, err)
	}
	return out.Close()
}
