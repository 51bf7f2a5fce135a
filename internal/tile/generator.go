package tile

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/metgrid/internal/dataplane"
	"github.com/pspoerri/metgrid/internal/grid"
	"github.com/pspoerri/metgrid/internal/pmtiles"
	"github.com/pspoerri/metgrid/internal/regrid"
	"github.com/pspoerri/metgrid/internal/render"
)

// Config holds tile generation settings.
type Config struct {
	MinZoom     int
	MaxZoom     int
	Size        int
	Concurrency int

	// Regrid controls how source pixels are sampled into each tile.
	// Its Concurrency, Progress and SingleSource fields are ignored.
	Regrid regrid.Config

	Format  render.Format
	Quality int
	// Render sets the colour scale for image formats. When Min and Max are
	// both zero the range of the whole source plane is used, so every tile
	// shares one scale.
	Render render.Options

	Log logrus.FieldLogger
}

// Stats holds generation counts.
type Stats struct {
	Tiles      int64
	EmptyTiles int64
	Bytes      int64
}

// Writer receives encoded tiles. *pmtiles.Writer implements it.
type Writer interface {
	WriteTile(z, x, y int, data []byte) error
}

// TileType returns the archive tile type for an image format.
func TileType(f render.Format) uint8 {
	switch f {
	case render.FormatPNG, render.FormatTerrarium:
		return pmtiles.TileTypePNG
	case render.FormatJPEG:
		return pmtiles.TileTypeJPEG
	case render.FormatWebP:
		return pmtiles.TileTypeWebP
	}
	return pmtiles.TileTypeUnknown
}

// Generate renders data on src into every tile of every zoom level in
// [MinZoom, MaxZoom] that intersects src, and writes the non-empty ones.
func Generate(ctx context.Context, cfg Config, src grid.Grid, data *dataplane.Plane, w Writer) (Stats, error) {
	if cfg.MinZoom < 0 || cfg.MaxZoom < cfg.MinZoom || cfg.MaxZoom > 24 {
		return Stats{}, fmt.Errorf("tile: zoom range [%d, %d] not within [0, 24]", cfg.MinZoom, cfg.MaxZoom)
	}
	if TileType(cfg.Format) == pmtiles.TileTypeUnknown {
		return Stats{}, fmt.Errorf("tile: unsupported tile format %q", cfg.Format)
	}
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Render.Min == 0 && cfg.Render.Max == 0 {
		cfg.Render.Min, cfg.Render.Max, _ = data.Range()
	}
	rc := cfg.Regrid
	rc.Concurrency = 1
	rc.Progress = false
	rc.Log = log

	bounds := src.Bounds()
	var tileCount, emptyCount, totalBytes atomic.Int64

	for z := cfg.MinZoom; z <= cfg.MaxZoom; z++ {
		tiles := Cover(z, cfg.Size, bounds)
		log.WithFields(logrus.Fields{"zoom": z, "tiles": len(tiles)}).Debug("Generating zoom level")

		jobs := make(chan Tile, cfg.Concurrency*2)
		errCh := make(chan error, 1)
		fail := func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}

		var wg sync.WaitGroup
		for i := 0; i < cfg.Concurrency; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var buf bytes.Buffer
				for t := range jobs {
					p, err := regrid.Plane(ctx, src, data, t, rc)
					if err != nil {
						fail(fmt.Errorf("tile %d/%d/%d: %w", t.Z, t.X, t.Y, err))
						return
					}
					if p.CountBad() == t.Size*t.Size {
						emptyCount.Add(1)
						continue
					}

					buf.Reset()
					if err := encode(&buf, p, cfg); err != nil {
						fail(fmt.Errorf("encoding tile %d/%d/%d: %w", t.Z, t.X, t.Y, err))
						return
					}
					if err := w.WriteTile(t.Z, t.X, t.Y, bytes.Clone(buf.Bytes())); err != nil {
						fail(fmt.Errorf("writing tile %d/%d/%d: %w", t.Z, t.X, t.Y, err))
						return
					}
					tileCount.Add(1)
					totalBytes.Add(int64(buf.Len()))
				}
			}()
		}

	feed:
		for _, t := range tiles {
			select {
			case jobs <- t:
			case <-ctx.Done():
				break feed
			case err := <-errCh:
				// Put it back for the check below.
				fail(err)
				break feed
			}
		}
		close(jobs)
		wg.Wait()

		select {
		case err := <-errCh:
			return Stats{}, err
		default:
		}
		if err := ctx.Err(); err != nil {
			return Stats{}, fmt.Errorf("tile: %w", err)
		}
		log.WithFields(logrus.Fields{"zoom": z, "written": tileCount.Load()}).Debug("Zoom level done")
	}

	return Stats{
		Tiles:      tileCount.Load(),
		EmptyTiles: emptyCount.Load(),
		Bytes:      totalBytes.Load(),
	}, nil
}

func encode(buf *bytes.Buffer, p *dataplane.Plane, cfg Config) error {
	if cfg.Format == render.FormatTerrarium {
		return render.Encode(buf, render.TerrariumImage(p), cfg.Format, cfg.Quality)
	}
	opts := cfg.Render
	opts.Scale = 1
	return render.Encode(buf, render.Image(p, opts), cfg.Format, cfg.Quality)
}
