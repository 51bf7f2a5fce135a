package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pspoerri/metgrid/internal/grid"
	"github.com/pspoerri/metgrid/internal/ncgrid"
	"github.com/pspoerri/metgrid/internal/pmtiles"
	"github.com/pspoerri/metgrid/internal/render"
	"github.com/pspoerri/metgrid/internal/tile"
)

func (a *App) newTilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiles <in.nc> <var> <out.pmtiles>",
		Short: "Export a field as a PMTiles archive of web map tiles",
		Long: `tiles resamples variable <var> of a MET NetCDF file onto web-mercator tiles
and writes them to a PMTiles v3 archive. Tiles use one colour scale across all
zoom levels; --tile_format terrarium stores the values themselves. Without
--max_zoom the deepest zoom matches the source grid spacing.`,
		Args:              cobra.ExactArgs(3),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, variable, out := args[0], args[1], args[2]
			cfg, err := a.tileConfig()
			if err != nil {
				return err
			}
			policy, err := ncgrid.ParseAccumPolicy(a.getString("accum_policy"))
			if err != nil {
				return err
			}

			data, src, err := ncgrid.ReadPlane(in, variable, policy)
			if err != nil {
				return err
			}
			if cfg.MaxZoom < 0 || cfg.MinZoom < 0 {
				km, lat := tile.Spacing(src)
				lo, hi := tile.AutoZoomRange(km, lat, cfg.Size)
				if cfg.MaxZoom < 0 {
					cfg.MaxZoom = hi
				}
				if cfg.MinZoom < 0 {
					cfg.MinZoom = min(lo, cfg.MaxZoom)
				}
				a.log.WithFields(logrus.Fields{"spacing_km": km, "min_zoom": cfg.MinZoom, "max_zoom": cfg.MaxZoom}).Debug("Picked zoom range")
			}

			extra := map[string]any{"grid": src.String(), "encoding": string(cfg.Format)}
			if !data.ValidTime.IsZero() {
				extra["valid_time"] = data.ValidTime.UTC().Format(time.RFC3339)
			}
			w := pmtiles.NewWriter(pmtiles.Options{
				MinZoom:     cfg.MinZoom,
				MaxZoom:     cfg.MaxZoom,
				Bounds:      src.Bounds(),
				TileType:    tile.TileType(cfg.Format),
				Name:        variable,
				Description: fmt.Sprintf("%s regridded from %s", variable, src.Kind()),
				Extra:       extra,
			})
			a.log.WithFields(logrus.Fields{
				"file": in, "var": variable, "grid": src.Kind(), "zoom": fmt.Sprintf("%d-%d", cfg.MinZoom, cfg.MaxZoom),
			}).Info("Generating tiles")

			stats, err := tile.Generate(cmd.Context(), cfg, src, data, w)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"file": out, "tiles": stats.Tiles, "empty": stats.EmptyTiles, "bytes": stats.Bytes,
			}).Info("Writing archive")
			return w.WriteFile(out)
		},
	}
}

func (a *App) tileConfig() (tile.Config, error) {
	var cfg tile.Config
	var err error
	if cfg.Regrid, err = a.samplingConfig(); err != nil {
		return cfg, err
	}
	cfg.Concurrency = cfg.Regrid.Concurrency
	if cfg.Format, err = render.ParseFormat(a.getString("tile_format")); err != nil {
		return cfg, err
	}
	if cfg.MinZoom, err = a.getInt("min_zoom"); err != nil {
		return cfg, err
	}
	if cfg.MaxZoom, err = a.getInt("max_zoom"); err != nil {
		return cfg, err
	}
	if cfg.Size, err = a.getInt("tile_size"); err != nil {
		return cfg, err
	}
	if cfg.Size < 1 {
		return cfg, fmt.Errorf("tile_size %d: %w", cfg.Size, grid.ErrInvalidParameter)
	}
	if cfg.Render, cfg.Quality, err = a.renderOptions(); err != nil {
		return cfg, err
	}
	cfg.Log = a.log
	return cfg, nil
}
