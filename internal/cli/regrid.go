package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pspoerri/metgrid/internal/dataplane"
	"github.com/pspoerri/metgrid/internal/grid"
	"github.com/pspoerri/metgrid/internal/interp"
	"github.com/pspoerri/metgrid/internal/ncgrid"
	"github.com/pspoerri/metgrid/internal/regrid"
)

// resolveGrid accepts a catalog name, a grid specification string or the
// path of a MET NetCDF file.
func resolveGrid(s string) (grid.Grid, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return grid.Grid{}, fmt.Errorf("no grid given")
	}
	if strings.HasSuffix(strings.ToLower(s), ".nc") {
		if _, err := os.Stat(s); err == nil {
			return ncgrid.ReadGridFile(s)
		}
	}
	return grid.Resolve(s)
}

// samplingConfig reads the interpolation options. A bad method, width or
// threshold is reported here, before any input is read.
func (a *App) samplingConfig() (regrid.Config, error) {
	var cfg regrid.Config
	var err error
	if cfg.Method, err = interp.ParseMethod(a.getString("method")); err != nil {
		return cfg, err
	}
	if cfg.Width, err = a.getInt("width"); err != nil {
		return cfg, err
	}
	if cfg.VldThresh, err = a.getFloat("vld_thresh"); err != nil {
		return cfg, err
	}
	if cfg.Concurrency, err = a.getInt("concurrency"); err != nil {
		return cfg, err
	}
	if _, err := interp.New(cfg.Method, cfg.Width, cfg.VldThresh); err != nil {
		return cfg, err
	}
	cfg.Log = a.log
	return cfg, nil
}

// regridConfig reads the options shared by regrid and wwmca.
func (a *App) regridConfig() (regrid.Config, grid.Grid, ncgrid.AccumPolicy, error) {
	target, err := resolveGrid(a.getString("to_grid"))
	if err != nil {
		return regrid.Config{}, grid.Grid{}, 0, fmt.Errorf("to_grid: %w", err)
	}
	policy, err := ncgrid.ParseAccumPolicy(a.getString("accum_policy"))
	if err != nil {
		return regrid.Config{}, grid.Grid{}, 0, err
	}
	cfg, err := a.samplingConfig()
	if err != nil {
		return cfg, grid.Grid{}, 0, err
	}
	if cfg.Progress, err = a.getBool("progress"); err != nil {
		return cfg, grid.Grid{}, 0, err
	}
	return cfg, target, policy, nil
}

func (a *App) outName(in string) string {
	if n := a.getString("out_name"); n != "" {
		return n
	}
	return in
}

func (a *App) newRegridCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regrid <in.nc> <var> <out.nc>",
		Short: "Regrid one field onto another grid",
		Long: `regrid reads variable <var> from a MET NetCDF file, resamples it onto the
grid named by --to_grid and writes the result to a new MET NetCDF file.`,
		Args:              cobra.ExactArgs(3),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, variable, out := args[0], args[1], args[2]
			cfg, target, policy, err := a.regridConfig()
			if err != nil {
				return err
			}

			data, src, err := ncgrid.ReadPlane(in, variable, policy)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"file": in, "var": variable, "from": src.Kind(), "to": target.Kind(),
			}).Info("Regridding")

			if src.Equal(target) {
				a.log.Debug("Source and target grids match, copying data")
				return ncgrid.WritePlane(out, a.outName(variable), data, target)
			}

			res, err := regrid.Plane(cmd.Context(), src, data, target, cfg)
			if err != nil {
				return err
			}
			a.logResult(res, out)
			return ncgrid.WritePlane(out, a.outName(variable), res, target)
		},
	}
}

func (a *App) newWWMCACmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wwmca <nh.nc> <sh.nc> <var> <out.nc>",
		Short: "Regrid a two-hemisphere field such as WWMCA cloud data",
		Long: `wwmca regrids a field delivered as separate northern and southern hemisphere
files onto --to_grid, stitching the hemispheres at the equator. Pass "-" for a
hemisphere that is not needed by the target grid.

Source pixels whose age (--age_var, minutes) is --max_minutes or more are
treated as missing. --write_pixel_age writes the age instead of the data.`,
		Args:              cobra.ExactArgs(4),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			nhPath, shPath, variable, out := args[0], args[1], args[2], args[3]
			cfg, target, policy, err := a.regridConfig()
			if err != nil {
				return err
			}
			if cfg.MaxMinutes, err = a.getInt("max_minutes"); err != nil {
				return err
			}
			if cfg.WritePixelAge, err = a.getBool("write_pixel_age"); err != nil {
				return err
			}
			ageVar := a.getString("age_var")
			if cfg.WritePixelAge && ageVar == "" {
				return fmt.Errorf("write_pixel_age needs age_var")
			}

			north, err := a.readSource(nhPath, variable, ageVar, policy)
			if err != nil {
				return err
			}
			south, err := a.readSource(shPath, variable, ageVar, policy)
			if err != nil {
				return err
			}

			r, err := regrid.New(cfg, target, north, south)
			if err != nil {
				return err
			}
			res, stats, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"good": stats.GoodCells, "bad": stats.BadCells, "hemisphere": r.Hemisphere(),
			}).Debug("WWMCA regrid stats")
			a.logResult(res, out)

			name := a.outName(variable)
			if cfg.WritePixelAge {
				name = a.outName(ageVar)
			}
			return ncgrid.WritePlane(out, name, res, target)
		},
	}
}

// readSource reads one hemisphere. "-" or "" means no file.
func (a *App) readSource(path, variable, ageVar string, policy ncgrid.AccumPolicy) (*regrid.Source, error) {
	if path == "" || path == "-" {
		return nil, nil
	}
	data, g, err := ncgrid.ReadPlane(path, variable, policy)
	if err != nil {
		return nil, err
	}
	src := &regrid.Source{Grid: g, Data: data}
	if ageVar != "" {
		age, ag, err := ncgrid.ReadPlane(path, ageVar, policy)
		if err != nil {
			return nil, err
		}
		if err := grid.CheckSame(g, ag); err != nil {
			return nil, err
		}
		src.Age = age
	}
	a.log.WithFields(logrus.Fields{"file": path, "grid": g.Name(), "kind": g.Kind()}).Debug("Read source")
	return src, nil
}

func (a *App) logResult(p *dataplane.Plane, out string) {
	fields := logrus.Fields{"file": out, "bad": p.CountBad(), "points": p.Nx() * p.Ny()}
	if lo, hi, ok := p.Range(); ok {
		fields["min"], fields["max"] = lo, hi
	}
	a.log.WithFields(fields).Info("Writing output")
}
