package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pspoerri/metgrid/internal/ncgrid"
	"github.com/pspoerri/metgrid/internal/render"
)

func (a *App) newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot <in.nc> <var> <out.(png|jpg|webp)>",
		Short: "Render a field to a quick-look image",
		Long: `plot paints variable <var> of a MET NetCDF file through a colour ramp, north
up, one grid point per --scale x --scale pixels. Missing data is transparent in
PNG and WebP output. An output name ending in .terrarium.png stores the values
themselves in terrarium encoding.`,
		Args:              cobra.ExactArgs(3),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, variable, out := args[0], args[1], args[2]
			if _, err := render.FormatForPath(out); err != nil {
				return err
			}
			opts, quality, err := a.renderOptions()
			if err != nil {
				return err
			}
			policy, err := ncgrid.ParseAccumPolicy(a.getString("accum_policy"))
			if err != nil {
				return err
			}

			p, g, err := ncgrid.ReadPlane(in, variable, policy)
			if err != nil {
				return err
			}
			a.log.WithField("grid", g.String()).Debug("Read field")
			if err := render.WriteFile(out, p, opts, quality); err != nil {
				return err
			}
			a.log.WithField("file", out).Info("Wrote image")
			return nil
		},
	}
}

func (a *App) renderOptions() (render.Options, int, error) {
	var opts render.Options
	var err error
	if opts.Min, err = a.getFloat("min"); err != nil {
		return opts, 0, err
	}
	if opts.Max, err = a.getFloat("max"); err != nil {
		return opts, 0, err
	}
	if opts.Scale, err = a.getInt("scale"); err != nil {
		return opts, 0, err
	}
	switch r := a.getString("ramp"); r {
	case "color", "colour", "":
		opts.Ramp = render.DefaultRamp
	case "grey", "gray":
		opts.Ramp = render.GreyRamp
	default:
		return opts, 0, fmt.Errorf("ramp %q (supported: color, grey)", r)
	}
	quality, err := a.getInt("quality")
	return opts, quality, err
}
