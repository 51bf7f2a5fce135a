package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pspoerri/metgrid/internal/grid"
	"github.com/pspoerri/metgrid/internal/rangeazi"
	"github.com/pspoerri/metgrid/internal/regrid"
)

func (a *App) newGridInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gridinfo <name|spec|file.nc>",
		Short: "Describe a grid",
		Long: `gridinfo prints the projection, dimensions, corner points and lat/lon
extent of a named grid, a grid specification string or the grid of a MET
NetCDF file. With no argument it lists the named grids.`,
		Args:              cobra.MaximumNArgs(1),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, n := range grid.CatalogNames() {
					fmt.Fprintln(w, n)
				}
				return nil
			}
			g, err := resolveGrid(args[0])
			if err != nil {
				return err
			}
			return printGridInfo(w, g)
		},
	}
}

func printGridInfo(w io.Writer, g grid.Grid) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	nx, ny := g.Nx(), g.Ny()
	fmt.Fprintf(tw, "name:\t%s\n", g.Name())
	fmt.Fprintf(tw, "projection:\t%s\n", g.Kind())
	fmt.Fprintf(tw, "size:\t%d x %d\n", nx, ny)
	fmt.Fprintf(tw, "definition:\t%s\n", g)

	for _, c := range []struct {
		label string
		x, y  int
	}{
		{"lower left", 0, 0},
		{"lower right", nx - 1, 0},
		{"upper right", nx - 1, ny - 1},
		{"upper left", 0, ny - 1},
	} {
		lat, lon := g.XYToLatLon(float64(c.x), float64(c.y))
		fmt.Fprintf(tw, "%s (%d, %d):\t%.4f N, %.4f E\n", c.label, c.x, c.y, lat, grid.RescaleLon(grid.ToEast(lon)))
	}

	b := g.Bounds()
	fmt.Fprintf(tw, "latitudes:\t[%.4f, %.4f]\n", b.Min.Y, b.Max.Y)
	fmt.Fprintf(tw, "longitudes:\t[%.4f, %.4f]\n", b.Min.X, b.Max.X)
	if g.Kind() == grid.TypeLatLon {
		fmt.Fprintf(tw, "global wrap:\t%t\n", g.WrapsLongitude())
	}
	fmt.Fprintf(tw, "hemisphere:\t%s\n", regrid.FindHemisphere(g, 1))
	return tw.Flush()
}

func (a *App) newTCGridCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tcgrid",
		Short: "Print a storm-centred range-azimuth grid",
		Long: `tcgrid prints the lat/lon of every point of a range-azimuth grid centred on
--lat/--lon. Azimuths are degrees clockwise from north. When --rmw_nm is set
the maximum range follows the radius of maximum winds.`,
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var d rangeazi.Data
			var err error
			if d.LatCenter, err = a.getFloat("lat"); err != nil {
				return err
			}
			lonEast, err := a.getFloat("lon")
			if err != nil {
				return err
			}
			d.LonCenter = grid.FromEast(lonEast)
			if d.RangeN, err = a.getInt("range_n"); err != nil {
				return err
			}
			if d.AzimuthN, err = a.getInt("azimuth_n"); err != nil {
				return err
			}
			if d.RangeMaxKm, err = a.getFloat("range_max_km"); err != nil {
				return err
			}
			rmw, err := a.getFloat("rmw_nm")
			if err != nil {
				return err
			}
			if rmw > 0 {
				scale, err := a.getFloat("rmw_scale")
				if err != nil {
					return err
				}
				d.RangeMaxKm = rangeazi.RangeMaxFromRMW(scale, rmw, d.RangeN)
			}

			g, err := rangeazi.New(d)
			if err != nil {
				return err
			}
			a.log.WithField("grid", g.String()).Debug("Range-azimuth grid")
			return printRangeAzimuth(cmd.OutOrStdout(), g)
		},
	}
}

func printRangeAzimuth(w io.Writer, g *rangeazi.Grid) error {
	lat, lon := g.LatLonArrays()
	d := g.Data()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "range_km\tazimuth_deg\tlat\tlon\t")
	for ir := 0; ir < d.RangeN; ir++ {
		for ia := 0; ia < d.AzimuthN; ia++ {
			i := ir*d.AzimuthN + ia
			fmt.Fprintf(tw, "%.3f\t%.3f\t%.5f\t%.5f\t\n",
				float64(ir)*g.RangeDeltaKm(), float64(ia)*g.AzimuthDeltaDeg(), lat[i], lon[i])
		}
	}
	return tw.Flush()
}
