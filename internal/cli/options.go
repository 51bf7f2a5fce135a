package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// option is one configuration value. It becomes a flag on the first flag
// set, is shared with the others, and is bound to the viper key of the same
// name (so it can also come from a config file or METGRID_<NAME>).
type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func (a *App) options() []option {
	root := a.root.PersistentFlags()
	regrid, wwmca := a.regridCmd.Flags(), a.wwmcaCmd.Flags()
	plot, tc, tiles := a.plotCmd.Flags(), a.tcgridCmd.Flags(), a.tilesCmd.Flags()
	return []option{
		{
			name:       "config",
			usage:      "config specifies the configuration file location (TOML, YAML or JSON).",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{root},
		},
		{
			name:       "verbose",
			usage:      "verbose turns on debug logging.",
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{root},
		},
		{
			name:       "cpuprofile",
			usage:      "cpuprofile writes a CPU profile to the given file.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{root},
		},
		{
			name: "to_grid",
			usage: `to_grid is the target grid: a named grid (e.g. G212, wwmca_north),
a grid specification string (e.g. "latlon 360 181 -90 0 1 1") or a MET NetCDF file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{regrid, wwmca},
		},
		{
			name:       "method",
			usage:      "method is the interpolation method: nearest, average, min or max.",
			defaultVal: "nearest",
			flagsets:   []*pflag.FlagSet{regrid, wwmca, tiles},
		},
		{
			name:       "width",
			usage:      "width is the (odd) width of the interpolation neighbourhood in target grid points.",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{regrid, wwmca, tiles},
		},
		{
			name:       "vld_thresh",
			usage:      "vld_thresh is the fraction of good samples in the neighbourhood needed for a value.",
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{regrid, wwmca, tiles},
		},
		{
			name:       "concurrency",
			usage:      "concurrency is the number of parallel workers.",
			defaultVal: runtime.NumCPU(),
			flagsets:   []*pflag.FlagSet{regrid, wwmca, tiles},
		},
		{
			name:       "progress",
			usage:      "progress shows a progress bar on stderr.",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{regrid, wwmca},
		},
		{
			name:       "accum_policy",
			usage:      "accum_policy is how a textual accum_time attribute is read: hhmmss or hours.",
			defaultVal: "hhmmss",
			flagsets:   []*pflag.FlagSet{regrid, wwmca, plot, tiles},
		},
		{
			name:       "out_name",
			usage:      "out_name is the output variable name (default: the input variable name).",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{regrid, wwmca},
		},
		{
			name:       "max_minutes",
			usage:      "max_minutes rejects source pixels at least this old; 0 disables the check.",
			defaultVal: 120,
			flagsets:   []*pflag.FlagSet{wwmca},
		},
		{
			name:       "write_pixel_age",
			usage:      "write_pixel_age writes the pixel age in minutes instead of the data.",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{wwmca},
		},
		{
			name:       "age_var",
			usage:      "age_var is the name of the pixel age variable in the input files.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{wwmca},
		},
		{
			name:       "lat",
			usage:      "lat is the latitude of the storm centre.",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{tc},
		},
		{
			name:       "lon",
			usage:      "lon is the longitude of the storm centre, degrees east.",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{tc},
		},
		{
			name:       "range_n",
			usage:      "range_n is the number of range rings, including the centre.",
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{tc},
		},
		{
			name:       "azimuth_n",
			usage:      "azimuth_n is the number of azimuths.",
			defaultVal: 180,
			flagsets:   []*pflag.FlagSet{tc},
		},
		{
			name:       "range_max_km",
			usage:      "range_max_km is the maximum range in km.",
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{tc},
		},
		{
			name:       "rmw_nm",
			usage:      "rmw_nm is the radius of maximum winds in nautical miles; when set, range_max_km is rmw_scale*rmw_nm*range_n.",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{tc},
		},
		{
			name:       "rmw_scale",
			usage:      "rmw_scale scales the radius of maximum winds to one range step.",
			defaultVal: 0.2,
			flagsets:   []*pflag.FlagSet{tc},
		},
		{
			name:       "min",
			usage:      "min is the value at the bottom of the colour scale (min = max = 0 uses the data range).",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{plot, tiles},
		},
		{
			name:       "max",
			usage:      "max is the value at the top of the colour scale.",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{plot, tiles},
		},
		{
			name:       "ramp",
			usage:      "ramp is the colour ramp: color or grey.",
			defaultVal: "color",
			flagsets:   []*pflag.FlagSet{plot, tiles},
		},
		{
			name:       "scale",
			usage:      "scale is the number of image pixels per grid point.",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{plot},
		},
		{
			name:       "quality",
			usage:      "quality is the JPEG/WebP quality, 1-100.",
			defaultVal: 85,
			flagsets:   []*pflag.FlagSet{plot, tiles},
		},
		{
			name:       "min_zoom",
			usage:      "min_zoom is the lowest zoom level (-1: six levels below max_zoom).",
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{tiles},
		},
		{
			name:       "max_zoom",
			usage:      "max_zoom is the highest zoom level (-1: from the source grid spacing).",
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{tiles},
		},
		{
			name:       "tile_size",
			usage:      "tile_size is the tile edge in pixels.",
			defaultVal: 256,
			flagsets:   []*pflag.FlagSet{tiles},
		},
		{
			name:       "tile_format",
			usage:      "tile_format is the tile encoding: png, jpeg, webp or terrarium.",
			defaultVal: "png",
			flagsets:   []*pflag.FlagSet{tiles},
		},
	}
}

// bindOptions creates the flags and binds them to a.cfg.
func (a *App) bindOptions() {
	for _, option := range a.options() {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic(fmt.Sprintf("cli: option %s has unsupported default type %T", option.name, v))
			}
			if err := a.cfg.BindPFlag(option.name, set.Lookup(option.name)); err != nil {
				panic(err)
			}
		}
	}
}

// The getters below convert with cast so that a malformed value from the
// environment or a config file is reported instead of read as zero.

func (a *App) getString(name string) string { return a.cfg.GetString(name) }

func (a *App) getBool(name string) (bool, error) {
	v, err := cast.ToBoolE(a.cfg.Get(name))
	if err != nil {
		return false, fmt.Errorf("option %s: %w", name, err)
	}
	return v, nil
}

func (a *App) getInt(name string) (int, error) {
	v, err := cast.ToIntE(a.cfg.Get(name))
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", name, err)
	}
	return v, nil
}

func (a *App) getFloat(name string) (float64, error) {
	v, err := cast.ToFloat64E(a.cfg.Get(name))
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", name, err)
	}
	return v, nil
}
