// Package cli implements the metgrid command line: a cobra command tree whose
// options are bound to viper, so every flag can also be set in a config file
// or through a METGRID_* environment variable.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildInfo is set via -ldflags at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// App is one metgrid command tree with its own configuration and logger.
type App struct {
	cfg   *viper.Viper
	log   *logrus.Logger
	build BuildInfo

	root      *cobra.Command
	regridCmd *cobra.Command
	wwmcaCmd  *cobra.Command
	infoCmd   *cobra.Command
	tcgridCmd *cobra.Command
	plotCmd   *cobra.Command
	tilesCmd  *cobra.Command

	profile *os.File
}

// New builds the command tree. Log output goes to stderr.
func New(build BuildInfo) *App {
	a := &App{
		cfg:   viper.New(),
		log:   logrus.New(),
		build: build,
	}
	a.log.SetOutput(os.Stderr)
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Set the prefix for configuration environment variables.
	a.cfg.SetEnvPrefix("METGRID")
	a.cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.cfg.AutomaticEnv()

	a.root = &cobra.Command{
		Use:   "metgrid",
		Short: "Grid projections and regridding for MET data planes.",
		Long: `metgrid converts between MET grid projections and resamples gridded
fields from one grid onto another.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'METGRID_var' where 'var' is
the name of the option, e.g. METGRID_TO_GRID=G212.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setConfig() },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.stopProfile()
			return nil
		},
	}

	a.regridCmd = a.newRegridCmd()
	a.wwmcaCmd = a.newWWMCACmd()
	a.infoCmd = a.newGridInfoCmd()
	a.tcgridCmd = a.newTCGridCmd()
	a.plotCmd = a.newPlotCmd()
	a.tilesCmd = a.newTilesCmd()
	a.root.AddCommand(a.regridCmd, a.wwmcaCmd, a.infoCmd, a.tcgridCmd, a.plotCmd, a.tilesCmd, a.newVersionCmd())

	a.bindOptions()
	return a
}

// Root returns the root command.
func (a *App) Root() *cobra.Command { return a.root }

// Logger returns the application logger.
func (a *App) Logger() *logrus.Logger { return a.log }

// SetOutput redirects command output (not logging).
func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// Execute runs the command named by args. Cancelling ctx stops a running
// regrid.
func (a *App) Execute(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	err := a.root.ExecuteContext(ctx)
	a.stopProfile()
	return err
}

// setConfig finds and reads in the configuration file, if there is one, and
// configures logging and profiling.
func (a *App) setConfig() error {
	if cfgpath := a.cfg.GetString("config"); cfgpath != "" {
		a.cfg.SetConfigFile(cfgpath)
		if err := a.cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("metgrid: problem reading configuration file: %w", err)
		}
	}

	verbose, err := a.getBool("verbose")
	if err != nil {
		return err
	}
	if verbose {
		a.log.SetLevel(logrus.DebugLevel)
	} else {
		a.log.SetLevel(logrus.InfoLevel)
	}

	if path := a.cfg.GetString("cpuprofile"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("metgrid: creating CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("metgrid: starting CPU profile: %w", err)
		}
		a.profile = f
		a.log.WithField("path", path).Debug("CPU profiling enabled")
	}
	return nil
}

func (a *App) stopProfile() {
	if a.profile == nil {
		return
	}
	pprof.StopCPUProfile()
	a.profile.Close()
	a.profile = nil
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "metgrid %s (commit %s, built %s)\n", a.build.Version, a.build.Commit, a.build.BuildDate)
		},
		DisableAutoGenTag: true,
	}
}
