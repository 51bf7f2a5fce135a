// Command metgrid converts between MET grid projections and regrids MET
// NetCDF data planes. Run "metgrid help" for the subcommands.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pspoerri/metgrid/internal/cli"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := cli.New(cli.BuildInfo{Version: version, Commit: commit, BuildDate: buildDate})
	app.SetOutput(stdout)
	log := app.Logger()
	log.SetOutput(stderr)
	if err := app.Execute(ctx, args); err != nil {
		log.WithError(err).Error("metgrid failed")
		return 1
	}
	return 0
}
