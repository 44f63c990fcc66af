package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/klabast/wb-services/pjhoy-kalender/internal/app"
)

// Options are the global flags shared by all subcommands
type Options struct {
	ConfigDir string
	DataDir   string
	Output    string
}

// loadConfig resolves configuration for a subcommand; -o overrides the calendar path
func loadConfig(opts Options) (app.Config, error) {
	cfg, err := app.LoadConfig(opts.ConfigDir, opts.DataDir)
	if err != nil {
		return app.Config{}, err
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	return cfg, nil
}

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pjhoy-kalender [GLOBAL OPTIONS] %s [OPTIONS]\n\n%s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}
