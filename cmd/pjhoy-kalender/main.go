package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/klabast/wb-services/pjhoy-kalender/internal/commands"
)

type command func(context.Context, commands.Options, []string) error

var subcommands = map[string]command{
	"login":    commands.Login,
	"fetch":    commands.Fetch,
	"calendar": commands.Calendar,
	"serve":    commands.Serve,
}

func main() {
	var opts commands.Options
	flag.StringVar(&opts.Output, "output", "", "Output ICS calendar file path")
	flag.StringVar(&opts.Output, "o", "", "Shorthand for -output")
	flag.StringVar(&opts.ConfigDir, "config-dir", "", "Directory containing config.yaml and .env")
	flag.StringVar(&opts.DataDir, "data-dir", "", "Directory for cookies, services and the calendar")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pjhoy-kalender [OPTIONS] <login|fetch|calendar|serve> [ARGS]\n\n")
		fmt.Fprintf(os.Stderr, "Pirkanmaan Jätehuolto trash calendar utility.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	run, ok := subcommands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, flag.Args()[1:]); err != nil {
		log.Printf("Error: %v", err)
		stop()
		os.Exit(1)
	}
}
