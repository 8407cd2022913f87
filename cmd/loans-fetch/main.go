package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/travelbank/accounts-loans/internal/app"
	"github.com/travelbank/accounts-loans/internal/config"
	"github.com/travelbank/accounts-loans/internal/domain"
	"github.com/travelbank/accounts-loans/internal/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "loans-fetch failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("loans-fetch", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: loans-fetch [flags] MOBILE...\n")
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("at least one mobile number is required")
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.InfoObj("loans-fetch starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lookup, err := app.NewLookup(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize lookup", "error", err.Error())
		return err
	}
	defer lookup.Close()

	results, runErr := lookup.Run(ctx, fs.Args())
	if err := writeResults(out, results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("lookup: %w", runErr)
	}
	return nil
}

// writeResults prints one JSON document per line, in input order.
func writeResults(out io.Writer, results []domain.LookupResult) error {
	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
