// Command ecloop builds and queries bloom filters of hash160 values and
// searches scalar ranges for preimages whose derived hash160 falls in
// such a filter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	logger := newLogger()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ecloop <blf-gen|blf-check|search> [flags]")
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "blf-gen":
		cfg, err := parseBlfGen(args)
		if err != nil {
			fatal(logger, err)
		}
		if err := runBlfGen(cfg, os.Stdin, logger); err != nil {
			fatal(logger, err)
		}

	case "blf-check":
		cfg, err := parseBlfCheck(args)
		if err != nil {
			fatal(logger, err)
		}
		if err := runBlfCheck(cfg, os.Stdout); err != nil {
			fatal(logger, err)
		}

	case "search":
		cfg, err := parseSearch(args)
		if err != nil {
			fatal(logger, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		matches, err := runSearch(ctx, cfg, logger)
		if err != nil {
			fatal(logger, err)
		}
		for _, m := range matches {
			xb := m.Scalar.Bytes()
			fmt.Printf("%x %x\n", xb, m.Hash)
		}
		if ctx.Err() != nil {
			logger.Info().Msg("cancellation observed, exiting")
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(1)
	}
}
