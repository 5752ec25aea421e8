package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/ecloop-go/ecloop/fe"
)

// ErrConfig reports a missing or malformed CLI argument.
var ErrConfig = errors.New("ecloop: invalid configuration")

type blfGenConfig struct {
	count  uint64
	output string
}

func parseBlfGen(args []string) (*blfGenConfig, error) {
	fs := flag.NewFlagSet("blf-gen", flag.ContinueOnError)
	n := fs.Uint64("n", 0, "expected number of entries")
	o := fs.String("o", "", "output filter path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *n == 0 {
		return nil, fmt.Errorf("%w: -n is required and must be nonzero", ErrConfig)
	}
	if *o == "" {
		return nil, fmt.Errorf("%w: -o is required", ErrConfig)
	}
	return &blfGenConfig{count: *n, output: *o}, nil
}

type blfCheckConfig struct {
	file   string
	hashes []string
}

func parseBlfCheck(args []string) (*blfCheckConfig, error) {
	fs := flag.NewFlagSet("blf-check", flag.ContinueOnError)
	f := fs.String("f", "", "filter path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *f == "" {
		return nil, fmt.Errorf("%w: -f is required", ErrConfig)
	}
	return &blfCheckConfig{file: *f, hashes: fs.Args()}, nil
}

type searchConfig struct {
	file    string
	lo, hi  fe.Element
	threads int
	seed    uint64
	hasSeed bool
	urandom bool
}

func parseSearch(args []string) (*searchConfig, error) {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	f := fs.String("f", "", "filter path")
	r := fs.String("r", "", "scalar range lo:hi (hex)")
	t := fs.Int("t", 0, "worker threads (0 = runtime.NumCPU())")
	s := fs.Uint64("s", 0, "PRNG seed (random mode)")
	u := fs.Bool("u", false, "source entropy from /dev/urandom instead of -s")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *f == "" {
		return nil, fmt.Errorf("%w: -f is required", ErrConfig)
	}
	if *r == "" {
		return nil, fmt.Errorf("%w: -r is required", ErrConfig)
	}

	lo, hi, err := parseRange(*r)
	if err != nil {
		return nil, err
	}

	cfg := &searchConfig{
		file:    *f,
		lo:      lo,
		hi:      hi,
		threads: *t,
		seed:    *s,
		urandom: *u,
	}
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "s" {
			cfg.hasSeed = true
		}
	})
	return cfg, nil
}

// parseRange parses "lo:hi" where lo and hi are hex-encoded 256-bit
// scalars, with or without a leading 0x.
func parseRange(s string) (lo, hi fe.Element, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return lo, hi, fmt.Errorf("%w: range must be lo:hi", ErrConfig)
	}
	lo, err = parseHexScalar(parts[0])
	if err != nil {
		return lo, hi, err
	}
	hi, err = parseHexScalar(parts[1])
	if err != nil {
		return lo, hi, err
	}
	if fe.Cmp(&lo, &hi) > 0 {
		return lo, hi, fmt.Errorf("%w: range lo must not exceed hi", ErrConfig)
	}
	return lo, hi, nil
}

func parseHexScalar(s string) (fe.Element, error) {
	var out fe.Element
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return out, fmt.Errorf("%w: empty scalar", ErrConfig)
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	if len(s) > 64 {
		return out, fmt.Errorf("%w: %q exceeds 256 bits", ErrConfig, s)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("%w: %q is not valid hex: %v", ErrConfig, s, err)
	}

	var padded [32]byte
	copy(padded[32-len(b):], b)
	out.SetBytes(padded[:])
	return out, nil
}
