package main

import (
	"fmt"
	"io"

	"github.com/templexxx/xhex"

	"github.com/ecloop-go/ecloop/bloom"
	"github.com/ecloop-go/ecloop/hash160"
)

// runBlfCheck loads cfg.file and prints FOUND/NOT FOUND for each hash
// in cfg.hashes, one line per hash, to w.
func runBlfCheck(cfg *blfCheckConfig, w io.Writer) error {
	filter, err := bloom.Load(cfg.file)
	if err != nil {
		return err
	}
	defer filter.Close()

	for _, h := range cfg.hashes {
		if len(h) != 40 {
			return fmt.Errorf("%w: %q is not 40 hex chars", ErrConfig, h)
		}
		var raw [20]byte
		if _, err := xhex.Decode(raw[:], []byte(h)); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrConfig, h, err)
		}

		status := "NOT FOUND"
		if filter.Has(hash160.Hash160(raw)) {
			status = "FOUND"
		}
		fmt.Fprintf(w, "%s %s\n", h, status)
	}
	return nil
}
