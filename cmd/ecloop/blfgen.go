package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/templexxx/xhex"

	"github.com/ecloop-go/ecloop/bloom"
	"github.com/ecloop-go/ecloop/hash160"
)

// runBlfGen reads 40-hex-char hash160 lines from stdin, inserts each
// into a freshly sized filter, and saves it to cfg.output.
func runBlfGen(cfg *blfGenConfig, stdin io.Reader, logger zerolog.Logger) error {
	filter := bloom.New(cfg.count, 1e-9)

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	var n int
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(line) != 40 {
			return fmt.Errorf("%w: line %q is not 40 hex chars", ErrConfig, line)
		}
		var raw [20]byte
		if _, err := xhex.Decode(raw[:], []byte(line)); err != nil {
			return fmt.Errorf("%w: line %q: %v", ErrConfig, line, err)
		}
		filter.Add(hash160.Hash160(raw))
		n++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := filter.Save(cfg.output); err != nil {
		return err
	}
	logger.Info().Int("entries", n).Str("file", cfg.output).Msg("filter built")
	return nil
}
