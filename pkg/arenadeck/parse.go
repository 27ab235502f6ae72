package arenadeck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/arenadeck/arenadeck-go/internal/safefile"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// parseChunkSize is how much ParseFile reads per step.
const parseChunkSize = 1 << 20

// ParseOption configures ParseFile behavior.
type ParseOption func(*parseConfig)

type parseConfig struct {
	parser      Parser
	logger      *slog.Logger
	stopOnError bool
}

func defaultParseConfig() *parseConfig {
	return &parseConfig{parser: DefaultParser{}}
}

func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseParser sets a custom parser for ParseFile.
// If p is nil, this option has no effect.
func WithParseParser(p Parser) ParseOption {
	return func(c *parseConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithParseLogger sets a logger for skipped blocks and deck warnings.
func WithParseLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}

// WithParseStopOnError yields the first block error and stops instead of
// skipping the block. Default: false.
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}

// ParseFile scans a whole log file once and yields its decks in file order.
//
// Skipped blocks are yielded as *ParseError only with WithParseStopOnError.
// I/O failures and context cancellation are yielded as the final error.
//
// Example:
//
//	for d, err := range arenadeck.ParseFile(ctx, "Player.log") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(d.Name, d.CardCount())
//	}
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[deck.Deck, error] {
	cfg := applyParseOptions(opts)

	return func(yield func(deck.Deck, error) bool) {
		f, _, err := safefile.OpenRegular(path)
		if err != nil {
			yield(deck.Deck{}, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer f.Close()

		rp := NewRecordParser(cfg.parser, cfg.logger)
		buf := make([]byte, parseChunkSize)
		var offset int64

		for {
			n, readErr := f.Read(buf)
			if n > 0 {
				res, err := rp.Feed(ctx, offset, buf[:n])
				offset += int64(n)
				if err != nil {
					yield(deck.Deck{}, err)
					return
				}
				for _, d := range res.Decks {
					if !yield(d, nil) {
						return
					}
				}
				if cfg.stopOnError && len(res.Errors) > 0 {
					yield(deck.Deck{}, res.Errors[0])
					return
				}
			}
			if errors.Is(readErr, io.EOF) {
				if at, ok := rp.Pending(); ok && cfg.stopOnError {
					yield(deck.Deck{}, &ParseError{Offset: at, Err: io.ErrUnexpectedEOF})
				}
				return
			}
			if readErr != nil {
				yield(deck.Deck{}, fmt.Errorf("read %s: %w", path, readErr))
				return
			}
			if err := ctx.Err(); err != nil {
				yield(deck.Deck{}, err)
				return
			}
		}
	}
}

// ParseFileAll collects every deck ParseFile yields.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]deck.Deck, error) {
	var decks []deck.Deck
	for d, err := range ParseFile(ctx, path, opts...) {
		if err != nil {
			return decks, err
		}
		decks = append(decks, d)
	}
	return decks, nil
}
