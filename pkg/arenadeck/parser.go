package arenadeck

import (
	"context"
	"errors"
	"time"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// Block is one complete JSON document cut out of the log.
type Block struct {
	// Offset is the file offset of the opening brace.
	Offset int64
	// Raw is the document text.
	Raw []byte
	// CapturedAt is when the block was read.
	CapturedAt time.Time
}

// ParseResult represents the result of parsing a block.
type ParseResult struct {
	// Decks contains the decks found in the block.
	Decks []deck.Deck

	// Matched indicates whether the parser recognised the block as deck data.
	// It can be true with no decks when every deck in it was unusable.
	Matched bool

	// Warnings describe dropped or defaulted entries.
	Warnings []string
}

// Parser turns a JSON block into decks.
// Implementations include DefaultParser and shape.Parser.
type Parser interface {
	// ParseBlock returns Matched=false for blocks that are not deck data.
	// It returns an error only when the block itself is unusable.
	ParseBlock(ctx context.Context, b Block) (ParseResult, error)
}

// ParserFunc is an adapter to allow ordinary functions to be used as Parsers.
type ParserFunc func(ctx context.Context, b Block) (ParseResult, error)

// ParseBlock implements the Parser interface.
func (f ParserFunc) ParseBlock(ctx context.Context, b Block) (ParseResult, error) {
	return f(ctx, b)
}

// ChainMode specifies how ParserChain executes parsers.
type ChainMode int

const (
	// ChainAll executes all parsers and combines results (default).
	ChainAll ChainMode = iota

	// ChainFirst stops at the first parser that matches.
	ChainFirst

	// ChainContinueOnError skips parsers that return errors and continues.
	// Errors are collected and returned together at the end.
	ChainContinueOnError
)

// ParserChain combines multiple parsers.
type ParserChain struct {
	Mode    ChainMode
	Parsers []Parser
}

// ParseBlock implements the Parser interface.
//
// If ctx is cancelled part way, the decks collected so far are returned with
// the context error.
func (c *ParserChain) ParseBlock(ctx context.Context, b Block) (ParseResult, error) {
	var out ParseResult
	var errs []error

	for _, p := range c.Parsers {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if p == nil {
			continue
		}

		res, err := p.ParseBlock(ctx, b)
		if err != nil {
			if c.Mode == ChainContinueOnError {
				errs = append(errs, err)
				continue
			}
			return ParseResult{}, err
		}
		if res.Matched {
			out.Matched = true
			out.Decks = append(out.Decks, res.Decks...)
			out.Warnings = append(out.Warnings, res.Warnings...)
			if c.Mode == ChainFirst {
				return out, nil
			}
		}
	}

	if len(errs) > 0 {
		return out, errors.Join(errs...)
	}
	return out, nil
}
