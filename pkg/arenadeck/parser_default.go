package arenadeck

import (
	"context"

	"github.com/arenadeck/arenadeck-go/internal/parser"
)

// DefaultParser recognises the canonical export shape and the shapes the MTG
// Arena client writes to Player.log.
type DefaultParser struct{}

// ParseBlock implements the Parser interface.
func (DefaultParser) ParseBlock(ctx context.Context, b Block) (ParseResult, error) {
	return parseWithShapes(b, parser.DefaultShapes)
}

// parseWithShapes maps b using the given shape list.
func parseWithShapes(b Block, shapes []parser.Shape) (ParseResult, error) {
	res, err := parser.ParseDocument(b.Raw, shapes, b.CapturedAt)
	if err != nil {
		return ParseResult{}, err
	}
	out := ParseResult{Matched: res.Matched, Decks: res.Decks}
	for i := range out.Decks {
		out.Decks[i].Offset = b.Offset
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out, nil
}

var _ Parser = DefaultParser{}
