package main

import (
	"fmt"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/shape"
)

// buildParser returns a parser that tries the shape files first and falls
// back to the built-in shapes. It returns nil (the default parser) when no
// shape files are given.
func buildParser(shapeFiles []string) (arenadeck.Parser, error) {
	if len(shapeFiles) == 0 {
		return nil, nil
	}

	sp, err := shape.NewParserFromFiles(shapeFiles...)
	if err != nil {
		return nil, fmt.Errorf("loading shape files: %w", err)
	}

	return &arenadeck.ParserChain{
		Mode:    arenadeck.ChainFirst,
		Parsers: []arenadeck.Parser{sp, arenadeck.DefaultParser{}},
	}, nil
}
