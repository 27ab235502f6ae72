package shape

import (
	"context"
	"fmt"

	"github.com/arenadeck/arenadeck-go/internal/parser"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
)

// Card field aliases used when a shape leaves them empty.
var (
	defaultCardIDKeys   = []string{"card_id", "cardId", "grpId", "id"}
	defaultQuantityKeys = []string{"quantity"}
	defaultCardNameKeys = []string{"name"}
	defaultNameKeys     = []string{"name"}
	defaultFormatKeys   = []string{"format"}
)

// Parser is an arenadeck.Parser driven by shapes from YAML files.
// It is safe for concurrent use by multiple goroutines.
type Parser struct {
	shapes []parser.Shape
}

// NewParser creates a Parser from one or more validated shape files. Shapes
// are tried in file order.
func NewParser(files ...*ShapeFile) (*Parser, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no shape files")
	}
	var shapes []parser.Shape
	for _, sf := range files {
		if sf == nil {
			return nil, fmt.Errorf("shape file is nil")
		}
		for _, s := range sf.Shapes {
			shapes = append(shapes, s.compile())
		}
	}
	return &Parser{shapes: shapes}, nil
}

// NewParserFromFile loads path and creates a Parser from it.
func NewParserFromFile(path string) (*Parser, error) {
	return NewParserFromFiles(path)
}

// NewParserFromFiles loads every path and creates one Parser from them.
func NewParserFromFiles(paths ...string) (*Parser, error) {
	files := make([]*ShapeFile, 0, len(paths))
	for _, p := range paths {
		sf, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("shape file %s: %w", p, err)
		}
		files = append(files, sf)
	}
	return NewParser(files...)
}

// Len returns the number of shapes.
func (p *Parser) Len() int { return len(p.shapes) }

// ParseBlock implements arenadeck.Parser.
func (p *Parser) ParseBlock(ctx context.Context, b arenadeck.Block) (arenadeck.ParseResult, error) {
	res, err := parser.ParseDocument(b.Raw, p.shapes, b.CapturedAt)
	if err != nil {
		return arenadeck.ParseResult{}, err
	}
	out := arenadeck.ParseResult{Matched: res.Matched, Decks: res.Decks}
	for i := range out.Decks {
		out.Decks[i].Offset = b.Offset
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out, nil
}

func (s Shape) compile() parser.Shape {
	return parser.Shape{
		ID:              s.ID,
		ContainerKeys:   s.ContainerKeys,
		IDKeys:          s.IDKeys,
		NameKeys:        orDefault(s.NameKeys, defaultNameKeys),
		FormatKeys:      orDefault(s.FormatKeys, defaultFormatKeys),
		DescriptionKeys: s.DescriptionKeys,
		MainKeys:        s.MainKeys,
		SideboardKeys:   s.SideboardKeys,
		CommanderKeys:   s.CommanderKeys,
		CardIDKeys:      orDefault(s.CardIDKeys, defaultCardIDKeys),
		QuantityKeys:    orDefault(s.QuantityKeys, defaultQuantityKeys),
		CardNameKeys:    orDefault(s.CardNameKeys, defaultCardNameKeys),
	}
}

func orDefault(keys, def []string) []string {
	if len(keys) == 0 {
		return def
	}
	return keys
}

var _ arenadeck.Parser = (*Parser)(nil)
