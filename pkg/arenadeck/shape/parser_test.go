package shape_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/shape"
)

const trackerDoc = `{"decks":[{"ref":"t-1","title":"Izzet Phoenix","format":"Historic",` +
	`"cards":[{"arena_id":71000,"count":4}],"side":[{"arena_id":71001,"count":1}]}]}`

func TestParser_FromFile(t *testing.T) {
	p, err := shape.NewParserFromFile("testdata/tracker.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res, err := p.ParseBlock(context.Background(), arenadeck.Block{Offset: 9, Raw: []byte(trackerDoc), CapturedAt: at})
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.Len(t, res.Decks, 1)

	d := res.Decks[0]
	assert.Equal(t, "t-1", d.ID)
	assert.Equal(t, "Izzet Phoenix", d.Name)
	assert.Equal(t, "Historic", d.Format)
	assert.Equal(t, []deck.Card{{CardID: 71000, Quantity: 4}}, d.MainDeck)
	assert.Equal(t, []deck.Card{{CardID: 71001, Quantity: 1}}, d.Sideboard)
	assert.Equal(t, int64(9), d.Offset)
	assert.Equal(t, at, d.CapturedAt)
}

func TestParser_DefaultCardKeys(t *testing.T) {
	sf, err := shape.LoadBytes([]byte("version: 1\nshapes:\n  - id: min\n    id_keys: [key]\n    main_keys: [list]\n"))
	require.NoError(t, err)
	p, err := shape.NewParser(sf)
	require.NoError(t, err)

	res, err := p.ParseBlock(context.Background(), arenadeck.Block{
		Raw: []byte(`{"key":"k","name":"N","list":[{"grpId":5,"quantity":2,"name":"Island"}]}`),
	})
	require.NoError(t, err)
	require.Len(t, res.Decks, 1)
	assert.Equal(t, "N", res.Decks[0].Name)
	assert.Equal(t, deck.DefaultFormat, res.Decks[0].Format)
	assert.Equal(t, []deck.Card{{CardID: 5, Quantity: 2, Name: "Island"}}, res.Decks[0].MainDeck)
}

func TestParser_NoMatch(t *testing.T) {
	p, err := shape.NewParserFromFile("testdata/tracker.yaml")
	require.NoError(t, err)

	res, err := p.ParseBlock(context.Background(), arenadeck.Block{Raw: []byte(`{"deckId":"a","mainDeck":[]}`)})
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestParser_ChainedWithDefault(t *testing.T) {
	p, err := shape.NewParserFromFile("testdata/tracker.yaml")
	require.NoError(t, err)
	chain := &arenadeck.ParserChain{Mode: arenadeck.ChainFirst, Parsers: []arenadeck.Parser{arenadeck.DefaultParser{}, p}}

	rp := arenadeck.NewRecordParser(chain, nil)
	res, err := rp.Feed(context.Background(), 0, []byte(`log `+trackerDoc+` {"deckId":"a","mainDeck":[1,1]}`))
	require.NoError(t, err)
	require.Len(t, res.Decks, 2)
	assert.Equal(t, "t-1", res.Decks[0].ID)
	assert.Equal(t, "a", res.Decks[1].ID)
}

func TestNewParser_Errors(t *testing.T) {
	_, err := shape.NewParser()
	assert.Error(t, err)

	_, err = shape.NewParser(nil)
	assert.Error(t, err)

	_, err = shape.NewParserFromFiles("testdata/tracker.yaml", "testdata/duplicate_id.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate_id.yaml")
}
