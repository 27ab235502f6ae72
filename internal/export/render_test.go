package export

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

var capturedAt = time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)

func monoGreen() *deck.Deck {
	return &deck.Deck{
		ID:          "abc123",
		Name:        "Mono Green Ramp",
		Format:      "Standard",
		Description: "Ramp into big threats",
		MainDeck: []deck.Card{
			{CardID: 70001, Quantity: 20, Name: "Forest"},
			{CardID: 70002, Quantity: 4},
		},
		Sideboard:  []deck.Card{{CardID: 70003, Quantity: 2}},
		CapturedAt: capturedAt,
	}
}

func brawl() *deck.Deck {
	return &deck.Deck{
		ID:         "brawl1",
		Name:       "Brawl Deck",
		Format:     "brawl",
		MainDeck:   []deck.Card{{CardID: 70011, Quantity: 99}},
		Sideboard:  []deck.Card{},
		Commander:  []deck.Card{{CardID: 70010, Quantity: 1, Name: "Boss"}},
		CapturedAt: capturedAt,
	}
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	decks := map[string]*deck.Deck{
		"mono_green": monoGreen(),
		"brawl":      brawl(),
	}
	for name, d := range decks {
		for _, f := range AllFormats {
			t.Run(name+"/"+string(f), func(t *testing.T) {
				out, err := Render(f, d)
				require.NoError(t, err)
				g.Assert(t, name+"."+string(f), out)
			})
		}
	}
}

func TestRender_NilSideboardIsEmptyList(t *testing.T) {
	d := monoGreen()
	d.Sideboard = nil

	out, err := Render(FormatJSON, d)
	require.NoError(t, err)
	require.Contains(t, string(out), `"sideboard": []`)
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render(Format("pdf"), monoGreen())
	require.Error(t, err)
}
