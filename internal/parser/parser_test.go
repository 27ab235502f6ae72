package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

var captured = time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)

func parse(t *testing.T, input string) Result {
	t.Helper()
	res, err := ParseDocument([]byte(input), DefaultShapes, captured)
	require.NoError(t, err)
	return res
}

func TestParseDocument_ArenaDeck(t *testing.T) {
	res := parse(t, `{
		"deckId": "abc123",
		"name": "Mono Green Ramp",
		"format": "Standard",
		"description": "big stuff",
		"mainDeck": [{"cardId": 70001, "quantity": 4}, {"grpId": 70002, "quantity": 20}],
		"sideboard": [{"cardId": 70003, "quantity": 2}]
	}`)

	require.True(t, res.Matched)
	require.Len(t, res.Decks, 1)
	assert.Empty(t, res.Warnings)

	d := res.Decks[0]
	assert.Equal(t, "abc123", d.ID)
	assert.Equal(t, "Mono Green Ramp", d.Name)
	assert.Equal(t, "Standard", d.Format)
	assert.Equal(t, "big stuff", d.Description)
	assert.Equal(t, captured, d.CapturedAt)
	assert.Equal(t, []deck.Card{{CardID: 70001, Quantity: 4}, {CardID: 70002, Quantity: 20}}, d.MainDeck)
	assert.Equal(t, []deck.Card{{CardID: 70003, Quantity: 2}}, d.Sideboard)
	assert.Nil(t, d.Commander)
}

func TestParseDocument_CanonicalDeck(t *testing.T) {
	res := parse(t, `{
		"id": "d1",
		"name": "Brawl",
		"format": "brawl",
		"main_deck": [{"card_id": 1, "quantity": 1, "name": "Forest"}],
		"sideboard": [],
		"commander": [{"card_id": 9, "quantity": 1, "name": "Boss"}]
	}`)

	require.Len(t, res.Decks, 1)
	d := res.Decks[0]
	assert.Equal(t, []deck.Card{{CardID: 1, Quantity: 1, Name: "Forest"}}, d.MainDeck)
	assert.Equal(t, []deck.Card{{CardID: 9, Quantity: 1, Name: "Boss"}}, d.Commander)
	assert.Empty(t, d.Sideboard)
}

func TestParseDocument_Defaults(t *testing.T) {
	res := parse(t, `{"deckId": "x1", "mainDeck": [{"cardId": 1, "quantity": 60}]}`)

	require.Len(t, res.Decks, 1)
	d := res.Decks[0]
	assert.Equal(t, deck.DefaultName, d.Name)
	assert.Equal(t, deck.DefaultFormat, d.Format)
	assert.Equal(t, "", d.Description)
	assert.NotNil(t, d.Sideboard)
	assert.Empty(t, d.Sideboard)
}

func TestParseDocument_Containers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ids   []string
	}{
		{
			name:  "decks list",
			input: `{"decks": [{"deckId": "a", "mainDeck": []}, {"deckId": "b", "mainBoard": []}]}`,
			ids:   []string{"a", "b"},
		},
		{
			name:  "single object payload",
			input: `{"payload": {"deckId": "p", "mainDeck": []}}`,
			ids:   []string{"p"},
		},
		{
			name:  "json in string payload",
			input: `{"id": 7, "payload": "{\"deckId\":\"s\",\"mainDeck\":[{\"cardId\":1,\"quantity\":1}]}"}`,
			ids:   []string{"s"},
		},
		{
			name:  "nested containers",
			input: `{"payload": {"decks": [{"deckId": "n", "mainDeck": []}]}}`,
			ids:   []string{"n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.input)
			require.True(t, res.Matched)
			var ids []string
			for _, d := range res.Decks {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestParseDocument_NotDeckData(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unrelated object", `{"transactionId": "t", "greToClientEvent": {}}`},
		{"top level array", `[1, 2, 3]`},
		{"string payload that is not json", `{"payload": "hello"}`},
		{"empty container", `{"decks": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.input)
			assert.False(t, res.Matched)
			assert.Empty(t, res.Decks)
		})
	}
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	_, err := ParseDocument([]byte(`{"deckId": `), DefaultShapes, captured)
	assert.Error(t, err)
}

func TestParseDocument_DeckWithoutID(t *testing.T) {
	res := parse(t, `{"name": "nameless", "mainDeck": [{"cardId": 1, "quantity": 1}]}`)

	assert.True(t, res.Matched)
	assert.Empty(t, res.Decks)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "without id")
}

func TestParseDocument_CardEntries(t *testing.T) {
	tests := []struct {
		name      string
		main      string
		want      []deck.Card
		wantWarns int
	}{
		{
			name:      "missing quantity defaults to one",
			main:      `[{"cardId": 5}]`,
			want:      []deck.Card{{CardID: 5, Quantity: 1}},
			wantWarns: 1,
		},
		{
			name:      "zero quantity dropped",
			main:      `[{"cardId": 5, "quantity": 0}, {"cardId": 6, "quantity": 2}]`,
			want:      []deck.Card{{CardID: 6, Quantity: 2}},
			wantWarns: 1,
		},
		{
			name:      "negative quantity dropped",
			main:      `[{"cardId": 5, "quantity": -3}]`,
			want:      []deck.Card{},
			wantWarns: 1,
		},
		{
			name:      "non integer id dropped",
			main:      `[{"cardId": "abc", "quantity": 1}, {"cardId": 1.5, "quantity": 1}]`,
			want:      []deck.Card{},
			wantWarns: 2,
		},
		{
			name:      "numeric string id accepted",
			main:      `[{"cardId": "42", "quantity": "3"}]`,
			want:      []deck.Card{{CardID: 42, Quantity: 3}},
			wantWarns: 0,
		},
		{
			name:      "missing id dropped",
			main:      `[{"quantity": 1}]`,
			want:      []deck.Card{},
			wantWarns: 1,
		},
		{
			name:      "non object entry dropped",
			main:      `[{"cardId": 1, "quantity": 1}, "x"]`,
			want:      []deck.Card{{CardID: 1, Quantity: 1}},
			wantWarns: 1,
		},
		{
			name:      "flat pairs",
			main:      `[70001, 4, 70002, 2]`,
			want:      []deck.Card{{CardID: 70001, Quantity: 4}, {CardID: 70002, Quantity: 2}},
			wantWarns: 0,
		},
		{
			name:      "flat pairs odd length",
			main:      `[70001, 4, 70002]`,
			want:      []deck.Card{{CardID: 70001, Quantity: 4}, {CardID: 70002, Quantity: 1}},
			wantWarns: 1,
		},
		{
			name:      "flat pairs zero quantity",
			main:      `[70001, 0, 70002, 1]`,
			want:      []deck.Card{{CardID: 70002, Quantity: 1}},
			wantWarns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, `{"deckId": "d", "mainDeck": `+tt.main+`}`)
			require.Len(t, res.Decks, 1)
			assert.Equal(t, tt.want, res.Decks[0].MainDeck)
			assert.Len(t, res.Warnings, tt.wantWarns)
			for _, w := range res.Warnings {
				assert.Equal(t, "d", w.DeckID)
			}
		})
	}
}

func TestParseDocument_CommanderIDs(t *testing.T) {
	res := parse(t, `{"deckId": "b", "mainDeck": [], "commandZoneGRPIds": [70010, "bad"]}`)

	require.Len(t, res.Decks, 1)
	assert.Equal(t, []deck.Card{{CardID: 70010, Quantity: 1}}, res.Decks[0].Commander)
	assert.Len(t, res.Warnings, 1)
}

func TestParseDocument_CustomShape(t *testing.T) {
	custom := Shape{
		ID:           "custom",
		IDKeys:       []string{"ref"},
		MainKeys:     []string{"cards"},
		CardIDKeys:   []string{"n"},
		QuantityKeys: []string{"q"},
	}
	res, err := ParseDocument([]byte(`{"ref": "r1", "cards": [{"n": 3, "q": 2}]}`), []Shape{custom}, captured)
	require.NoError(t, err)
	require.Len(t, res.Decks, 1)
	assert.Equal(t, "r1", res.Decks[0].ID)
	assert.Equal(t, []deck.Card{{CardID: 3, Quantity: 2}}, res.Decks[0].MainDeck)
}

func TestWarning_String(t *testing.T) {
	assert.Equal(t, "deck d: oops", Warning{DeckID: "d", Message: "oops"}.String())
	assert.Equal(t, "oops", Warning{Message: "oops"}.String())
}
