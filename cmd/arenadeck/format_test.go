package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

func testDeck() deck.Deck {
	return deck.Deck{
		ID:     "abc123",
		Name:   "Mono Green Ramp",
		Format: "Standard",
		MainDeck: []deck.Card{
			{CardID: 70001, Quantity: 20, Name: "Forest"},
			{CardID: 70002, Quantity: 4},
		},
		Sideboard:  []deck.Card{{CardID: 70003, Quantity: 2}},
		CapturedAt: time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC),
		Offset:     42,
	}
}

func TestValidFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"jsonl", true},
		{"pretty", true},
		{"json", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := validFormats[tt.format]; got != tt.valid {
				t.Errorf("validFormats[%q] = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputJSON(testDeck(), &buf); err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") || strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("OutputJSON() = %q, want a single line", buf.String())
	}

	var decoded deck.Deck
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("OutputJSON() produced invalid JSON: %v", err)
	}
	if decoded.ID != "abc123" || decoded.CardCount() != 24 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestOutputJSON_EmptyListsAreArrays(t *testing.T) {
	d := testDeck()
	d.Sideboard = nil
	var buf bytes.Buffer
	if err := OutputJSON(d, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"sideboard":[]`) {
		t.Errorf("OutputJSON() = %s, want empty sideboard array", buf.String())
	}
}

func TestOutputPretty(t *testing.T) {
	tests := []struct {
		name string
		deck func() deck.Deck
		want string
	}{
		{
			name: "sideboard",
			deck: testDeck,
			want: "@42 Mono Green Ramp (abc123) Standard: 24 cards + 2 sideboard\n",
		},
		{
			name: "commander",
			deck: func() deck.Deck {
				return deck.Deck{ID: "b1", Name: "Brawl", Format: "Brawl",
					MainDeck:  []deck.Card{{CardID: 1, Quantity: 59}},
					Commander: []deck.Card{{CardID: 70010, Quantity: 1}}}
			},
			want: "@0 Brawl (b1) Brawl: 59 cards [70010]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputPretty(tt.deck(), &buf); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("OutputPretty() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestOutputDeck_UnknownFormat(t *testing.T) {
	if err := OutputDeck("xml", testDeck(), &bytes.Buffer{}); err == nil {
		t.Error("OutputDeck(xml) error = nil, want error")
	}
}
