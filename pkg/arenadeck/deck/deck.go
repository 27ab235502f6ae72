// Package deck defines the deck types extracted from MTG Arena logs.
package deck

import "time"

// DefaultName is used when the log does not carry a deck name.
const DefaultName = "Unnamed Deck"

// DefaultFormat is used when the log does not carry a deck format.
const DefaultFormat = "unknown"

// Deck is a single observed deck state.
//
// ID is assigned by the game client and never changes for the lifetime of a
// deck. Two Decks with the same ID but different card lists are successive
// edits of the same deck.
type Deck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Format      string    `json:"format"`
	Description string    `json:"description,omitempty"`
	MainDeck    []Card    `json:"main_deck"`
	Sideboard   []Card    `json:"sideboard"`
	Commander   []Card    `json:"commander,omitempty"`
	CapturedAt  time.Time `json:"captured_at"`

	// Offset is the byte offset of the block the deck was decoded from.
	Offset int64 `json:"-"`
}

// Card is one line of a deck list.
// The same CardID may appear in several entries if the log repeats it;
// entries are never merged.
type Card struct {
	CardID   int64  `json:"card_id"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name,omitempty"`
}

// Label returns the card name, or the card id when no name is known.
func (c Card) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return formatInt(c.CardID)
}

// CardCount returns the total number of cards in the main deck.
func (d *Deck) CardCount() int {
	n := 0
	for _, c := range d.MainDeck {
		n += c.Quantity
	}
	return n
}

// SideboardCount returns the total number of cards in the sideboard.
func (d *Deck) SideboardCount() int {
	n := 0
	for _, c := range d.Sideboard {
		n += c.Quantity
	}
	return n
}
