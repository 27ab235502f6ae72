package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// exportedLayout is the timestamp layout in the text header.
const exportedLayout = "2006-01-02 15:04:05"

// Render returns the file payload for d in format f.
func Render(f Format, d *deck.Deck) ([]byte, error) {
	switch f {
	case FormatJSON:
		return renderJSON(d)
	case FormatText:
		return renderText(d), nil
	case FormatMTGA:
		return renderMTGA(d), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

func renderJSON(d *deck.Deck) ([]byte, error) {
	out := *d
	if out.MainDeck == nil {
		out.MainDeck = []deck.Card{}
	}
	if out.Sideboard == nil {
		out.Sideboard = []deck.Card{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func renderText(d *deck.Deck) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Deck: %s\n", d.Name)
	fmt.Fprintf(&b, "Format: %s\n", d.Format)
	if d.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", d.Description)
	}
	fmt.Fprintf(&b, "Exported: %s\n", d.CapturedAt.Format(exportedLayout))

	section := func(title string, cards []deck.Card) {
		fmt.Fprintf(&b, "\n%s:\n", title)
		writeCards(&b, cards)
	}
	if len(d.Commander) > 0 {
		section("Commander", d.Commander)
	}
	section("Main Deck", d.MainDeck)
	if len(d.Sideboard) > 0 {
		section("Sideboard", d.Sideboard)
	}
	return b.Bytes()
}

// renderMTGA writes the Arena import format.
func renderMTGA(d *deck.Deck) []byte {
	var b bytes.Buffer
	if len(d.Commander) > 0 {
		b.WriteString("Commander\n")
		writeCards(&b, d.Commander)
		b.WriteString("\n")
	}
	b.WriteString("Deck\n")
	writeCards(&b, d.MainDeck)
	if len(d.Sideboard) > 0 {
		b.WriteString("\nSideboard\n")
		writeCards(&b, d.Sideboard)
	}
	return b.Bytes()
}

func writeCards(b *bytes.Buffer, cards []deck.Card) {
	for _, c := range cards {
		fmt.Fprintf(b, "%d %s\n", c.Quantity, c.Label())
	}
}
