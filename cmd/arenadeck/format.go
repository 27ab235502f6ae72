package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// validFormats lists the output formats of the scan command.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputDeck writes a deck in the specified format to the writer.
func OutputDeck(format string, d deck.Deck, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(d, out)
	case "pretty":
		return OutputPretty(d, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes a deck as one JSON line.
func OutputJSON(d deck.Deck, out io.Writer) error {
	if d.MainDeck == nil {
		d.MainDeck = []deck.Card{}
	}
	if d.Sideboard == nil {
		d.Sideboard = []deck.Card{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a one-line human readable summary.
func OutputPretty(d deck.Deck, out io.Writer) error {
	side := ""
	if n := d.SideboardCount(); n > 0 {
		side = fmt.Sprintf(" + %d sideboard", n)
	}
	cmdr := ""
	if len(d.Commander) > 0 {
		cmdr = " [" + d.Commander[0].Label() + "]"
	}
	_, err := fmt.Fprintf(out, "@%d %s (%s) %s: %d cards%s%s\n",
		d.Offset, d.Name, d.ID, d.Format, d.CardCount(), side, cmdr)
	return err
}
