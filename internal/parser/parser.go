// Package parser maps decoded JSON log blocks onto deck records.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// maxContainerDepth bounds how far container keys are followed.
const maxContainerDepth = 3

// Warning is a recoverable problem with one deck or card entry.
type Warning struct {
	DeckID  string
	Message string
}

func (w Warning) String() string {
	if w.DeckID == "" {
		return w.Message
	}
	return fmt.Sprintf("deck %s: %s", w.DeckID, w.Message)
}

// Result is the outcome of mapping one document.
type Result struct {
	Decks    []deck.Deck
	Matched  bool
	Warnings []Warning
}

// ParseDocument maps the JSON document raw onto decks using shapes.
//
// Returns:
//   - Matched=false, nil: valid JSON that is not deck data (not an error)
//   - Matched=true: one or more deck objects were recognised; decks that could
//     not be used (no id) are dropped with a warning
//   - error: raw is not a JSON document
func ParseDocument(raw []byte, shapes []Shape, capturedAt time.Time) (Result, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Result{}, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Result{}, nil
	}

	var res Result
	collect(obj, shapes, capturedAt, 0, &res)
	return res, nil
}

func collect(obj map[string]any, shapes []Shape, capturedAt time.Time, depth int, res *Result) {
	for _, sh := range shapes {
		if _, ok := lookup(obj, sh.MainKeys); ok {
			res.Matched = true
			if d, ok := buildDeck(obj, sh, capturedAt, res); ok {
				res.Decks = append(res.Decks, d)
			}
			return
		}
	}

	if depth >= maxContainerDepth {
		return
	}
	for _, sh := range shapes {
		v, ok := lookup(obj, sh.ContainerKeys)
		if !ok {
			continue
		}
		for _, child := range containerItems(v) {
			collect(child, shapes, capturedAt, depth+1, res)
		}
		return
	}
}

// containerItems returns the objects held by a container value. Arena wraps
// some payloads in a JSON-encoded string.
func containerItems(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		items := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	case string:
		s := strings.TrimSpace(t)
		if s == "" || (s[0] != '{' && s[0] != '[') {
			return nil
		}
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var inner any
		if err := dec.Decode(&inner); err != nil {
			return nil
		}
		return containerItems(inner)
	default:
		return nil
	}
}

func buildDeck(obj map[string]any, sh Shape, capturedAt time.Time, res *Result) (deck.Deck, bool) {
	id := stringField(obj, sh.IDKeys)
	if id == "" {
		res.Warnings = append(res.Warnings, Warning{Message: "deck without id skipped"})
		return deck.Deck{}, false
	}

	d := deck.Deck{
		ID:          id,
		Name:        stringField(obj, sh.NameKeys),
		Format:      stringField(obj, sh.FormatKeys),
		Description: stringField(obj, sh.DescriptionKeys),
		CapturedAt:  capturedAt,
	}
	if d.Name == "" {
		d.Name = deck.DefaultName
	}
	if d.Format == "" {
		d.Format = deck.DefaultFormat
	}

	main, _ := lookup(obj, sh.MainKeys)
	d.MainDeck = cardList(main, sh, id, "main deck", res)
	if v, ok := lookup(obj, sh.SideboardKeys); ok {
		d.Sideboard = cardList(v, sh, id, "sideboard", res)
	} else {
		d.Sideboard = []deck.Card{}
	}
	if v, ok := lookup(obj, sh.CommanderKeys); ok {
		d.Commander = commanderList(v, sh, id, res)
	}
	return d, true
}

// cardList decodes a list of card objects, or a flat [id, qty, id, qty...]
// array of integers.
func cardList(v any, sh Shape, deckID, section string, res *Result) []deck.Card {
	cards := []deck.Card{}
	list, ok := v.([]any)
	if !ok {
		if v != nil {
			res.Warnings = append(res.Warnings, Warning{DeckID: deckID, Message: section + " is not a list"})
		}
		return cards
	}
	if isFlat(list) {
		return flatCards(list, deckID, section, res)
	}

	for i, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			res.Warnings = append(res.Warnings, Warning{DeckID: deckID,
				Message: fmt.Sprintf("%s entry %d is not an object", section, i)})
			continue
		}
		if c, ok := cardEntry(m, sh, deckID, section, i, res); ok {
			cards = append(cards, c)
		}
	}
	return cards
}

func cardEntry(m map[string]any, sh Shape, deckID, section string, i int, res *Result) (deck.Card, bool) {
	warn := func(format string, args ...any) {
		res.Warnings = append(res.Warnings, Warning{DeckID: deckID,
			Message: fmt.Sprintf("%s entry %d: ", section, i) + fmt.Sprintf(format, args...)})
	}

	rawID, ok := lookup(m, sh.CardIDKeys)
	if !ok {
		warn("missing card id")
		return deck.Card{}, false
	}
	cardID, ok := toInt(rawID)
	if !ok {
		warn("card id %v is not an integer", rawID)
		return deck.Card{}, false
	}

	qty := int64(1)
	if rawQty, ok := lookup(m, sh.QuantityKeys); ok {
		qty, ok = toInt(rawQty)
		if !ok {
			warn("quantity %v is not an integer", rawQty)
			return deck.Card{}, false
		}
	} else {
		warn("card %d has no quantity, assuming 1", cardID)
	}
	if qty < 1 {
		warn("card %d has quantity %d", cardID, qty)
		return deck.Card{}, false
	}

	return deck.Card{
		CardID:   cardID,
		Quantity: int(qty),
		Name:     stringField(m, sh.CardNameKeys),
	}, true
}

func commanderList(v any, sh Shape, deckID string, res *Result) []deck.Card {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var cards []deck.Card
	for i, e := range list {
		switch t := e.(type) {
		case map[string]any:
			if c, ok := cardEntry(t, sh, deckID, "commander", i, res); ok {
				cards = append(cards, c)
			}
		default:
			id, ok := toInt(t)
			if !ok {
				res.Warnings = append(res.Warnings, Warning{DeckID: deckID,
					Message: fmt.Sprintf("commander entry %d: card id %v is not an integer", i, t)})
				continue
			}
			cards = append(cards, deck.Card{CardID: id, Quantity: 1})
		}
	}
	return cards
}

func isFlat(list []any) bool {
	if len(list) == 0 {
		return false
	}
	for _, e := range list {
		if _, ok := e.(json.Number); !ok {
			return false
		}
	}
	return true
}

func flatCards(list []any, deckID, section string, res *Result) []deck.Card {
	cards := make([]deck.Card, 0, (len(list)+1)/2)
	for i := 0; i < len(list); i += 2 {
		id, ok := toInt(list[i])
		if !ok {
			res.Warnings = append(res.Warnings, Warning{DeckID: deckID,
				Message: fmt.Sprintf("%s entry %d: card id %v is not an integer", section, i/2, list[i])})
			continue
		}
		qty := int64(1)
		if i+1 < len(list) {
			if qty, ok = toInt(list[i+1]); !ok || qty < 1 {
				res.Warnings = append(res.Warnings, Warning{DeckID: deckID,
					Message: fmt.Sprintf("%s entry %d: card %d has invalid quantity %v", section, i/2, id, list[i+1])})
				continue
			}
		} else {
			res.Warnings = append(res.Warnings, Warning{DeckID: deckID,
				Message: fmt.Sprintf("%s entry %d: card %d has no quantity, assuming 1", section, i/2, id)})
		}
		cards = append(cards, deck.Card{CardID: id, Quantity: int(qty)})
	}
	return cards
}

func lookup(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(m map[string]any, keys []string) string {
	v, ok := lookup(m, keys)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// toInt accepts JSON integers, integral floats and numeric strings.
func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
			return 0, false
		}
		return int64(f), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
