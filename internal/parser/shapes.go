package parser

// Shape lists the keys under which one JSON dialect stores deck fields.
// Each field holds aliases tried in order; the first present key wins.
type Shape struct {
	ID string

	// ContainerKeys hold a list (or single object, or JSON-encoded string) of
	// deck objects, e.g. {"decks":[...]}.
	ContainerKeys []string

	IDKeys          []string
	NameKeys        []string
	FormatKeys      []string
	DescriptionKeys []string
	MainKeys        []string
	SideboardKeys   []string
	CommanderKeys   []string

	CardIDKeys   []string
	QuantityKeys []string
	CardNameKeys []string
}

// Canonical is the shape the daemon itself writes in its json export.
var Canonical = Shape{
	ID:              "canonical",
	ContainerKeys:   []string{"decks"},
	IDKeys:          []string{"id"},
	NameKeys:        []string{"name"},
	FormatKeys:      []string{"format"},
	DescriptionKeys: []string{"description"},
	MainKeys:        []string{"main_deck"},
	SideboardKeys:   []string{"sideboard"},
	CommanderKeys:   []string{"commander"},
	CardIDKeys:      []string{"card_id"},
	QuantityKeys:    []string{"quantity"},
	CardNameKeys:    []string{"name"},
}

// Arena is the shape used by the MTG Arena client in Player.log.
var Arena = Shape{
	ID:              "arena",
	ContainerKeys:   []string{"decks", "Decks", "payload"},
	IDKeys:          []string{"deckId", "deckID", "DeckId", "id"},
	NameKeys:        []string{"name", "deckName", "Name"},
	FormatKeys:      []string{"format", "Format"},
	DescriptionKeys: []string{"description", "Description"},
	MainKeys:        []string{"mainDeck", "mainBoard", "MainDeck"},
	SideboardKeys:   []string{"sideboard", "Sideboard", "reducedSideboard"},
	CommanderKeys:   []string{"commandZoneGRPIds", "CommandZone"},
	CardIDKeys:      []string{"cardId", "grpId", "Id", "id"},
	QuantityKeys:    []string{"quantity", "Quantity"},
	CardNameKeys:    []string{"name", "Name"},
}

// DefaultShapes are tried in order by DefaultParser.
var DefaultShapes = []Shape{Canonical, Arena}
