// Package shape lets users describe additional deck JSON layouts in YAML.
//
// A shape lists the keys under which one JSON dialect keeps the deck id, its
// card lists and the card fields. Shapes are loaded from a file and turned
// into an arenadeck.Parser with NewParser.
package shape

// ShapeFile represents the structure of a YAML shape file.
//
// Example YAML file:
//
//	version: 1
//	shapes:
//	  - id: tracker_export
//	    container_keys: [decks]
//	    id_keys: [ref]
//	    name_keys: [title]
//	    main_keys: [cards]
//	    sideboard_keys: [side]
//	    card_id_keys: [arena_id]
//	    quantity_keys: [count]
type ShapeFile struct {
	// Version is the shape file format version. Only version 1 is supported.
	Version int `yaml:"version"`

	// Shapes is the list of shape definitions, tried in order.
	Shapes []Shape `yaml:"shapes"`
}

// Shape is one JSON layout. Every *_keys field is a list of aliases; the
// first key present in an object is used.
type Shape struct {
	// ID is a unique identifier for this shape.
	ID string `yaml:"id"`

	ContainerKeys   []string `yaml:"container_keys,omitempty"`
	IDKeys          []string `yaml:"id_keys"`
	NameKeys        []string `yaml:"name_keys,omitempty"`
	FormatKeys      []string `yaml:"format_keys,omitempty"`
	DescriptionKeys []string `yaml:"description_keys,omitempty"`

	// MainKeys is required; an object carrying one of these keys is a deck.
	MainKeys      []string `yaml:"main_keys"`
	SideboardKeys []string `yaml:"sideboard_keys,omitempty"`
	CommanderKeys []string `yaml:"commander_keys,omitempty"`

	CardIDKeys   []string `yaml:"card_id_keys,omitempty"`
	QuantityKeys []string `yaml:"quantity_keys,omitempty"`
	CardNameKeys []string `yaml:"card_name_keys,omitempty"`
}
