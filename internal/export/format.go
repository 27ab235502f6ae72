package export

import (
	"fmt"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatMTGA Format = "mtga"
)

// AllFormats lists every format in export order.
var AllFormats = []Format{FormatJSON, FormatText, FormatMTGA}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "txt"
	case FormatMTGA:
		return "mtga.txt"
	default:
		return string(f)
	}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatText, FormatMTGA:
		return true
	}
	return false
}

// ParseFormats parses a comma-separated list such as "json,text".
// Duplicates are dropped; the result follows AllFormats order.
func ParseFormats(s string) ([]Format, error) {
	want := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if part == "txt" {
			part = string(FormatText)
		}
		f := Format(part)
		if !f.Valid() {
			return nil, fmt.Errorf("unknown export format %q (valid: json, text, mtga)", part)
		}
		want[f] = true
	}
	if len(want) == 0 {
		return nil, fmt.Errorf("no export formats given")
	}
	var out []Format
	for _, f := range AllFormats {
		if want[f] {
			out = append(out, f)
		}
	}
	return out, nil
}
