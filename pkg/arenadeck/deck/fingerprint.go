package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// fingerprintDomain separates deck fingerprints from any other sha256 use.
// The version suffix allows the content encoding to change later.
const fingerprintDomain = "arenadeck/deck/v1"

// fingerprintDoc is the canonical form hashed into a Fingerprint.
// Field order is fixed by the struct, card order follows the log.
type fingerprintDoc struct {
	ID        string     `json:"id"`
	Main      [][2]int64 `json:"main"`
	Sideboard [][2]int64 `json:"sideboard"`
	Commander [][2]int64 `json:"commander"`
}

// Fingerprint identifies the exported content of a deck: its ID plus its
// card lists. Name, format and capture time do not contribute.
func (d *Deck) Fingerprint() string {
	doc := fingerprintDoc{
		ID:        d.ID,
		Main:      cardPairs(d.MainDeck),
		Sideboard: cardPairs(d.Sideboard),
		Commander: cardPairs(d.Commander),
	}
	// Marshal of fixed-shape ints and strings cannot fail.
	data, _ := json.Marshal(doc)

	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func cardPairs(cards []Card) [][2]int64 {
	pairs := make([][2]int64, len(cards))
	for i, c := range cards {
		pairs[i] = [2]int64{c.CardID, int64(c.Quantity)}
	}
	return pairs
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
