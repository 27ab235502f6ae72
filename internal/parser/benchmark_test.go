package parser

import (
	"strings"
	"testing"
	"time"
)

func BenchmarkParseDocument_ArenaDeck(b *testing.B) {
	raw := []byte(`{"deckId":"abc123","name":"Mono Green Ramp","format":"Standard",` +
		`"mainDeck":[{"cardId":70001,"quantity":4},{"cardId":70002,"quantity":20}],` +
		`"sideboard":[{"cardId":70003,"quantity":2}]}`)
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseDocument(raw, DefaultShapes, now)
	}
}

func BenchmarkParseDocument_NoMatch(b *testing.B) {
	raw := []byte(`{"transactionId":"t","greToClientEvent":{"greToClientMessages":[]}}`)
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseDocument(raw, DefaultShapes, now)
	}
}

func BenchmarkParseDocument_LargeFlatDeck(b *testing.B) {
	var sb strings.Builder
	sb.WriteString(`{"deckId":"big","mainDeck":[`)
	for i := 0; i < 250; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("70001,4")
	}
	sb.WriteString(`]}`)
	raw := []byte(sb.String())
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseDocument(raw, DefaultShapes, now)
	}
}
