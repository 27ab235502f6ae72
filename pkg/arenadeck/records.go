package arenadeck

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arenadeck/arenadeck-go/internal/blockscan"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// FeedResult is what one Feed call produced.
type FeedResult struct {
	// Decks in file order.
	Decks []deck.Deck
	// Errors holds one *ParseError per block that was skipped.
	Errors []error
}

// RecordParser turns consecutive byte ranges of the log into decks. A block
// cut off at the end of a range is completed by a later Feed.
type RecordParser struct {
	parser  Parser
	scanner *blockscan.Scanner
	log     *slog.Logger
	now     func() time.Time
}

// NewRecordParser returns a RecordParser using p, or DefaultParser if p is nil.
func NewRecordParser(p Parser, logger *slog.Logger) *RecordParser {
	if p == nil {
		p = DefaultParser{}
	}
	if logger == nil {
		logger = discardLogger
	}
	return &RecordParser{
		parser:  p,
		scanner: blockscan.New(blockscan.DefaultMaxPending),
		log:     logger,
		now:     time.Now,
	}
}

// Feed scans data, which starts at the given file offset. Malformed blocks
// and parser failures are logged and returned in FeedResult.Errors; they
// never stop the scan. The returned error is non-nil only when ctx is done.
func (r *RecordParser) Feed(ctx context.Context, offset int64, data []byte) (FeedResult, error) {
	var out FeedResult

	blocks, scanErrs := r.scanner.Feed(offset, data)
	for _, err := range scanErrs {
		pe := &ParseError{Offset: offset, Err: err}
		var me *blockscan.MalformedError
		if errors.As(err, &me) {
			pe.Offset = me.Offset
		}
		r.log.Warn("skipping malformed block", "offset", pe.Offset, "err", err)
		out.Errors = append(out.Errors, pe)
	}

	capturedAt := r.now()
	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		res, err := r.parser.ParseBlock(ctx, Block{Offset: b.Offset, Raw: b.Raw, CapturedAt: capturedAt})
		for _, w := range res.Warnings {
			r.log.Warn("deck entry", "offset", b.Offset, "warning", w)
		}
		out.Decks = append(out.Decks, res.Decks...)
		if err != nil {
			r.log.Warn("skipping unparsable block", "offset", b.Offset, "err", err)
			out.Errors = append(out.Errors, &ParseError{Offset: b.Offset, Err: err})
		}
	}
	return out, nil
}

// Pending returns the offset of a buffered incomplete block, if any.
func (r *RecordParser) Pending() (int64, bool) {
	return r.scanner.Pending()
}

// Reset drops buffered bytes, e.g. after the log file was replaced.
func (r *RecordParser) Reset() {
	r.scanner.Reset()
}
