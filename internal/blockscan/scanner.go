// Package blockscan locates brace-delimited JSON documents embedded in a
// stream of free-text log output.
//
// The scanner is fed consecutive byte ranges of a file that is still being
// written. A document cut off by the end of the current range is kept and
// completed by a later Feed; a document that cannot be valid JSON is reported
// and skipped.
package blockscan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxPending is the default limit on bytes held for an incomplete block.
const DefaultMaxPending = 8 * 1024 * 1024

// ErrBlockTooLarge is wrapped by a MalformedError when an incomplete block
// grows beyond the pending limit.
var ErrBlockTooLarge = errors.New("incomplete block exceeds pending limit")

// State is the scanner's position in its scan cycle.
type State int

const (
	// StateScanning looks for the next opening brace.
	StateScanning State = iota
	// StateBuffering holds an incomplete block until more bytes arrive.
	StateBuffering
	// StateEmitting has just decoded a complete block.
	StateEmitting
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateBuffering:
		return "buffering"
	case StateEmitting:
		return "emitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Block is one complete JSON document found in the stream.
type Block struct {
	// Offset is the absolute file offset of the opening brace.
	Offset int64
	// Raw is the document text; it does not alias the fed buffer.
	Raw []byte
}

// End returns the absolute offset one past the closing brace.
func (b Block) End() int64 {
	return b.Offset + int64(len(b.Raw))
}

// MalformedError reports a block that starts with a brace but is not valid
// JSON. Scanning resumes right after the offending brace.
type MalformedError struct {
	Offset int64
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed block at offset %d: %v", e.Offset, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Scanner is a resumable block scanner. It is not safe for concurrent use.
type Scanner struct {
	maxPending int

	state   State
	pending []byte // incomplete block, starts with '{'
	pendOff int64  // absolute offset of pending[0]
	next    int64  // offset the next Feed is expected to start at
	started bool
}

// New returns a Scanner. maxPending <= 0 selects DefaultMaxPending.
func New(maxPending int) *Scanner {
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	return &Scanner{maxPending: maxPending}
}

// State returns the scanner state after the last Feed.
func (s *Scanner) State() State {
	return s.state
}

// Pending reports the absolute offset of a buffered incomplete block.
// Bytes from that offset on have not been fully consumed yet.
func (s *Scanner) Pending() (int64, bool) {
	if s.state != StateBuffering {
		return 0, false
	}
	return s.pendOff, true
}

// Reset discards any buffered bytes, e.g. after the file was rotated.
func (s *Scanner) Reset() {
	s.pending = nil
	s.pendOff = 0
	s.next = 0
	s.started = false
	s.state = StateScanning
}

// Feed scans data, which starts at absolute file offset offset.
//
// It returns the complete blocks in file order and one MalformedError per
// skipped block. If data does not continue exactly where the previous Feed
// ended, the buffered partial block belongs to a different range and is
// discarded.
func (s *Scanner) Feed(offset int64, data []byte) ([]Block, []error) {
	if s.started && offset != s.next {
		s.pending = nil
		s.state = StateScanning
	}
	s.started = true
	s.next = offset + int64(len(data))

	work, base := data, offset
	if s.state == StateBuffering && len(s.pending) > 0 {
		work = append(s.pending, data...)
		base = s.pendOff
	}
	s.pending = nil
	s.state = StateScanning

	var (
		blocks []Block
		errs   []error
		pos    int
	)
	for pos < len(work) {
		i := bytes.IndexByte(work[pos:], '{')
		if i < 0 {
			break
		}
		start := pos + i

		end, err := decodeAt(work, start)
		switch {
		case err == nil:
			s.state = StateEmitting
			blocks = append(blocks, Block{
				Offset: base + int64(start),
				Raw:    bytes.Clone(work[start:end]),
			})
			pos = end

		case errors.Is(err, io.ErrUnexpectedEOF):
			if len(work)-start > s.maxPending {
				errs = append(errs, &MalformedError{Offset: base + int64(start), Err: ErrBlockTooLarge})
				pos = start + 1
				continue
			}
			s.state = StateBuffering
			s.pending = bytes.Clone(work[start:])
			s.pendOff = base + int64(start)
			return blocks, errs

		default:
			errs = append(errs, &MalformedError{Offset: base + int64(start), Err: err})
			if end, ok := balancedEnd(work, start); ok {
				pos = end
			} else {
				pos = start + 1
			}
		}
	}

	s.state = StateScanning
	return blocks, errs
}

// decodeAt decodes one JSON value starting at work[start] and returns the
// index one past its end. An incomplete value yields io.ErrUnexpectedEOF.
func decodeAt(work []byte, start int) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(work[start:]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return 0, err
	}
	return start + int(dec.InputOffset()), nil
}

// balancedEnd returns the index one past the brace that closes the '{' at
// work[start], ignoring braces inside JSON strings. ok is false if the brace
// is not closed within work.
func balancedEnd(work []byte, start int) (end int, ok bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(work); i++ {
		c := work[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
