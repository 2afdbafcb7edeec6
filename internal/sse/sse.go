package sse

import (
	"bufio"
	"io"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Frame is one data line of an event stream.
type Frame struct {
	Raw     string // full line as received, kept for diagnostics
	Payload string // line with the data prefix stripped
	Done    bool   // payload was the [DONE] sentinel
}

// Scanner iterates the data frames of a server-sent event stream. It is tied
// to the single underlying connection and cannot be restarted.
type Scanner struct {
	s *bufio.Scanner
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{s: bufio.NewScanner(r)}
}

// Next returns the next data frame in arrival order. Blank lines and lines
// without the data prefix are skipped. ok is false once the stream is
// exhausted; check Err afterwards.
func (s *Scanner) Next() (Frame, bool) {
	for s.s.Scan() {
		line := s.s.Text()
		if line == "" {
			continue
		}
		payload, found := strings.CutPrefix(line, dataPrefix)
		if !found {
			continue
		}
		return Frame{
			Raw:     line,
			Payload: payload,
			Done:    payload == doneSentinel,
		}, true
	}
	return Frame{}, false
}

// Err reports the first error hit by the underlying scanner, if any.
func (s *Scanner) Err() error {
	return s.s.Err()
}
