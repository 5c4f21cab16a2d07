// Package pnm reads and writes the portable anymap family: P1-P3
// (ASCII), P4-P6 (raw), P7 (PAM) and PF/Pf (PFM floating point, where
// the scale factor's sign selects the sample endianness).
package pnm

import (
	"fmt"
	"strconv"
	"strings"
)

// scanner walks a PNM header: whitespace-separated tokens with
// '#'-to-end-of-line comments.
type scanner struct {
	data []byte
	pos  int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '#' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' {
				s.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		s.pos++
	}
}

func (s *scanner) uint() (uint64, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return 0, fmt.Errorf("expected integer at byte %d", s.pos)
	}
	return strconv.ParseUint(string(s.data[start:s.pos]), 10, 64)
}

// bit reads one P1 sample; PBM permits runs like "0110" with no
// separators.
func (s *scanner) bit() (uint64, error) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return 0, fmt.Errorf("unexpected end of bitmap data")
	}
	c := s.data[s.pos]
	if c != '0' && c != '1' {
		return 0, fmt.Errorf("bad bitmap digit %q at byte %d", c, s.pos)
	}
	s.pos++
	return uint64(c - '0'), nil
}

func (s *scanner) token() (string, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", fmt.Errorf("expected token at byte %d", s.pos)
	}
	return string(s.data[start:s.pos]), nil
}

func (s *scanner) float() (float64, error) {
	tok, err := s.token()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(tok, 64)
}

// restOfLine returns the remainder of the current line, trimmed.
func (s *scanner) restOfLine() string {
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] != '\n' {
		s.pos++
	}
	line := strings.TrimSpace(string(s.data[start:s.pos]))
	if s.pos < len(s.data) {
		s.pos++
	}
	return line
}

// binaryStart positions the scanner on the first sample byte: exactly
// one whitespace character follows the last header token.
func (s *scanner) binaryStart() error {
	if s.pos >= len(s.data) || !isSpace(s.data[s.pos]) {
		return fmt.Errorf("missing separator before sample data")
	}
	s.pos++
	return nil
}

func (s *scanner) rest() []byte { return s.data[s.pos:] }
