/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package charset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const esc = 0x1b

// marc8Decoder implements Decoder for MARC-8.
//
// MARC-8 is a code switching encoding: each octet is interpreted against
// one of two designated graphic sets, G0 (0x21-0x7E) or G1 (0xA1-0xFE).
// Escape sequences re-designate either set. Every Decode call starts from
// the standard designation, G0 = Basic Latin and G1 = ANSEL; designations
// do not persist across fields.
//
// ANSEL stores combining diacritics before their base letter. The decoder
// buffers combining octets until a base character arrives, emits the base
// followed by its marks in Unicode order, and normalizes the result to
// NFC. Octets without a mapping decode to U+FFFD.
type marc8Decoder struct{}

func (marc8Decoder) Decode(b []byte) (string, error) {
	s := &marc8State{g0: basicLatin, g1: extendedLatin}
	return s.decode(b), nil
}

type marc8State struct {
	g0      *codeTable
	g1      *codeTable
	pending []rune // combining marks waiting for their base character
}

func (s *marc8State) decode(b []byte) string {
	sb := strings.Builder{}
	sb.Grow(len(b))

	for i := 0; i < len(b); {
		c := b[i]

		if c == esc {
			if n := s.designate(b[i:]); n > 0 {
				i += n
				continue
			}
			// Stray escape octet
			s.emit(&sb, utf8.RuneError)
			i++
			continue
		}

		var set *codeTable
		var pos byte
		switch {
		case c == 0x20:
			s.emit(&sb, ' ')
			i++
			continue
		case c < 0x20 || c == 0x7f:
			// Control octets pass through unmapped
			s.emit(&sb, rune(c))
			i++
			continue
		case c <= 0x7e:
			set, pos = s.g0, c
		case c >= 0xa1 && c <= 0xfe:
			set, pos = s.g1, c&0x7f
		default:
			s.emit(&sb, c1Control(c))
			i++
			continue
		}

		if set.multibyte {
			i += s.decodeMultibyte(&sb, set, b[i:])
			continue
		}

		if mark, ok := set.combining[pos]; ok {
			s.pending = append(s.pending, mark)
			i++
			continue
		}
		if r, ok := set.chars[pos]; ok {
			s.emit(&sb, r)
		} else {
			s.emit(&sb, utf8.RuneError)
		}
		i++
	}

	// Orphaned marks at end of input
	for _, mark := range s.pending {
		sb.WriteRune(mark)
	}
	s.pending = s.pending[:0]

	return norm.NFC.String(sb.String())
}

// emit writes a base character followed by any buffered combining marks.
func (s *marc8State) emit(sb *strings.Builder, r rune) {
	sb.WriteRune(r)
	for _, mark := range s.pending {
		sb.WriteRune(mark)
	}
	s.pending = s.pending[:0]
}

// decodeMultibyte consumes one character of a multibyte (EACC) set and
// returns the number of octets used. EACC characters are three octets.
func (s *marc8State) decodeMultibyte(sb *strings.Builder, set *codeTable, b []byte) int {
	if len(b) < 3 {
		s.emit(sb, utf8.RuneError)
		return len(b)
	}
	key := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	if r, ok := set.multichars[key]; ok {
		s.emit(sb, r)
	} else {
		s.emit(sb, utf8.RuneError)
	}
	return 3
}

// designate interprets an escape sequence starting at b[0] == ESC and
// re-designates G0 or G1. It returns the number of octets consumed, or 0
// if b does not start a recognized escape sequence.
func (s *marc8State) designate(b []byte) int {
	if len(b) < 2 {
		return 0
	}

	switch b[1] {
	// Technique 1: single character designations of G0
	case 0x67, 0x62, 0x70: // g, b, p
		if t, ok := designations[b[1]]; ok {
			s.g0 = t
			return 2
		}
		return 0
	case 0x73: // s: back to ASCII
		s.g0 = basicLatin
		return 2

	// Technique 2: intermediate selects the target set
	case 0x28, 0x2c: // ( , -> G0
		if len(b) < 3 {
			return 0
		}
		if t, ok := designations[b[2]]; ok && !t.multibyte {
			s.g0 = t
			return 3
		}
		return 0
	case 0x29, 0x2d: // ) - -> G1
		if len(b) < 3 {
			return 0
		}
		if t, ok := designations[b[2]]; ok && !t.multibyte {
			s.g1 = t
			return 3
		}
		return 0

	// Multibyte designations: ESC $ 1, ESC $ , 1 -> G0; ESC $ ) 1, ESC $ - 1 -> G1
	case 0x24:
		if len(b) < 3 {
			return 0
		}
		switch b[2] {
		case 0x31:
			s.g0 = eacc
			return 3
		case 0x2c:
			if len(b) >= 4 && b[3] == 0x31 {
				s.g0 = eacc
				return 4
			}
		case 0x29, 0x2d:
			if len(b) >= 4 && b[3] == 0x31 {
				s.g1 = eacc
				return 4
			}
		}
		return 0
	}

	return 0
}

// c1Control maps the MARC21 control octets of the C1 range. The remaining
// C1 octets have no MARC meaning and decode to U+FFFD.
func c1Control(c byte) rune {
	switch c {
	case 0x88: // non-sorting characters begin
		return '\u0098'
	case 0x89: // non-sorting characters end
		return '\u009c'
	case 0x8d: // joiner
		return '\u200d'
	case 0x8e: // non-joiner
		return '\u200c'
	default:
		return utf8.RuneError
	}
}
