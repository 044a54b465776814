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

// Package charset converts MARC field data to Go strings.
//
// Three schemes are handled natively: UTF-8, ISO-8859-1 and MARC-8 (the
// legacy code switching encoding of MARC21, with the ANSEL extended Latin
// set and its combining diacritics). Any other charset name is resolved
// through the IANA registry of golang.org/x/text.
//
// The MARC-8 decoder emits NFC normalized strings and is error tolerant:
// octets without a mapping decode to U+FFFD.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Names of the natively handled charsets.
const (
	Marc8    = "MARC-8"
	Utf8     = "UTF-8"
	Iso88591 = "ISO-8859-1"
)

var (
	// ErrUnknownCharset is returned by NewDecoder for names the IANA
	// registry cannot resolve.
	ErrUnknownCharset = errors.New("unknown charset")
	// ErrDecode is returned by Decode for byte sequences which are not
	// valid in the decoder's charset.
	ErrDecode = errors.New("decode error")
)

// Decoder is the interface that wraps the Decode function.
//
// Decode converts a byte slice to a Go string. Decoders carry no state
// between calls and are safe for concurrent use.
type Decoder interface {
	Decode(b []byte) (string, error)
}

// NewDecoder resolves a charset name to a Decoder. "MARC-8", "UTF-8" and
// "ISO-8859-1" (ignoring case, with or without separators) are handled
// natively; any other name is looked up in the IANA charset registry.
func NewDecoder(name string) (Decoder, error) {
	switch normalizeName(name) {
	case "MARC8", "ANSEL", "MARCANSEL":
		return marc8Decoder{}, nil
	case "UTF8":
		return utf8Decoder{}, nil
	case "ISO88591", "LATIN1":
		return &xtextDecoder{name: Iso88591, enc: charmap.ISO8859_1}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharset, name)
	}
	return &xtextDecoder{name: name, enc: enc}, nil
}

func normalizeName(name string) string {
	sb := strings.Builder{}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r - ('a' - 'A'))
		case r == '-' || r == '_' || r == ' ':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

type utf8Decoder struct{}

func (utf8Decoder) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: invalid UTF-8 sequence", ErrDecode)
	}
	return string(b), nil
}

// xtextDecoder delegates to a golang.org/x/text encoding. A fresh
// encoding.Decoder is created per call since those carry transform state.
type xtextDecoder struct {
	name string
	enc  encoding.Encoding
}

func (d *xtextDecoder) Decode(b []byte) (string, error) {
	s, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecode, d.name, err)
	}
	return string(s), nil
}
