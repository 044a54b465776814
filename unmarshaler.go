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

package gomarc

import (
	"bufio"
	"bytes"
	"io"

	"github.com/nlnwa/gomarc/charset"
	log "github.com/sirupsen/logrus"
)

// Unmarshaler is the interface that wraps the Unmarshal function.
//
// Unmarshal parses one ISO 2709 framed record and advances the reader past
// its record terminator. On a structural error the reader position is
// undefined and the caller should stop iterating.
type Unmarshaler interface {
	Unmarshal(b *bufio.Reader) (*Record, *Validation, error)
}

type unmarshaler struct {
	opts *marcRecordOptions
}

func NewUnmarshaler(opts ...MarcRecordOption) *unmarshaler {
	return &unmarshaler{opts: newOptions(opts...)}
}

// directoryEntry is one 12-octet entry of the record directory.
type directoryEntry struct {
	tag     string
	length  int
	offset  int
	numeric int
}

const directoryEntryLength = 12

func (u *unmarshaler) Unmarshal(b *bufio.Reader) (*Record, *Validation, error) {
	validation := &Validation{}
	pos := &position{}

	// Leader
	lb := make([]byte, leaderLength)
	n, err := io.ReadFull(b, lb)
	if err == io.EOF {
		return nil, validation, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return nil, validation, newSyntaxErrorf(ErrTruncatedLeader, pos, "got %d octets", n)
	}
	if err != nil {
		return nil, validation, err
	}
	leader, err := parseLeader(lb, validation, u.opts, pos)
	if err != nil {
		return nil, validation, err
	}
	pos.incrOffset(leaderLength)

	// Directory, up to and including its terminator
	dir, err := b.ReadBytes(FieldTerminator)
	if err == io.EOF {
		return nil, validation, newSyntaxError(ErrMalformedDirectory, "unterminated directory", pos)
	}
	if err != nil {
		return nil, validation, err
	}
	entries, err := u.parseDirectory(dir[:len(dir)-1], leader, validation, pos)
	if err != nil {
		return nil, validation, err
	}
	pos.incrOffset(len(dir))

	// Data area
	dataLen := leader.RecordLength - leader.BaseAddressOfData
	if dataLen <= 0 {
		return nil, validation, newSyntaxErrorf(ErrMalformedLeader, pos,
			"record length %d inside base address %d", leader.RecordLength, leader.BaseAddressOfData)
	}
	data := make([]byte, dataLen)
	if n, err := io.ReadFull(b, data); err != nil {
		return nil, validation, newSyntaxErrorf(ErrTruncatedRecord, pos.incrOffset(n),
			"data area ends after %d of %d octets", n, dataLen)
	}
	if data[dataLen-1] != RecordTerminator {
		return nil, validation, newSyntaxErrorf(ErrMissingRecordTerminator,
			pos.incrOffset(dataLen-1), "got 0x%02x", data[dataLen-1])
	}

	decoder, err := u.resolveDecoder(leader)
	if err != nil {
		return nil, validation, err
	}

	record := &Record{leader: leader}
	for _, e := range entries {
		fieldPos := &position{offset: pos.offset + int64(e.offset)}

		if e.offset+e.length > dataLen {
			return nil, validation, newSyntaxErrorf(ErrTruncatedRecord, fieldPos,
				"field %s extends to %d beyond data area of %d octets", e.tag, e.offset+e.length, dataLen)
		}
		slice := data[e.offset : e.offset+e.length]

		// The directory length is authoritative: terminators embedded in
		// the body are data, only the final octet is framing.
		if len(slice) > 0 && slice[len(slice)-1] == FieldTerminator {
			slice = slice[:len(slice)-1]
		} else if err := u.opts.errSyntax.report(validation,
			newSyntaxErrorf(ErrMalformedField, fieldPos, "field %s has no terminator", e.tag)); err != nil {
			return nil, validation, err
		}

		var field VariableField
		if e.numeric < 10 {
			field, err = u.decodeControlField(e, slice, decoder, fieldPos)
		} else {
			field, err = u.decodeDataField(e, slice, leader, decoder, validation, fieldPos)
		}
		if err != nil {
			return nil, validation, err
		}
		record.AddField(field)
	}

	return record, validation, nil
}

func (u *unmarshaler) parseDirectory(body []byte, leader *Leader, validation *Validation, pos *position) ([]directoryEntry, error) {
	if len(body)%directoryEntryLength != 0 {
		return nil, newSyntaxErrorf(ErrMalformedDirectory, pos, "length %d is not a multiple of %d",
			len(body), directoryEntryLength)
	}

	entries := make([]directoryEntry, 0, len(body)/directoryEntryLength)
	for i := 0; i < len(body); i += directoryEntryLength {
		e := body[i : i+directoryEntryLength]
		entryPos := &position{offset: pos.offset + int64(i)}

		numeric, ok := parseDigits(e[0:3])
		if !ok {
			return nil, newSyntaxErrorf(ErrMalformedDirectory, entryPos, "tag %q", e[0:3])
		}
		length, ok := parseDigits(e[3:7])
		if !ok {
			return nil, newSyntaxErrorf(ErrMalformedDirectory, entryPos, "field length %q", e[3:7])
		}
		offset, ok := parseDigits(e[7:12])
		if !ok {
			return nil, newSyntaxErrorf(ErrMalformedDirectory, entryPos, "field offset %q", e[7:12])
		}
		entries = append(entries, directoryEntry{
			tag:     string(e[0:3]),
			length:  length,
			offset:  offset,
			numeric: numeric,
		})
	}

	// The terminator frames the directory; the entry count derived from the
	// base address is only checked against it.
	if want := (leader.BaseAddressOfData - leaderLength - 1) / directoryEntryLength; want != len(entries) {
		if err := u.opts.errSyntax.report(validation, newSyntaxErrorf(ErrMalformedDirectory, pos,
			"leader implies %d directory entries, found %d", want, len(entries))); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (u *unmarshaler) decodeControlField(e directoryEntry, body []byte, decoder charset.Decoder, pos *position) (*ControlField, error) {
	data, err := decoder.Decode(body)
	if err != nil {
		return nil, newWrappedSyntaxError(ErrMalformedField, "control field "+e.tag, pos, err)
	}
	return &ControlField{tag: e.tag, data: data}, nil
}

func (u *unmarshaler) decodeDataField(e directoryEntry, body []byte, leader *Leader, decoder charset.Decoder, validation *Validation, pos *position) (*DataField, error) {
	field := &DataField{tag: e.tag, ind1: ' ', ind2: ' '}

	indicatorCount := leader.IndicatorCount
	if len(body) < indicatorCount {
		if err := u.opts.errSyntax.report(validation, newSyntaxErrorf(ErrMalformedField, pos,
			"field %s too short for %d indicators", e.tag, indicatorCount)); err != nil {
			return nil, err
		}
		indicatorCount = len(body)
	}
	if indicatorCount > 0 {
		field.ind1 = body[0]
	}
	if indicatorCount > 1 {
		field.ind2 = body[1]
	}

	segments := bytes.Split(body[indicatorCount:], []byte{SubfieldDelimiter})

	// Data between the indicators and the first subfield delimiter is not
	// addressable in the model and is discarded, matching common practice.
	if len(segments[0]) > 0 {
		if err := u.opts.errSyntax.report(validation, newSyntaxErrorf(ErrMalformedField, pos,
			"field %s has %d octets before the first subfield delimiter", e.tag, len(segments[0]))); err != nil {
			return nil, err
		}
	}

	for _, segment := range segments[1:] {
		if len(segment) == 0 {
			continue
		}
		data, err := decoder.Decode(segment[1:])
		if err != nil {
			return nil, newWrappedSyntaxError(ErrMalformedField, "field "+e.tag, pos, err)
		}
		field.AddSubfield(&Subfield{code: segment[0], data: data})
	}

	return field, nil
}

// resolveDecoder selects the charset for field data. An explicit encoding
// takes precedence unless the leader positively declares Unicode; with the
// override option it always does.
func (u *unmarshaler) resolveDecoder(leader *Leader) (charset.Decoder, error) {
	name := u.opts.encoding
	if name != "" && (u.opts.overrideEncoding || leader.CharCodingScheme != CodingSchemeUnicode) {
		log.Debugf("decoding record with explicit charset %s", name)
		return charset.NewDecoder(name)
	}
	if leader.CharCodingScheme == CodingSchemeUnicode {
		return charset.NewDecoder(charset.Utf8)
	}
	return charset.NewDecoder(charset.Marc8)
}
