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
	"fmt"
)

// leaderLength is the fixed size of a MARC21 record leader.
const leaderLength = 24

// Leader is the fixed 24-octet header describing a MARC21 record.
//
// The numeric regions (record length, indicator count, subfield code
// length, base address) are stored as parsed integers; a non-digit
// indicator count or subfield code length is read as 2. The other regions
// keep their raw octet values so that non-standard but harmless values
// survive a read/write round trip.
type Leader struct {
	RecordLength       int     // positions 0-4
	RecordStatus       byte    // position 5
	TypeOfRecord       byte    // position 6
	ImplDefined1       [2]byte // positions 7-8
	CharCodingScheme   byte    // position 9, ' ' = MARC-8, 'a' = UCS/Unicode
	IndicatorCount     int     // position 10
	SubfieldCodeLength int     // position 11
	BaseAddressOfData  int     // positions 12-16
	ImplDefined2       [3]byte // positions 17-19
	EntryMap           [4]byte // positions 20-23
}

// parseDigits parses an ASCII digit region of the leader or directory.
// Leading spaces are treated as zeros since space padded numbers occur in
// the wild.
func parseDigits(b []byte) (int, bool) {
	n := 0
	digitSeen := false
	for _, c := range b {
		if c == ' ' && !digitSeen {
			continue
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		digitSeen = true
		n = n*10 + int(c-'0')
	}
	return n, true
}

// parseLeader parses a 24-octet leader. Numeric regions which do not parse
// make the record unreadable and always fail. Irregularities in the single
// octet regions are reported according to the spec violation policy.
func parseLeader(b []byte, validation *Validation, opts *marcRecordOptions, pos *position) (*Leader, error) {
	if len(b) != leaderLength {
		return nil, newSyntaxErrorf(ErrTruncatedLeader, pos, "got %d octets", len(b))
	}

	l := &Leader{}

	var ok bool
	if l.RecordLength, ok = parseDigits(b[0:5]); !ok {
		return nil, newSyntaxErrorf(ErrMalformedLeader, pos, "record length %q", b[0:5])
	}
	l.RecordStatus = b[5]
	l.TypeOfRecord = b[6]
	copy(l.ImplDefined1[:], b[7:9])
	l.CharCodingScheme = b[9]

	if b[10] >= '0' && b[10] <= '9' {
		l.IndicatorCount = int(b[10] - '0')
	} else {
		// Some records carry a space or garbage here. Every known MARC21
		// record has two indicators, so fall back to that.
		l.IndicatorCount = 2
		if err := opts.errSpec.report(validation,
			newSyntaxErrorf(ErrMalformedLeader, pos, "indicator count %q, assuming 2", b[10])); err != nil {
			return nil, err
		}
	}
	if b[11] >= '0' && b[11] <= '9' {
		l.SubfieldCodeLength = int(b[11] - '0')
	} else {
		l.SubfieldCodeLength = 2
		if err := opts.errSpec.report(validation,
			newSyntaxErrorf(ErrMalformedLeader, pos, "subfield code length %q, assuming 2", b[11])); err != nil {
			return nil, err
		}
	}

	if l.BaseAddressOfData, ok = parseDigits(b[12:17]); !ok {
		return nil, newSyntaxErrorf(ErrMalformedLeader, pos, "base address %q", b[12:17])
	}
	copy(l.ImplDefined2[:], b[17:20])
	copy(l.EntryMap[:], b[20:24])

	for i, c := range l.EntryMap {
		if c < '0' || c > '9' {
			if err := opts.errSpec.report(validation,
				newSyntaxErrorf(ErrMalformedLeader, pos, "entry map position %d is %q", 20+i, c)); err != nil {
				return nil, err
			}
		}
	}

	if l.RecordLength < leaderLength {
		return nil, newSyntaxErrorf(ErrMalformedLeader, pos, "record length %d < %d", l.RecordLength, leaderLength)
	}
	if l.BaseAddressOfData < leaderLength {
		return nil, newSyntaxErrorf(ErrMalformedLeader, pos, "base address %d < %d", l.BaseAddressOfData, leaderLength)
	}

	return l, nil
}

// Bytes serializes the leader to its 24-octet wire form.
func (l *Leader) Bytes() []byte {
	b := make([]byte, 0, leaderLength)
	b = append(b, fmt.Sprintf("%05d", l.RecordLength)...)
	b = append(b, l.RecordStatus, l.TypeOfRecord, l.ImplDefined1[0], l.ImplDefined1[1], l.CharCodingScheme)
	b = append(b, byte('0'+l.IndicatorCount%10), byte('0'+l.SubfieldCodeLength%10))
	b = append(b, fmt.Sprintf("%05d", l.BaseAddressOfData)...)
	b = append(b, l.ImplDefined2[0], l.ImplDefined2[1], l.ImplDefined2[2])
	b = append(b, l.EntryMap[0], l.EntryMap[1], l.EntryMap[2], l.EntryMap[3])
	return b
}

func (l *Leader) String() string {
	return string(l.Bytes())
}

// defaultLeader returns a leader with the values every MARC21 record is
// expected to carry before the marshaler fills in the length regions.
func defaultLeader() *Leader {
	return &Leader{
		RecordStatus:       'n',
		TypeOfRecord:       'a',
		ImplDefined1:       [2]byte{' ', ' '},
		CharCodingScheme:   'a',
		IndicatorCount:     2,
		SubfieldCodeLength: 2,
		ImplDefined2:       [3]byte{' ', ' ', ' '},
		EntryMap:           [4]byte{'4', '5', '0', '0'},
	}
}
