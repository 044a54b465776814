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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawField is a variable field payload as it appears in the data area,
// without its trailing field terminator.
type rawField struct {
	tag  string
	data string
}

// buildRawRecord assembles an ISO 2709 frame with a well-formed leader,
// directory entries in data area order and correctly computed lengths.
func buildRawRecord(coding byte, fields ...rawField) []byte {
	directory := strings.Builder{}
	data := strings.Builder{}

	for _, f := range fields {
		offset := data.Len()
		data.WriteString(f.data)
		data.WriteByte(FieldTerminator)
		fmt.Fprintf(&directory, "%s%04d%05d", f.tag, data.Len()-offset, offset)
	}
	data.WriteByte(RecordTerminator)

	base := leaderLength + directory.Len() + 1
	recordLength := base + data.Len()
	leader := fmt.Sprintf("%05dnam %c22%05d3a 4500", recordLength, coding, base)

	b := bytes.Buffer{}
	b.WriteString(leader)
	b.WriteString(directory.String())
	b.WriteByte(FieldTerminator)
	b.WriteString(data.String())
	return b.Bytes()
}

func unmarshal(t *testing.T, b []byte, opts ...MarcRecordOption) (*Record, *Validation, error) {
	t.Helper()
	return NewUnmarshaler(opts...).Unmarshal(bufio.NewReader(bytes.NewReader(b)))
}

func TestUnmarshalRecord(t *testing.T) {
	raw := buildRawRecord('a',
		rawField{"001", "u6015439"},
		rawField{"245", "10\x1faSummerland /\x1fcMichael Chabon."},
	)

	record, validation, err := unmarshal(t, raw)
	require.NoError(t, err)
	assert.Empty(t, *validation)

	leader := record.Leader()
	assert.Equal(t, len(raw), leader.RecordLength)
	assert.Equal(t, byte('a'), leader.CharCodingScheme)
	assert.Equal(t, 2, leader.IndicatorCount)
	assert.Equal(t, 2, leader.SubfieldCodeLength)

	require.Len(t, record.GetFields(), 2)

	cf := record.ControlNumberField()
	require.NotNil(t, cf)
	assert.Equal(t, "u6015439", cf.Data())
	assert.Equal(t, "u6015439", record.ControlNumber())

	fields := record.GetFields("245")
	require.Len(t, fields, 1)
	df, ok := fields[0].(*DataField)
	require.True(t, ok)
	assert.Equal(t, byte('1'), df.Indicator1())
	assert.Equal(t, byte('0'), df.Indicator2())
	require.Len(t, df.Subfields(), 2)
	assert.Equal(t, "Summerland /", df.GetSubfield('a').Data())
	assert.Equal(t, "Michael Chabon.", df.GetSubfield('c').Data())

	title, err := df.AppendSubfields("ac", 0)
	require.NoError(t, err)
	assert.Contains(t, title, "Summerland")
	assert.Contains(t, title, "Michael Chabon")
}

func TestUnmarshalUnorderedDirectoryEntries(t *testing.T) {
	// Fields laid out as 001 then 245 but listed in the directory in the
	// reverse order. The reader must slice by (offset, length) and keep
	// directory order.
	f1 := "u6015439\x1e"
	f2 := "10\x1faSummerland /\x1e"
	data := f1 + f2 + "\x1d"

	directory := fmt.Sprintf("%s%04d%05d", "245", len(f2), len(f1)) +
		fmt.Sprintf("%s%04d%05d", "001", len(f1), 0)

	base := leaderLength + len(directory) + 1
	leader := fmt.Sprintf("%05dnam a22%05d3a 4500", base+len(data), base)
	raw := []byte(leader + directory + "\x1e" + data)

	record, _, err := unmarshal(t, raw)
	require.NoError(t, err)

	fields := record.GetFields()
	require.Len(t, fields, 2)
	assert.Equal(t, "245", fields[0].Tag())
	assert.Equal(t, "001", fields[1].Tag())
	assert.Equal(t, "u6015439", record.ControlNumber())
}

func TestUnmarshalEmbeddedFieldTerminator(t *testing.T) {
	// A field terminator octet inside the field body is data; the
	// directory length is authoritative.
	record, _, err := unmarshal(t, buildRawRecord('a',
		rawField{"009", "ab\x1ecd"},
		rawField{"100", "1 \x1faChabon, Michael."},
	))
	require.NoError(t, err)

	cf, ok := record.GetField("009").(*ControlField)
	require.True(t, ok)
	assert.Equal(t, "ab\x1ecd", cf.Data())

	df, ok := record.GetField("100").(*DataField)
	require.True(t, ok)
	assert.Equal(t, "Chabon, Michael.", df.GetSubfield('a').Data())
}

func TestUnmarshalSpacePaddedRecordLength(t *testing.T) {
	raw := buildRawRecord('a', rawField{"001", "x"})
	require.Equal(t, byte('0'), raw[0])
	raw[0] = ' '
	raw[1] = ' '

	record, _, err := unmarshal(t, raw)
	require.NoError(t, err)
	assert.Equal(t, "x", record.ControlNumber())
}

func TestUnmarshalTruncatedLeader(t *testing.T) {
	_, _, err := unmarshal(t, []byte("0012345678"))
	assert.ErrorIs(t, err, ErrTruncatedLeader)
}

func TestUnmarshalMalformedLeader(t *testing.T) {
	raw := buildRawRecord('a', rawField{"001", "x"})
	raw[2] = 'x' // non-digit inside the record length region

	_, _, err := unmarshal(t, raw)
	assert.ErrorIs(t, err, ErrMalformedLeader)
}

func TestUnmarshalMissingRecordTerminator(t *testing.T) {
	raw := buildRawRecord('a', rawField{"001", "u6015439"})
	raw[len(raw)-1] = 0x00

	_, _, err := unmarshal(t, raw)
	assert.ErrorIs(t, err, ErrMissingRecordTerminator)
}

func TestUnmarshalTruncatedRecord(t *testing.T) {
	raw := buildRawRecord('a', rawField{"001", "u6015439"})

	_, _, err := unmarshal(t, raw[:len(raw)-4])
	assert.ErrorIs(t, err, ErrTruncatedRecord)
}

func TestUnmarshalMalformedDirectory(t *testing.T) {
	tests := []struct {
		name   string
		mangle func([]byte) []byte
	}{
		{"length not a multiple of twelve", func(b []byte) []byte {
			// an extra octet between directory and its terminator
			return append(b[:leaderLength+12:leaderLength+12], append([]byte{'x'}, b[leaderLength+12:]...)...)
		}},
		{"non-digit field length", func(b []byte) []byte {
			b[leaderLength+4] = 'x'
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.mangle(buildRawRecord('a', rawField{"001", "u6015439"}))
			_, _, err := unmarshal(t, raw)
			assert.ErrorIs(t, err, ErrMalformedDirectory)
		})
	}
}

func TestUnmarshalDataBeforeFirstSubfieldDelimiter(t *testing.T) {
	raw := buildRawRecord('a', rawField{"245", "10junk\x1faSummerland /"})

	// Default policy: silently discarded
	record, validation, err := unmarshal(t, raw)
	require.NoError(t, err)
	assert.Empty(t, *validation)
	df := record.GetField("245").(*DataField)
	require.Len(t, df.Subfields(), 1)
	assert.Equal(t, "Summerland /", df.GetSubfield('a').Data())

	// ErrWarn: discarded but reported
	_, validation, err = unmarshal(t, raw, WithSyntaxErrorPolicy(ErrWarn))
	require.NoError(t, err)
	assert.Len(t, *validation, 1)
	assert.ErrorIs(t, (*validation)[0], ErrMalformedField)

	// ErrFail: rejected
	_, _, err = unmarshal(t, raw, WithSyntaxErrorPolicy(ErrFail))
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestUnmarshalDirectoryCountDisagreesWithLeader(t *testing.T) {
	raw := buildRawRecord('a', rawField{"001", "x"}, rawField{"005", "y"})

	// Rewrite the leader as if the directory had a single entry. The
	// terminator framed directory wins and both fields survive; the
	// disagreement is reported under ErrWarn.
	base := leaderLength + directoryEntryLength + 1
	recordLength := len(raw) - directoryEntryLength
	copy(raw[0:5], fmt.Sprintf("%05d", recordLength))
	copy(raw[12:17], fmt.Sprintf("%05d", base))

	record, validation, err := unmarshal(t, raw, WithSyntaxErrorPolicy(ErrWarn))
	require.NoError(t, err)
	require.Len(t, *validation, 1)
	assert.ErrorIs(t, (*validation)[0], ErrMalformedDirectory)
	require.Len(t, record.GetFields(), 2)
}

func TestUnmarshalExplicitCharset(t *testing.T) {
	// 0xB0 is the cyrillic capital A in ISO-8859-5
	raw := buildRawRecord(' ',
		rawField{"001", "u6015439"},
		rawField{"245", "10\x1fa\xb0"},
	)

	record, _, err := unmarshal(t, raw, WithEncoding("ISO-8859-5"), WithOverrideCodingScheme(true))
	require.NoError(t, err)
	assert.Equal(t, "u6015439", record.ControlNumber())
	df := record.GetField("245").(*DataField)
	assert.Equal(t, "А", df.GetSubfield('a').Data())
}

func TestUnmarshalExplicitCharsetAgainstUnicodeLeader(t *testing.T) {
	raw := buildRawRecord('a', rawField{"245", "10\x1faChabon"})

	// Without override the leader's Unicode declaration wins
	record, _, err := unmarshal(t, raw, WithEncoding("ISO-8859-5"))
	require.NoError(t, err)
	assert.Equal(t, "Chabon", record.GetField("245").(*DataField).GetSubfield('a').Data())
}

func TestUnmarshalUnknownCharset(t *testing.T) {
	raw := buildRawRecord(' ', rawField{"001", "x"})

	_, _, err := unmarshal(t, raw, WithEncoding("no-such-charset"))
	require.Error(t, err)
}

func TestUnmarshalMarc8Diacritic(t *testing.T) {
	// ANSEL grave accent precedes its base letter
	raw := buildRawRecord(' ', rawField{"245", "10\x1fa\xe1a la carte"})

	record, _, err := unmarshal(t, raw)
	require.NoError(t, err)
	df := record.GetField("245").(*DataField)
	assert.Equal(t, "à la carte", df.GetSubfield('a').Data())
}

func TestUnmarshalInvalidUtf8FieldBody(t *testing.T) {
	raw := buildRawRecord('a', rawField{"245", "10\x1fa\xff\xfe"})

	_, _, err := unmarshal(t, raw)
	assert.ErrorIs(t, err, ErrMalformedField)
}
