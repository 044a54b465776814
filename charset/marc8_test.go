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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeMarc8(t *testing.T, b []byte) string {
	t.Helper()
	s, err := marc8Decoder{}.Decode(b)
	require.NoError(t, err)
	return s
}

func TestMarc8Ascii(t *testing.T) {
	// pure ASCII decodes byte for byte
	input := "Summerland / Michael Chabon. 2002!"
	assert.Equal(t, input, decodeMarc8(t, []byte(input)))
}

func TestMarc8CombiningDiacritics(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"grave before base", []byte{0xe1, 0x61}, "à"},
		{"acute before base", []byte{0xe2, 0x65}, "é"},
		{"diaeresis before base", []byte{0xe8, 0x6f}, "ö"},
		{"hacek before base", []byte{0xe9, 0x72}, "ř"},
		{"diacritic mid word", []byte{'c', 'a', 'f', 0xe2, 'e'}, "café"},
		{"two diacritics buffer until base", []byte{0xe3, 0xe2, 0x61}, "ấ"},
		{"orphaned diacritic at end", []byte{'a', 0xe1}, "à"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeMarc8(t, tt.input))
		})
	}
}

func TestMarc8AnselSpacingCharacters(t *testing.T) {
	// G1 octets select ANSEL without any escape
	assert.Equal(t, "ø", decodeMarc8(t, []byte{0xb2}))
	assert.Equal(t, "Łódź", decodeMarc8(t, []byte{0xa1, 0xe2, 0x6f, 0x64, 0xe2, 0x7a}))
	assert.Equal(t, "æ", decodeMarc8(t, []byte{0xb5}))
}

func TestMarc8EscapeToGreek(t *testing.T) {
	// ESC ( S designates basic greek on G0, ESC ( B back to ASCII
	input := []byte{0x1b, 0x28, 0x53, 0x61, 0x62, 0x1b, 0x28, 0x42, 0x61}
	assert.Equal(t, "αβa", decodeMarc8(t, input))
}

func TestMarc8EscapeToCyrillic(t *testing.T) {
	// ESC ( N designates basic cyrillic on G0
	input := []byte{0x1b, 0x28, 0x4e, 0x41, 0x45, 0x5a, 0x1b, 0x28, 0x42, 0x7a}
	assert.Equal(t, "аез" + "z", decodeMarc8(t, input))
}

func TestMarc8EscapeToHebrew(t *testing.T) {
	input := []byte{0x1b, 0x28, 0x32, 0x60, 0x61}
	assert.Equal(t, "אב", decodeMarc8(t, input))
}

func TestMarc8EscapeToArabic(t *testing.T) {
	// 0x41 is hamza in the ASMO 449 arrangement
	input := []byte{0x1b, 0x28, 0x33, 0x41}
	assert.Equal(t, "ء", decodeMarc8(t, input))
}

func TestMarc8SuperscriptsAndSubscripts(t *testing.T) {
	// technique 1 escapes designate G0 directly; ESC s returns to ASCII
	input := []byte{0x1b, 0x70, 0x33, 0x1b, 0x73, 0x33, 0x1b, 0x62, 0x33}
	assert.Equal(t, "³3₃", decodeMarc8(t, input))
}

func TestMarc8GreekSymbols(t *testing.T) {
	input := []byte{0x1b, 0x67, 0x61, 0x1b, 0x73, 0x61}
	assert.Equal(t, "αa", decodeMarc8(t, input))
}

func TestMarc8G1Designation(t *testing.T) {
	// ESC ) S designates basic greek on G1; G0 stays ASCII
	input := []byte{0x1b, 0x29, 0x53, 0xe1, 0x61}
	assert.Equal(t, "αa", decodeMarc8(t, input))
}

func TestMarc8DesignationDoesNotPersist(t *testing.T) {
	d := marc8Decoder{}

	s, err := d.Decode([]byte{0x1b, 0x28, 0x53, 0x61})
	require.NoError(t, err)
	assert.Equal(t, "α", s)

	// a fresh call starts from G0 = ASCII again
	s, err = d.Decode([]byte{0x61})
	require.NoError(t, err)
	assert.Equal(t, "a", s)
}

func TestMarc8UnknownOctets(t *testing.T) {
	assert.Equal(t, "�", decodeMarc8(t, []byte{0x80}))
	assert.Equal(t, "a�b", decodeMarc8(t, []byte{'a', 0xff, 'b'}))
}

func TestMarc8StrayEscape(t *testing.T) {
	// an escape introducing no valid sequence decodes to the replacement character
	assert.Equal(t, "�z", decodeMarc8(t, []byte{0x1b, 0x7a}))
}

func TestMarc8Eacc(t *testing.T) {
	// ESC $ 1 designates the multibyte East Asian set: three octets are
	// consumed per character, unmapped characters decode to U+FFFD
	input := []byte{0x1b, 0x24, 0x31, 0x21, 0x30, 0x21, 0x1b, 0x28, 0x42, 0x61}
	assert.Equal(t, "�a", decodeMarc8(t, input))

	// truncated multibyte character
	input = []byte{0x1b, 0x24, 0x31, 0x21, 0x30}
	assert.Equal(t, "�", decodeMarc8(t, input))
}

func TestMarc8NonSortingControls(t *testing.T) {
	assert.Equal(t, "\u0098a\u009c", decodeMarc8(t, []byte{0x88, 'a', 0x89}))
	assert.Equal(t, "a\u200db", decodeMarc8(t, []byte{'a', 0x8d, 'b'}))
}
