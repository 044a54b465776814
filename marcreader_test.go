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
	"bytes"
	"io"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiRecordStream() []byte {
	b := bytes.Buffer{}
	b.Write(buildRawRecord('a',
		rawField{"001", "rec1"},
		rawField{"245", "10\x1faSummerland /\x1fcMichael Chabon."},
	))
	b.Write(buildRawRecord('a',
		rawField{"001", "rec2"},
		rawField{"245", "00\x1faWonder boys"},
	))
	b.Write(buildRawRecord('a',
		rawField{"001", "rec3"},
	))
	return b.Bytes()
}

func TestMarcStreamReader(t *testing.T) {
	reader := NewMarcStreamReader(bytes.NewReader(multiRecordStream()))

	var controlNumbers []string
	for reader.HasNext() {
		record, validation, err := reader.Next()
		require.NoError(t, err)
		assert.Empty(t, *validation)
		controlNumbers = append(controlNumbers, record.ControlNumber())
	}
	assert.Equal(t, []string{"rec1", "rec2", "rec3"}, controlNumbers)
	assert.False(t, reader.HasNext())

	_, _, err := reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestMarcStreamReaderDeterministic(t *testing.T) {
	stream := multiRecordStream()

	read := func() []string {
		var result []string
		reader := NewMarcStreamReader(bytes.NewReader(stream))
		for reader.HasNext() {
			record, _, err := reader.Next()
			require.NoError(t, err)
			result = append(result, record.String())
		}
		return result
	}

	assert.Equal(t, read(), read())
}

func TestMarcStreamReaderStopsAfterError(t *testing.T) {
	raw := buildRawRecord('a', rawField{"001", "rec1"})
	raw[len(raw)-1] = 0x00
	raw = append(raw, buildRawRecord('a', rawField{"001", "rec2"})...)

	reader := NewMarcStreamReader(bytes.NewReader(raw))
	require.True(t, reader.HasNext())

	_, _, err := reader.Next()
	require.ErrorIs(t, err, ErrMissingRecordTerminator)

	// the reader position is undefined after a structural error
	assert.False(t, reader.HasNext())
	_, _, err = reader.Next()
	assert.ErrorIs(t, err, ErrMissingRecordTerminator)
}

func TestMarcFileReader(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.mrc")
	require.NoError(t, ioutil.WriteFile(filename, multiRecordStream(), 0644))

	mf, err := NewMarcFileReader(filename, 0)
	require.NoError(t, err)
	defer mf.Close()

	var offsets []int64
	expectedOffset := int64(0)
	for {
		record, offset, _, err := mf.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		offsets = append(offsets, offset)
		assert.Equal(t, expectedOffset, offset)
		expectedOffset += int64(record.Leader().RecordLength)
	}
	require.Len(t, offsets, 3)

	// reopen at the offset of the second record
	mf2, err := NewMarcFileReader(filename, offsets[1])
	require.NoError(t, err)
	defer mf2.Close()

	record, offset, _, err := mf2.Next()
	require.NoError(t, err)
	assert.Equal(t, offsets[1], offset)
	assert.Equal(t, "rec2", record.ControlNumber())
}
