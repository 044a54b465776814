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
	"io"
	"os"

	"github.com/nlnwa/gomarc/internal/countingreader"
)

// MarcStreamReader reads MARC21 records from a byte stream, one record per
// call to Next. It is a pull iterator without internal buffering of
// records; a single instance is not safe for concurrent use.
type MarcStreamReader struct {
	marcReader     Unmarshaler
	bufferedReader *bufio.Reader
	err            error
}

// NewMarcStreamReader creates a MarcStreamReader reading from r.
func NewMarcStreamReader(r io.Reader, opts ...MarcRecordOption) *MarcStreamReader {
	return &MarcStreamReader{
		marcReader:     NewUnmarshaler(opts...),
		bufferedReader: bufio.NewReaderSize(r, 4*1024),
	}
}

// HasNext reports whether at least one more octet is available. It peeks a
// single octet and never consumes input. An I/O error other than EOF is
// surfaced by the following call to Next.
func (r *MarcStreamReader) HasNext() bool {
	if r.err != nil {
		return false
	}
	_, err := r.bufferedReader.Peek(1)
	if err == io.EOF {
		return false
	}
	if err != nil {
		r.err = err
		return true
	}
	return true
}

// Next decodes the next record, advancing the stream past its record
// terminator. After a structural error the stream position is undefined
// and further calls return the same error.
//
// At end of stream only io.EOF is returned.
func (r *MarcStreamReader) Next() (*Record, *Validation, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	record, validation, err := r.marcReader.Unmarshal(r.bufferedReader)
	if err != nil && err != io.EOF {
		r.err = err
	}
	return record, validation, err
}

// MarcFileReader reads MARC21 records from a file, keeping track of the
// byte offset each record starts at.
type MarcFileReader struct {
	file           *os.File
	initialOffset  int64
	offset         int64
	marcReader     Unmarshaler
	countingReader *countingreader.Reader
	bufferedReader *bufio.Reader
}

// NewMarcFileReader opens filename and positions the reader at offset.
func NewMarcFileReader(filename string, offset int64, opts ...MarcRecordOption) (*MarcFileReader, error) {
	file, err := os.Open(filename) // For read access.
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(offset, 0); err != nil {
		_ = file.Close()
		return nil, err
	}

	mf := &MarcFileReader{
		file:          file,
		offset:        offset,
		initialOffset: offset,
		marcReader:    NewUnmarshaler(opts...),
	}
	mf.countingReader = countingreader.New(file)
	mf.bufferedReader = bufio.NewReaderSize(mf.countingReader, 4*1024)
	return mf, nil
}

// Next reads the next record from the file and returns it together with
// the offset at which it starts. When at end of file only io.EOF is
// returned.
func (mf *MarcFileReader) Next() (*Record, int64, *Validation, error) {
	mf.offset = mf.initialOffset + mf.countingReader.N() - int64(mf.bufferedReader.Buffered())

	record, validation, err := mf.marcReader.Unmarshal(mf.bufferedReader)
	return record, mf.offset, validation, err
}

// Close closes the MarcFileReader.
func (mf *MarcFileReader) Close() error {
	return mf.file.Close()
}
