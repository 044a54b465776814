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
	"fmt"
	"io"
)

// Marshaler is the interface that wraps the Marshal function.
//
// Marshal converts a MARC record to its ISO 2709 serialized form and
// returns the number of bytes written or any error encountered.
type Marshaler interface {
	Marshal(w io.Writer, record *Record) (int64, error)
}

type defaultMarshaler struct {
}

func NewMarshaler() Marshaler {
	return &defaultMarshaler{}
}

// maxRecordLength is the five digit ceiling ISO 2709 puts on a record.
const maxRecordLength = 99999

// Marshal writes the record with a recomputed directory and length
// regions. Field data is written as UTF-8 and the leader's coding scheme
// is set accordingly; MARC-8 is never produced on write.
func (m *defaultMarshaler) Marshal(w io.Writer, record *Record) (int64, error) {
	directory := &bytes.Buffer{}
	data := &bytes.Buffer{}

	for _, field := range record.GetFields() {
		offset := data.Len()

		switch f := field.(type) {
		case *ControlField:
			data.WriteString(f.Data())
		case *DataField:
			data.WriteByte(f.Indicator1())
			data.WriteByte(f.Indicator2())
			for _, sf := range f.Subfields() {
				data.WriteByte(SubfieldDelimiter)
				data.WriteByte(sf.Code())
				data.WriteString(sf.Data())
			}
		}
		data.WriteByte(FieldTerminator)

		length := data.Len() - offset
		if length > 9999 {
			return 0, fmt.Errorf("gomarc: field %s is %d octets, exceeding the directory length region", field.Tag(), length)
		}
		fmt.Fprintf(directory, "%s%04d%05d", field.Tag(), length, offset)
	}
	data.WriteByte(RecordTerminator)

	leader := *record.Leader()
	leader.BaseAddressOfData = leaderLength + directory.Len() + 1
	leader.RecordLength = leader.BaseAddressOfData + data.Len()
	leader.CharCodingScheme = CodingSchemeUnicode
	if leader.RecordLength > maxRecordLength {
		return 0, fmt.Errorf("gomarc: record is %d octets, exceeding the leader length region", leader.RecordLength)
	}

	var bytesWritten int64

	n, err := w.Write(leader.Bytes())
	bytesWritten += int64(n)
	if err != nil {
		return bytesWritten, err
	}

	bw, err := directory.WriteTo(w)
	bytesWritten += bw
	if err != nil {
		return bytesWritten, err
	}

	n, err = w.Write([]byte{FieldTerminator})
	bytesWritten += int64(n)
	if err != nil {
		return bytesWritten, err
	}

	bw, err = data.WriteTo(w)
	bytesWritten += bw
	return bytesWritten, err
}
