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

// NewRecord returns an empty record with a default leader. The length
// regions of the leader are filled in by the Marshaler on write.
func NewRecord() *Record {
	return &Record{leader: defaultLeader()}
}

// NewControlField creates a control field. The tag must be three digits
// with a numeric value below 10.
func NewControlField(tag string, data string) (*ControlField, error) {
	f := &ControlField{data: data}
	if err := f.SetTag(tag); err != nil {
		return nil, err
	}
	return f, nil
}

// NewDataField creates a data field with the given indicators and
// subfields. The tag must be three digits with a numeric value of 10 or
// above.
func NewDataField(tag string, ind1, ind2 byte, subfields ...*Subfield) (*DataField, error) {
	f := &DataField{ind1: ind1, ind2: ind2}
	if err := f.SetTag(tag); err != nil {
		return nil, err
	}
	for _, sf := range subfields {
		f.AddSubfield(sf)
	}
	return f, nil
}

// NewSubfield creates a subfield.
func NewSubfield(code byte, data string) *Subfield {
	return &Subfield{code: code, data: data}
}
