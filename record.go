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
	"strings"
)

const (
	// ISO 2709 delimiter octets
	FieldTerminator   byte = 0x1e // terminates the directory and each variable field
	RecordTerminator  byte = 0x1d // terminates the record
	SubfieldDelimiter byte = 0x1f // introduces a subfield within a data field
)

const (
	// Character coding schemes declared in leader position 9
	CodingSchemeMarc8   byte = ' '
	CodingSchemeUnicode byte = 'a'
)

// Record is one MARC21 record: a leader and an ordered list of variable
// fields. Fields keep the order of the record directory, which is not
// necessarily the ascending data area offset order.
type Record struct {
	leader *Leader
	fields []VariableField
}

func (r *Record) Leader() *Leader {
	return r.leader
}

func (r *Record) SetLeader(leader *Leader) {
	r.leader = leader
}

// AddField appends a field, keeping directory order.
func (r *Record) AddField(f VariableField) {
	r.fields = append(r.fields, f)
}

// RemoveField deletes a field by identity. Unknown fields are ignored.
func (r *Record) RemoveField(f VariableField) {
	for i, field := range r.fields {
		if field == f {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			return
		}
	}
}

// GetFields returns the fields with any of the given tags, in record order.
// Without arguments all fields are returned.
func (r *Record) GetFields(tags ...string) []VariableField {
	if len(tags) == 0 {
		result := make([]VariableField, len(r.fields))
		copy(result, r.fields)
		return result
	}

	var result []VariableField
	for _, f := range r.fields {
		for _, tag := range tags {
			if f.Tag() == tag {
				result = append(result, f)
				break
			}
		}
	}
	return result
}

// GetField returns the first field with the given tag or nil.
func (r *Record) GetField(tag string) VariableField {
	for _, f := range r.fields {
		if f.Tag() == tag {
			return f
		}
	}
	return nil
}

// ControlFields returns all control fields in record order.
func (r *Record) ControlFields() []*ControlField {
	var result []*ControlField
	for _, f := range r.fields {
		if cf, ok := f.(*ControlField); ok {
			result = append(result, cf)
		}
	}
	return result
}

// DataFields returns all data fields in record order.
func (r *Record) DataFields() []*DataField {
	var result []*DataField
	for _, f := range r.fields {
		if df, ok := f.(*DataField); ok {
			result = append(result, df)
		}
	}
	return result
}

// ControlNumberField returns the record's 001 control field or nil.
func (r *Record) ControlNumberField() *ControlField {
	for _, f := range r.fields {
		if cf, ok := f.(*ControlField); ok && cf.Tag() == "001" {
			return cf
		}
	}
	return nil
}

// ControlNumber returns the data of the 001 control field or "".
func (r *Record) ControlNumber() string {
	if cf := r.ControlNumberField(); cf != nil {
		return cf.Data()
	}
	return ""
}

func (r *Record) String() string {
	sb := strings.Builder{}
	sb.WriteString("LEADER ")
	sb.WriteString(r.leader.String())
	sb.WriteByte('\n')
	for _, f := range r.fields {
		sb.WriteString(f.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
