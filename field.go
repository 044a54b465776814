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
	"regexp"
	"strings"
)

// VariableField is the interface implemented by both field variants,
// ControlField and DataField.
type VariableField interface {
	Tag() string
	// SetTag sets the field tag. The tag must be three ASCII digits and
	// match the field variant: numeric value below 10 for a ControlField,
	// 10 or above for a DataField.
	SetTag(tag string) error
	String() string
}

// parseTag validates the three digit form shared by both field variants
// and returns the tag's numeric value.
func parseTag(tag string) (int, error) {
	if len(tag) != 3 {
		return 0, newModelError(ErrInvalidTag, tag, "not a three digit tag")
	}
	n := 0
	for i := 0; i < 3; i++ {
		c := tag[i]
		if c < '0' || c > '9' {
			return 0, newModelError(ErrInvalidTag, tag, "not a number")
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// ControlField is a variable field with a tag below 010 carrying a single
// data string. It has no indicators and no subfields.
type ControlField struct {
	tag  string
	data string
}

func (f *ControlField) Tag() string {
	return f.tag
}

func (f *ControlField) SetTag(tag string) error {
	n, err := parseTag(tag)
	if err != nil {
		return err
	}
	if n >= 10 {
		return newModelError(ErrInvalidTag, tag, "not a valid ControlField tag")
	}
	f.tag = tag
	return nil
}

func (f *ControlField) Data() string {
	return f.data
}

func (f *ControlField) SetData(data string) {
	f.data = data
}

func (f *ControlField) String() string {
	return f.tag + " " + f.data
}

// DataField is a variable field with a tag of 010 or above, two single
// character indicators and an ordered list of subfields.
type DataField struct {
	tag       string
	ind1      byte
	ind2      byte
	subfields []*Subfield
}

func (f *DataField) Tag() string {
	return f.tag
}

func (f *DataField) SetTag(tag string) error {
	n, err := parseTag(tag)
	if err != nil {
		return err
	}
	if n < 10 {
		return newModelError(ErrInvalidTag, tag, "not a valid DataField tag")
	}
	f.tag = tag
	return nil
}

func (f *DataField) Indicator1() byte {
	return f.ind1
}

func (f *DataField) SetIndicator1(ind byte) {
	f.ind1 = ind
}

func (f *DataField) Indicator2() byte {
	return f.ind2
}

func (f *DataField) SetIndicator2(ind byte) {
	f.ind2 = ind
}

// AddSubfield appends a subfield, keeping insertion order.
func (f *DataField) AddSubfield(sf *Subfield) {
	f.subfields = append(f.subfields, sf)
}

// InsertSubfield inserts a subfield at the given position. An index out of
// range appends.
func (f *DataField) InsertSubfield(index int, sf *Subfield) {
	if index < 0 || index >= len(f.subfields) {
		f.subfields = append(f.subfields, sf)
		return
	}
	f.subfields = append(f.subfields, nil)
	copy(f.subfields[index+1:], f.subfields[index:])
	f.subfields[index] = sf
}

// RemoveSubfield deletes a subfield by identity. Unknown subfields are ignored.
func (f *DataField) RemoveSubfield(sf *Subfield) {
	for i, s := range f.subfields {
		if s == sf {
			f.subfields = append(f.subfields[:i], f.subfields[i+1:]...)
			return
		}
	}
}

// Subfields returns the subfields in insertion order. The returned slice is
// owned by the field.
func (f *DataField) Subfields() []*Subfield {
	return f.subfields
}

// GetSubfields returns all subfields with the given code.
func (f *DataField) GetSubfields(code byte) []*Subfield {
	var result []*Subfield
	for _, sf := range f.subfields {
		if sf.code == code {
			result = append(result, sf)
		}
	}
	return result
}

// GetSubfield returns the first subfield with the given code or nil.
func (f *DataField) GetSubfield(code byte) *Subfield {
	for _, sf := range f.subfields {
		if sf.code == code {
			return sf
		}
	}
	return nil
}

// FilterSubfields returns the subfields selected by pattern. An empty
// pattern selects all subfields. A pattern containing '[' is compiled as a
// regular expression matched against each subfield's one character code.
// Any other pattern is a plain list of subfield codes.
func (f *DataField) FilterSubfields(pattern string) ([]*Subfield, error) {
	if pattern == "" {
		result := make([]*Subfield, len(f.subfields))
		copy(result, f.subfields)
		return result, nil
	}

	var result []*Subfield
	if strings.Contains(pattern, "[") {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		for _, sf := range f.subfields {
			if re.MatchString(string(sf.code)) {
				result = append(result, sf)
			}
		}
		return result, nil
	}

	for _, sf := range f.subfields {
		if strings.IndexByte(pattern, sf.code) >= 0 {
			result = append(result, sf)
		}
	}
	return result, nil
}

// AppendSubfields concatenates the data of the subfields selected by
// pattern, separated by pad. A zero pad joins the data directly.
// An empty selection yields the empty string.
func (f *DataField) AppendSubfields(pattern string, pad rune) (string, error) {
	selected, err := f.FilterSubfields(pattern)
	if err != nil {
		return "", err
	}

	sb := strings.Builder{}
	for i, sf := range selected {
		sb.WriteString(sf.data)
		if pad != 0 && i < len(selected)-1 {
			sb.WriteRune(pad)
		}
	}
	return sb.String(), nil
}

// Find reports whether any subfield's data matches the regular expression.
func (f *DataField) Find(pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	for _, sf := range f.subfields {
		if re.MatchString(sf.data) {
			return true, nil
		}
	}
	return false, nil
}

func (f *DataField) String() string {
	sb := strings.Builder{}
	sb.WriteString(f.tag)
	sb.WriteByte(' ')
	sb.WriteByte(f.ind1)
	sb.WriteByte(f.ind2)
	for _, sf := range f.subfields {
		sb.WriteString(sf.String())
	}
	return sb.String()
}

// Subfield is a (code, data) pair within a DataField.
type Subfield struct {
	code byte
	data string
}

func (sf *Subfield) Code() byte {
	return sf.code
}

func (sf *Subfield) SetCode(code byte) {
	sf.code = code
}

func (sf *Subfield) Data() string {
	return sf.data
}

func (sf *Subfield) SetData(data string) {
	sf.data = data
}

// Find reports whether the subfield's data matches the regular expression.
func (sf *Subfield) Find(pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(sf.data), nil
}

func (sf *Subfield) String() string {
	return "$" + string(sf.code) + sf.data
}
