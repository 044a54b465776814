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
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the structural failure modes of an ISO 2709 record.
// Errors returned from parsing wrap one of these and can be tested for
// with errors.Is.
var (
	ErrTruncatedLeader         = errors.New("truncated leader")
	ErrMalformedLeader         = errors.New("malformed leader")
	ErrMalformedDirectory      = errors.New("malformed directory")
	ErrTruncatedRecord         = errors.New("truncated record")
	ErrMissingRecordTerminator = errors.New("missing record terminator")
	ErrMalformedField          = errors.New("malformed field")
	ErrInvalidTag              = errors.New("invalid tag")
)

// ModelError is used for violations of the record model invariants.
type ModelError struct {
	kind error
	tag  string
	msg  string
}

func newModelError(kind error, tag string, msg string) *ModelError {
	return &ModelError{kind: kind, tag: tag, msg: msg}
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("gomarc: %s is %s", e.tag, e.msg)
}

func (e *ModelError) Is(target error) bool {
	return target == e.kind
}

// SyntaxError is used for structural errors in a record's ISO 2709 framing.
type SyntaxError struct {
	kind    error
	msg     string
	offset  int64
	wrapped error
}

func newSyntaxError(kind error, msg string, pos *position) *SyntaxError {
	return &SyntaxError{kind: kind, msg: msg, offset: pos.offset}
}

func newSyntaxErrorf(kind error, pos *position, msg string, param ...interface{}) *SyntaxError {
	return &SyntaxError{kind: kind, msg: fmt.Sprintf(msg, param...), offset: pos.offset}
}

func newWrappedSyntaxError(kind error, msg string, pos *position, wrapped error) *SyntaxError {
	return &SyntaxError{kind: kind, msg: msg, offset: pos.offset, wrapped: wrapped}
}

func (e *SyntaxError) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("gomarc: %s at offset %d", e.kind, e.offset)
	}
	return fmt.Sprintf("gomarc: %s: %s at offset %d", e.kind, e.msg, e.offset)
}

// Offset returns the byte offset, relative to the start of the record,
// where the error was detected.
func (e *SyntaxError) Offset() int64 {
	return e.offset
}

func (e *SyntaxError) Is(target error) bool {
	return target == e.kind
}

func (e *SyntaxError) Unwrap() error {
	return e.wrapped
}

type multiErr []error

func (e multiErr) Error() string {
	switch len(e) {

	case 0:
		return ""

	case 1:
		return e[0].Error()
	}

	const (
		start = "["
		sep   = ", "
		end   = "]"
	)

	n := len(start) + len(end) + (len(sep) * (len(e) - 1))
	for i := 0; i < len(e); i++ {
		n += len(e[i].Error())
	}

	var b strings.Builder
	b.Grow(n)
	b.WriteString(start)
	b.WriteString(e[0].Error())
	for _, s := range e[1:] {
		b.WriteString(sep)
		b.WriteString(s.Error())
	}
	b.WriteString(end)
	return b.String()
}
