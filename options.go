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

// The errorPolicy constants describe how to handle MARC record errors.
type errorPolicy int8

const (
	ErrIgnore errorPolicy = 0 // Ignore the given error.
	ErrWarn   errorPolicy = 1 // Ignore given error, but submit a warning.
	ErrFail   errorPolicy = 2 // Fail on given error.
)

// report applies the policy to a non-fatal finding: nil is returned unless
// the policy is ErrFail.
func (p errorPolicy) report(validation *Validation, err error) error {
	switch p {
	case ErrWarn:
		validation.AddError(err)
	case ErrFail:
		return err
	}
	return nil
}

type marcRecordOptions struct {
	errSyntax        errorPolicy // How to handle irregular field framing
	errSpec          errorPolicy // How to handle values violating the MARC21 spec
	encoding         string      // Explicit charset name, empty means infer from leader
	overrideEncoding bool        // Use the explicit charset even against a Unicode leader
}

// MarcRecordOption configures validation and deserialization of MARC records.
type MarcRecordOption interface {
	apply(*marcRecordOptions)
}

// funcMarcRecordOption wraps a function that modifies marcRecordOptions into an
// implementation of the MarcRecordOption interface.
type funcMarcRecordOption struct {
	f func(*marcRecordOptions)
}

func (fo *funcMarcRecordOption) apply(po *marcRecordOptions) {
	fo.f(po)
}

func newFuncMarcRecordOption(f func(*marcRecordOptions)) *funcMarcRecordOption {
	return &funcMarcRecordOption{
		f: f,
	}
}

func defaultMarcRecordOptions() marcRecordOptions {
	return marcRecordOptions{
		errSyntax: ErrIgnore,
		errSpec:   ErrIgnore,
	}
}

func newOptions(opts ...MarcRecordOption) *marcRecordOptions {
	o := defaultMarcRecordOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// WithSyntaxErrorPolicy sets the policy for handling irregular ISO 2709
// framing: field slices missing their terminator, stray data before the
// first subfield delimiter and directory counts disagreeing with the leader.
// defaults to ErrIgnore
func WithSyntaxErrorPolicy(policy errorPolicy) MarcRecordOption {
	return newFuncMarcRecordOption(func(o *marcRecordOptions) {
		o.errSyntax = policy
	})
}

// WithSpecViolationPolicy sets the policy for handling leader values which
// violate the MARC21 specification but do not prevent parsing.
// defaults to ErrIgnore
func WithSpecViolationPolicy(policy errorPolicy) MarcRecordOption {
	return newFuncMarcRecordOption(func(o *marcRecordOptions) {
		o.errSpec = policy
	})
}

// WithEncoding sets an explicit charset for decoding field data instead of
// inferring one from the leader's character coding scheme. The name is
// resolved by the charset subpackage; "MARC-8", "UTF-8" and "ISO-8859-1"
// are handled natively, anything else is looked up in the IANA registry.
//
// A record whose leader declares Unicode is still decoded as UTF-8 unless
// WithOverrideCodingScheme is set.
func WithEncoding(name string) MarcRecordOption {
	return newFuncMarcRecordOption(func(o *marcRecordOptions) {
		o.encoding = name
	})
}

// WithOverrideCodingScheme makes an explicit charset set with WithEncoding
// apply even when it contradicts the record leader.
// defaults to false
func WithOverrideCodingScheme(override bool) MarcRecordOption {
	return newFuncMarcRecordOption(func(o *marcRecordOptions) {
		o.overrideEncoding = override
	})
}
