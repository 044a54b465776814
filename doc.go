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

/*
Package gomarc allows parsing, creating and writing MARC21 records.

# MARC

MARC (MAchine-Readable Cataloging) is a family of record formats used by
libraries to exchange bibliographic data. A MARC21 file is a sequence of
ISO 2709 framed binary records: a fixed 24-octet leader, a directory of
(tag, length, offset) entries and a data area holding the variable fields.

To learn more about the format, see https://www.loc.gov/marc/bibliographic/

# Parse MARC records

The [Unmarshaler] parses single MARC records. It is initialized with [NewUnmarshaler].

The [MarcStreamReader] reads a stream of records from any io.Reader.
It is initialized with [NewMarcStreamReader].

The [MarcFileReader] reads records from a file, keeping track of record
offsets. It is initialized with [NewMarcFileReader].

Records encoded in MARC-8/ANSEL, UTF-8, ISO-8859-1 or any named charset
are transcoded to Go strings by the charset subpackage. The encoding is
normally inferred from the record leader, but can be forced with the
[WithEncoding] and [WithOverrideCodingScheme] options.

# Create MARC records

Records are built with [NewRecord], [NewControlField], [NewDataField] and
[NewSubfield], and serialized by the [Marshaler]. The [MarcFileWriter] is
used to write MARC files. It is initialized with [NewMarcFileWriter].

# Lenient parsing

Real-world MARC files deviate from the standard in documented ways:
directory entries out of order, field terminators embedded in field
bodies, space padded numbers and truncated records. How such deviations
are handled is controlled by setting the appropriate options when
creating the [Unmarshaler], [MarcStreamReader] or [MarcFileReader].
Non-fatal findings are collected in a [Validation].
*/
package gomarc
