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
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/prometheus/tsdb/fileutil"
)

// MarcFileNameGenerator is the interface that wraps the NewMarcfileName function.
type MarcFileNameGenerator interface {
	// NewMarcfileName returns a directory (might be the empty string for current directory) and a file name
	NewMarcfileName() (string, string)
}

// PatternNameGenerator implements the MarcFileNameGenerator.
type PatternNameGenerator struct {
	Directory string // Directory to store marcfiles. Defaults to the empty string
	Prefix    string // Prefix for the generated file name. Defaults to the empty string
	Serial    int32  // Serial number. It is atomically increased with every generated file name.
}

func (g *PatternNameGenerator) NewMarcfileName() (string, string) {
	return g.Directory, fmt.Sprintf("%s%04d.mrc", g.Prefix, atomic.AddInt32(&g.Serial, 1))
}

// MarcFileWriter writes MARC records to files. A record is always written
// to the current file; once the file has reached the maximum file size it
// is closed and the next write creates a new file. While a
// file is open for writing it carries the open file suffix, which is
// atomically removed when the file is closed.
type MarcFileWriter struct {
	opts            *marcFileWriterOptions
	currentFileName string
	currentFile     *os.File
	currentFileSize int64
	writeLock       sync.Mutex
}

func (w *MarcFileWriter) String() string {
	return fmt.Sprintf("MarcFileWriter (%s)", w.opts)
}

// NewMarcFileWriter creates a new MarcFileWriter with the supplied options.
func NewMarcFileWriter(opts ...MarcFileWriterOption) *MarcFileWriter {
	o := defaultmarcFileWriterOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &MarcFileWriter{opts: &o}
}

// WriteResponse is the result of writing one record.
type WriteResponse struct {
	FileName     string // filename
	FileOffset   int64  // the offset in file
	BytesWritten int64  // number of bytes written
	Err          error  // eventual error
}

// Write marshals one or more records to file, sequentially in the order
// given. Returns a slice with one WriteResponse for each record.
func (w *MarcFileWriter) Write(record ...*Record) []WriteResponse {
	w.writeLock.Lock()
	defer w.writeLock.Unlock()

	res := make([]WriteResponse, len(record))
	for i, r := range record {
		res[i] = w.write(r)
	}
	return res
}

func (w *MarcFileWriter) write(record *Record) (response WriteResponse) {
	if w.currentFile == nil {
		if err := w.createFile(); err != nil {
			response.Err = err
			return
		}
	}

	response.FileOffset = w.currentFileSize
	response.FileName = w.currentFileName
	response.BytesWritten, response.Err = w.opts.marshaler.Marshal(w.currentFile, record)
	if response.Err != nil {
		return
	}
	if w.opts.flush {
		// sync file to reduce possibility of half written records in case of crash
		if response.Err = w.currentFile.Sync(); response.Err != nil {
			return
		}
	}
	w.currentFileSize += response.BytesWritten

	if w.opts.maxFileSize > 0 && w.currentFileSize >= w.opts.maxFileSize {
		response.Err = w.close()
	}
	return
}

func (w *MarcFileWriter) createFile() error {
	dir, fileName := w.opts.nameGenerator.NewMarcfileName()
	path := dir
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	path += fileName + w.opts.openFileSuffix

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	w.currentFileName = fileName
	w.currentFile = file
	w.currentFileSize = 0
	return nil
}

// Rotate closes the file currently being written to.
// A call to Write after Rotate creates a new file.
func (w *MarcFileWriter) Rotate() error {
	w.writeLock.Lock()
	defer w.writeLock.Unlock()
	return w.close()
}

// Close closes the current file being written to and releases the writer's
// resources. It is legal to call Write after Close, but then a new file
// will be opened.
func (w *MarcFileWriter) Close() error {
	w.writeLock.Lock()
	defer w.writeLock.Unlock()
	return w.close()
}

func (w *MarcFileWriter) close() error {
	if w.currentFile == nil {
		return nil
	}
	f := w.currentFile
	w.currentFile = nil
	w.currentFileName = ""

	var errs multiErr
	if err := f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close file: %s: %w", f.Name(), err))
	}
	if err := fileutil.Rename(f.Name(), strings.TrimSuffix(f.Name(), w.opts.openFileSuffix)); err != nil {
		errs = append(errs, fmt.Errorf("failed to rename file: %s: %w", f.Name(), err))
	}
	if errs != nil {
		return fmt.Errorf("closing error: %w", errs)
	}
	return nil
}

// Options for Marc file writer
type marcFileWriterOptions struct {
	maxFileSize    int64
	openFileSuffix string
	nameGenerator  MarcFileNameGenerator
	marshaler      Marshaler
	flush          bool
}

func (w *marcFileWriterOptions) String() string {
	return fmt.Sprintf("File size: %d", w.maxFileSize)
}

// MarcFileWriterOption configures how to write MARC files.
type MarcFileWriterOption interface {
	apply(*marcFileWriterOptions)
}

// funcMarcFileWriterOption wraps a function that modifies marcFileWriterOptions into an
// implementation of the MarcFileWriterOption interface.
type funcMarcFileWriterOption struct {
	f func(*marcFileWriterOptions)
}

func (fo *funcMarcFileWriterOption) apply(po *marcFileWriterOptions) {
	fo.f(po)
}

func newFuncMarcFileOption(f func(*marcFileWriterOptions)) *funcMarcFileWriterOption {
	return &funcMarcFileWriterOption{
		f: f,
	}
}

func defaultmarcFileWriterOptions() marcFileWriterOptions {
	return marcFileWriterOptions{
		maxFileSize:    1024 * 1024 * 1024, // 1 GiB
		openFileSuffix: ".open",
		nameGenerator:  &PatternNameGenerator{},
		marshaler:      &defaultMarshaler{},
	}
}

// WithMaxFileSize sets the max size of the Marc file before creating a new one.
// defaults to 1 GiB
func WithMaxFileSize(size int64) MarcFileWriterOption {
	return newFuncMarcFileOption(func(o *marcFileWriterOptions) {
		o.maxFileSize = size
	})
}

// WithOpenFileSuffix sets a suffix to be added to the file name while the file is open for writing.
// The suffix is automatically removed when the file is closed.
// defaults to ".open"
func WithOpenFileSuffix(suffix string) MarcFileWriterOption {
	return newFuncMarcFileOption(func(o *marcFileWriterOptions) {
		o.openFileSuffix = suffix
	})
}

// WithFileNameGenerator sets the MarcFileNameGenerator to use for generating new Marc file names.
// defaults to PatternNameGenerator
func WithFileNameGenerator(generator MarcFileNameGenerator) MarcFileWriterOption {
	return newFuncMarcFileOption(func(o *marcFileWriterOptions) {
		o.nameGenerator = generator
	})
}

// WithMarshaler sets the Marc record marshaler to use.
// defaults to defaultMarshaler
func WithMarshaler(marshaler Marshaler) MarcFileWriterOption {
	return newFuncMarcFileOption(func(o *marcFileWriterOptions) {
		o.marshaler = marshaler
	})
}

// WithFlush sets if writer should commit each record to stable storage.
// defaults to false
func WithFlush(flush bool) MarcFileWriterOption {
	return newFuncMarcFileOption(func(o *marcFileWriterOptions) {
		o.flush = flush
	})
}
