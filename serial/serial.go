// Copyright 2024 The TurboKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serial implements a compact little-endian binary codec. The
// wire format is positional, not self-describing: reader and writer must
// agree on the exact field sequence, and there is no cross-version
// compatibility. Strings and slices are prefixed with a uint64 count.
//
// Readers carry a sticky error: after the first failure every further
// read returns zero values, so a decode function can run unconditionally
// and check Err (or Finish) once at the end.
package serial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEndOfData reports a read past the end of the input.
	ErrEndOfData = errors.New("serial: unexpected end of data")
	// ErrTrailing reports input bytes left over after a complete value.
	ErrTrailing = errors.New("serial: trailing bytes after value")
)

// Marshaler is implemented by types that can append themselves to a
// Writer.
type Marshaler interface {
	MarshalTo(w *Writer)
}

// Unmarshaler is implemented by types that can read themselves from a
// Reader. Implementations report failure through the reader's sticky
// error rather than a return value.
type Unmarshaler interface {
	UnmarshalFrom(r *Reader)
}

// Marshal encodes m into a fresh byte slice.
func Marshal(m Marshaler) []byte {
	var w Writer
	m.MarshalTo(&w)
	return w.Bytes()
}

// Unmarshal decodes data into u, failing with ErrTrailing if u does not
// consume the input exactly.
func Unmarshal(data []byte, u Unmarshaler) error {
	r := NewReader(data)
	u.UnmarshalFrom(r)
	return r.Finish()
}

// Writer accumulates encoded bytes. The zero value is ready for use.
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated encoding. The slice aliases the writer's
// buffer; further writes may invalidate it.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Reset empties the writer, keeping its buffer for reuse.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteString writes a uint64 length followed by the string bytes.
func (w *Writer) WriteString(v string) {
	w.WriteUint64(uint64(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteBytes writes a uint64 length followed by the bytes.
func (w *Writer) WriteBytes(v []byte) {
	w.WriteUint64(uint64(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteRaw appends bytes with no length prefix.
func (w *Writer) WriteRaw(v []byte) {
	w.buf = append(w.buf, v...)
}

// Reader decodes a byte slice sequentially. After the first failure it
// returns zero values from every read; check Err or Finish.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a reader over data. The reader does not copy data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Err returns the sticky error, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Finish returns the sticky error, or ErrTrailing if unread bytes remain.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if n := r.Remaining(); n > 0 {
		return fmt.Errorf("%w (%d bytes)", ErrTrailing, n)
	}
	return nil
}

// fail records the first error.
func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// take consumes n bytes, or fails with ErrEndOfData.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.Remaining() < n {
		r.fail(ErrEndOfData)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) ReadInt8() int8   { return int8(r.ReadUint8()) }
func (r *Reader) ReadInt16() int16 { return int16(r.ReadUint16()) }
func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }
func (r *Reader) ReadInt64() int64 { return int64(r.ReadUint64()) }

func (r *Reader) ReadBool() bool { return r.ReadUint8() != 0 }

func (r *Reader) ReadFloat32() float32 { return math.Float32frombits(r.ReadUint32()) }
func (r *Reader) ReadFloat64() float64 { return math.Float64frombits(r.ReadUint64()) }

// readLen reads a count prefix, failing early if it exceeds the remaining
// input so that corrupt lengths cannot drive huge allocations.
func (r *Reader) readLen() int {
	n := r.ReadUint64()
	if r.err != nil {
		return 0
	}
	if n > uint64(r.Remaining()) {
		r.fail(ErrEndOfData)
		return 0
	}
	return int(n)
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString() string {
	n := r.readLen()
	return string(r.take(n))
}

// ReadBytes reads a length-prefixed byte slice. The result aliases the
// input.
func (r *Reader) ReadBytes() []byte {
	n := r.readLen()
	return r.take(n)
}

// ReadRaw consumes exactly n bytes with no length prefix. The result
// aliases the input.
func (r *Reader) ReadRaw(n int) []byte {
	return r.take(n)
}
