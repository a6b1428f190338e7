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

package serial

import (
	"errors"

	"github.com/cespare/xxhash/v2"
)

// ErrChecksum reports a frame whose payload does not match its checksum.
var ErrChecksum = errors.New("serial: frame checksum mismatch")

// Frame layout: uint64 payload length, payload bytes, uint64 xxhash64 of
// the payload. The checksum detects storage or transport corruption; it
// is not cryptographic.

// AppendFrame appends payload to dst as a checksummed frame and returns
// the extended slice.
func AppendFrame(dst, payload []byte) []byte {
	w := Writer{buf: dst}
	w.WriteBytes(payload)
	w.WriteUint64(xxhash.Sum64(payload))
	return w.Bytes()
}

// Frame encodes payload as a checksummed frame.
func Frame(payload []byte) []byte {
	return AppendFrame(nil, payload)
}

// ReadFrame decodes one frame from the front of data, returning the
// payload (aliasing data) and the bytes following the frame. Truncated
// input fails with ErrEndOfData; a corrupted frame fails with
// ErrChecksum.
func ReadFrame(data []byte) (payload, rest []byte, err error) {
	r := NewReader(data)
	payload = r.ReadBytes()
	sum := r.ReadUint64()
	if r.err != nil {
		return nil, nil, r.err
	}
	if xxhash.Sum64(payload) != sum {
		return nil, nil, ErrChecksum
	}
	return payload, data[r.off:], nil
}
