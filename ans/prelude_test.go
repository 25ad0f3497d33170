// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package ans

import "testing"

func TestPreludeRoundTrip(t *testing.T) {
	s := []uint32{3, 0, 1, 12, 0, 48}
	var frameSize uint32 = 64
	encoded := serializePrelude(nil, s, frameSize)

	got, gotFrame, pos, ec := deserializePrelude(encoded, 0)
	if ec != ecOK {
		t.Fatalf("deserializePrelude error: %v", errs[ec])
	}
	if gotFrame != frameSize {
		t.Fatalf("frame size = %d, want %d", gotFrame, frameSize)
	}
	if len(got) != len(s) {
		t.Fatalf("table length = %d, want %d", len(got), len(s))
	}
	for i := range s {
		if got[i] != s[i] {
			t.Fatalf("s[%d] = %d, want %d", i, got[i], s[i])
		}
	}
	if pos != len(encoded) {
		t.Fatalf("deserializePrelude consumed %d bytes, want %d (exact, no trailing padding)", pos, len(encoded))
	}
}

func TestPreludeRoundTripWithTrailingBody(t *testing.T) {
	s := []uint32{5, 2, 0, 9}
	var frameSize uint32 = 16
	encoded := serializePrelude(nil, s, frameSize)

	body := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}
	combined := append(append([]byte{}, encoded...), body...)

	got, gotFrame, pos, ec := deserializePrelude(combined, 0)
	if ec != ecOK {
		t.Fatalf("deserializePrelude error: %v", errs[ec])
	}
	if gotFrame != frameSize {
		t.Fatalf("frame size = %d, want %d", gotFrame, frameSize)
	}
	for i := range s {
		if got[i] != s[i] {
			t.Fatalf("s[%d] = %d, want %d", i, got[i], s[i])
		}
	}
	if pos != len(encoded) {
		t.Fatalf("deserializePrelude consumed %d bytes, want exactly %d, leaving the body untouched", pos, len(encoded))
	}
	if string(combined[pos:]) != string(body) {
		t.Fatalf("body bytes were disturbed: got %v want %v", combined[pos:], body)
	}
}

func TestByteePreludeRoundTrip(t *testing.T) {
	var s [byteMaxSigma]uint32
	for i := range s {
		s[i] = uint32(i%5) + 1
	}
	encoded := byteSerializePrelude(nil, s)

	got, pos, ec := byteDeserializePrelude(encoded, 0)
	if ec != ecOK {
		t.Fatalf("byteDeserializePrelude error: %v", errs[ec])
	}
	for i := range s {
		if got[i] != s[i] {
			t.Fatalf("s[%d] = %d, want %d", i, got[i], s[i])
		}
	}
	if pos != len(encoded) {
		t.Fatalf("byteDeserializePrelude consumed %d bytes, want %d", pos, len(encoded))
	}
}

func TestByteePreludeRoundTripWithTrailingBody(t *testing.T) {
	var s [byteMaxSigma]uint32
	s[0] = 100
	s[255] = 1
	for i := 1; i < byteMaxSigma-1; i++ {
		s[i] = 1
	}
	encoded := byteSerializePrelude(nil, s)

	body := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	combined := append(append([]byte{}, encoded...), body...)

	got, pos, ec := byteDeserializePrelude(combined, 0)
	if ec != ecOK {
		t.Fatalf("byteDeserializePrelude error: %v", errs[ec])
	}
	for i := range s {
		if got[i] != s[i] {
			t.Fatalf("s[%d] = %d, want %d", i, got[i], s[i])
		}
	}
	if pos != len(encoded) {
		t.Fatalf("byteDeserializePrelude consumed %d bytes, want exactly %d, leaving the body untouched", pos, len(encoded))
	}
}
