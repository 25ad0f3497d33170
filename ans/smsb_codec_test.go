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

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestSmsbRoundTripWideRange(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	values := make([]uint32, 6000)
	for i := range values {
		switch r.Intn(4) {
		case 0:
			values[i] = uint32(r.Intn(256))
		case 1:
			values[i] = uint32(r.Intn(1 << 16))
		case 2:
			values[i] = uint32(r.Intn(1 << 24))
		default:
			values[i] = r.Uint32()
		}
	}
	encoded := EncodeSmsb(values, 1)
	got, ec := DecodeSmsb(encoded, len(values))
	if ec != ecOK {
		t.Fatalf("decode error: %v", errs[ec])
	}
	if !reflect.DeepEqual(got, values) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestSmsbMappingBuckets(t *testing.T) {
	cases := []struct {
		x        uint32
		wantSym  uint32
		wantExc  uint32
	}{
		{0, 0, 0},
		{256, 256, 0},
		{257, 257, 1},
		{1 << 16, (1<<16)>>8 + 256, 1},
		{(1 << 16) + 1, ((1<<16)+1)>>16 + 512, 2},
		{1 << 24, (1<<24)>>16 + 512, 2},
		{(1 << 24) + 1, ((1<<24)+1)>>24 + 768, 3},
		{0xFFFFFFFF, (0xFFFFFFFF >> 24) + 768, 3},
	}
	for _, c := range cases {
		got := smsbMapping(c.x)
		if got != c.wantSym {
			t.Fatalf("smsbMapping(%d) = %d, want %d", c.x, got, c.wantSym)
		}
		if exc := smsbExceptionBytes(got); exc != c.wantExc {
			t.Fatalf("smsbExceptionBytes(%d) = %d, want %d", got, exc, c.wantExc)
		}
	}
}

func FuzzSmsbRoundtrip(f *testing.F) {
	f.Add([]byte("test message 123 test message 456"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, raw []byte) {
		values := make([]uint32, len(raw)/4)
		for i := range values {
			values[i] = uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 | uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
		}
		encoded := EncodeSmsb(values, 1)
		decoded, ec := DecodeSmsb(encoded, len(values))
		if ec != ecOK {
			t.Fatalf("round-trip failed: %v", errs[ec])
		}
		if !reflect.DeepEqual(values, decoded) {
			t.Fatalf("round-trip result does not match input")
		}
	})
}

func TestSmsbEmptyInput(t *testing.T) {
	encoded := EncodeSmsb(nil, 1)
	got, ec := DecodeSmsb(encoded, 0)
	if ec != ecOK {
		t.Fatalf("decode error: %v", errs[ec])
	}
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestSmsbResidueAcrossAllFourLanes(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for n := 1; n < 9; n++ {
		values := make([]uint32, n)
		for i := range values {
			values[i] = r.Uint32()
		}
		encoded := EncodeSmsb(values, 1)
		got, ec := DecodeSmsb(encoded, n)
		if ec != ecOK {
			t.Fatalf("n=%d: decode error: %v", n, errs[ec])
		}
		if !reflect.DeepEqual(got, values) {
			t.Fatalf("n=%d: round-trip mismatch: got %v want %v", n, got, values)
		}
	}
}
