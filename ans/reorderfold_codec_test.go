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

// TestReorderFoldTriggersReorder uses a low fidelity, which keeps the fold
// threshold small enough that a wide alphabet exceeds it and the relocation
// table actually ships.
func TestReorderFoldTriggersReorder(t *testing.T) {
	fidelity := uint32(1) // threshold = 1<<8 = 256
	r := rand.New(rand.NewSource(21))
	values := make([]uint32, 20000)
	for i := range values {
		// 300 distinct symbols, skewed so a handful dominate: above the
		// 256-symbol reorder threshold.
		switch {
		case r.Intn(10) < 7:
			values[i] = uint32(r.Intn(5))
		default:
			values[i] = uint32(r.Intn(300))
		}
	}
	mapping, mostFrequent, reorder := buildReorderMapping(values, fidelity)
	if !reorder {
		t.Fatalf("expected reorder table to be built for a wide alphabet")
	}
	if len(mostFrequent) != int(foldThreshold(fidelity)) {
		t.Fatalf("mostFrequent length = %d, want %d", len(mostFrequent), foldThreshold(fidelity))
	}
	if mapping[mostFrequent[0]] != 0 {
		t.Fatalf("most frequent symbol should map to index 0")
	}

	encoded := EncodeReorderFold(values, fidelity)
	got, ec := DecodeReorderFold(encoded, len(values), fidelity)
	if ec != ecOK {
		t.Fatalf("decode error: %v", errs[ec])
	}
	if !reflect.DeepEqual(got, values) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestReorderFoldSkipsReorderForSmallAlphabet(t *testing.T) {
	fidelity := uint32(8) // threshold = 1<<15, far above any alphabet here
	values := []uint32{1, 1, 1, 2, 2, 3, 7, 7, 7, 7, 100, 4000, 70000}
	mapping, _, reorder := buildReorderMapping(values, fidelity)
	if reorder {
		t.Fatalf("expected identity mapping for a small alphabet")
	}
	for i, m := range mapping {
		if m != uint32(i) {
			t.Fatalf("mapping[%d] = %d, want identity", i, m)
		}
	}

	encoded := EncodeReorderFold(values, fidelity)
	got, ec := DecodeReorderFold(encoded, len(values), fidelity)
	if ec != ecOK {
		t.Fatalf("decode error: %v", errs[ec])
	}
	if !reflect.DeepEqual(got, values) {
		t.Fatalf("round-trip mismatch: got %v want %v", got, values)
	}
}

func FuzzReorderFoldRoundtrip(f *testing.F) {
	f.Add([]byte("test message 123 test message 456"), uint8(2))
	f.Add([]byte{}, uint8(1))
	f.Fuzz(func(t *testing.T, raw []byte, fidelityByte uint8) {
		fidelity := uint32(fidelityByte%16) + 1
		values := make([]uint32, len(raw)/4)
		for i := range values {
			values[i] = uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 | uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
		}
		encoded := EncodeReorderFold(values, fidelity)
		decoded, ec := DecodeReorderFold(encoded, len(values), fidelity)
		if ec != ecOK {
			t.Fatalf("round-trip failed: %v", errs[ec])
		}
		if !reflect.DeepEqual(values, decoded) {
			t.Fatalf("round-trip result does not match input")
		}
	})
}

func TestReorderFoldEmptyInput(t *testing.T) {
	encoded := EncodeReorderFold(nil, 4)
	got, ec := DecodeReorderFold(encoded, 0, 4)
	if ec != ecOK {
		t.Fatalf("decode error: %v", errs[ec])
	}
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestReorderFoldResidueAcrossAllFourLanes(t *testing.T) {
	r := rand.New(rand.NewSource(22))
	for n := 1; n < 9; n++ {
		values := make([]uint32, n)
		for i := range values {
			values[i] = uint32(r.Intn(50))
		}
		encoded := EncodeReorderFold(values, 3)
		got, ec := DecodeReorderFold(encoded, n, 3)
		if ec != ecOK {
			t.Fatalf("n=%d: decode error: %v", n, errs[ec])
		}
		if !reflect.DeepEqual(got, values) {
			t.Fatalf("n=%d: round-trip mismatch: got %v want %v", n, got, values)
		}
	}
}
