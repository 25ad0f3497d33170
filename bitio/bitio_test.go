// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package bitio

import "testing"

func TestPutGetIntRoundTrip(t *testing.T) {
	widths := []uint8{0, 1, 3, 7, 8, 15, 16, 17, 31, 32}
	values := []uint32{0, 1, 2, 0xFFFFFFFF, 0xAAAAAAAA, 12345, 7}

	w := NewWriter(8)
	var want []struct {
		v uint32
		b uint8
	}
	for _, bits := range widths {
		for _, v := range values {
			w.PutInt(v, bits)
			want = append(want, struct {
				v uint32
				b uint8
			}{v & loMask[bits], bits})
		}
	}
	words := w.Flush()

	r := NewReader(words)
	for _, e := range want {
		got := r.GetInt(e.b)
		if got != e.v {
			t.Fatalf("width %d: got %#x want %#x", e.b, got, e.v)
		}
	}
}

func TestUnaryRoundTrip(t *testing.T) {
	xs := []uint32{0, 1, 2, 5, 31, 32, 33, 63, 64, 100}

	w := NewWriter(4)
	for _, x := range xs {
		w.WriteUnary(x)
	}
	words := w.Flush()

	r := NewReader(words)
	for _, x := range xs {
		got := r.ReadUnary()
		if uint64(x) != got {
			t.Fatalf("got %d want %d", got, x)
		}
	}
}

func TestFlushIdempotent(t *testing.T) {
	w := NewWriter(1)
	w.PutInt(5, 4)
	a := w.Flush()
	b := w.Flush()
	if len(a) != len(b) || a[0] != b[0] {
		t.Fatalf("flush is not idempotent: %v vs %v", a, b)
	}
}

func TestEmptyStream(t *testing.T) {
	w := NewWriter(0)
	words := w.Flush()
	if len(words) != 0 {
		t.Fatalf("expected no words, got %v", words)
	}
}

func TestMixedWidthsCrossWordBoundary(t *testing.T) {
	w := NewWriter(2)
	w.PutInt(0x1F, 5)
	w.PutInt(0x3FFFFFFF, 30)
	w.PutInt(1, 1)
	words := w.Flush()

	r := NewReader(words)
	if got := r.GetInt(5); got != 0x1F {
		t.Fatalf("first field: got %#x", got)
	}
	if got := r.GetInt(30); got != 0x3FFFFFFF {
		t.Fatalf("second field: got %#x", got)
	}
	if got := r.GetInt(1); got != 1 {
		t.Fatalf("third field: got %#x", got)
	}
}
