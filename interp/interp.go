// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package interp implements interpolative coding: a recursive midpoint
// encoding of a strictly increasing sequence of integers bounded above by a
// known value u. Each element is coded relative to the range its position
// forces it into, using a centered minimal binary code biased toward the
// midpoint of that range, so a sequence close to uniformly spaced costs close
// to nothing to store beyond the count and the bound.
//
// This is the coder the prelude uses to serialize a normalized frequency
// table without spending a fixed number of bits per entry.
package interp

import (
	"math/bits"

	"github.com/mpetri/ans-large-alphabet-sub001/bitio"
)

// hi returns floor(log2(x)) for x > 0, and 0 for x == 0.
func hi(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	return uint64(bits.Len64(x) - 1)
}

// writeCenterMid writes val, a value in [1, u], using a minimal binary code
// of b-1 or b bits biased toward the midpoint of [1, u].
func writeCenterMid(w *bitio.Writer, val, u uint64) {
	if u == 1 {
		return
	}
	b := hi(u-1) + 1
	d := 2*u - (uint64(1) << b)
	val = val + (u - (d >> 1))
	if val > u {
		val -= u
	}
	m := (uint64(1) << b) - u
	if val <= m {
		w.PutInt(uint32(val-1), uint8(b-1))
	} else {
		val += m
		w.PutInt(uint32((val-1)>>1), uint8(b-1))
		w.PutInt(uint32((val-1)&1), 1)
	}
}

// readCenterMid is the inverse of writeCenterMid.
func readCenterMid(r *bitio.Reader, u uint64) uint64 {
	var b uint64
	if u != 1 {
		b = hi(u-1) + 1
	}
	d := 2*u - (uint64(1) << b)
	val := uint64(1)
	if u != 1 {
		m := (uint64(1) << b) - u
		val = uint64(r.GetInt(uint8(b-1))) + 1
		if val > m {
			val = (2*val + uint64(r.GetInt(1))) - m - 1
		}
	}
	val = val + (d >> 1)
	if val > u {
		val -= u
	}
	return val
}

func encodeInterpolative(w *bitio.Writer, buf []uint32, low, high uint64) {
	n := uint64(len(buf))
	if n == 0 {
		return
	}
	h := (n + 1) >> 1
	n1 := h - 1
	n2 := n - h
	v := uint64(buf[h-1]) + 1

	writeCenterMid(w, v-low-n1+1, high-n2-low-n1+1)

	encodeInterpolative(w, buf[:n1], low, v-1)
	encodeInterpolative(w, buf[h:], v+1, high)
}

func decodeInterpolative(r *bitio.Reader, out []uint32, low, high uint64) {
	n := uint64(len(out))
	if n == 0 {
		return
	}
	h := (n + 1) >> 1
	n1 := h - 1
	n2 := n - h
	v := low + n1 - 1 + readCenterMid(r, high-n2-low-n1+1)

	out[h-1] = uint32(v - 1)
	if n1 != 0 {
		decodeInterpolative(r, out[:n1], low, v-1)
	}
	if n2 != 0 {
		decodeInterpolative(r, out[h:], v+1, high)
	}
}

// Encode writes values, a strictly increasing sequence with every element in
// [0, u), as interpolative-coded bits and returns the resulting 32-bit
// words. The caller must retain len(values) and u to decode.
func Encode(values []uint32, u uint32) []uint32 {
	w := bitio.NewWriter(len(values)/4 + 1)
	encodeInterpolative(w, values, 1, uint64(u)+1)
	return w.Flush()
}

// Decode is the inverse of Encode: given the word stream, the original
// element count n and the bound u, it reconstructs the sequence.
func Decode(words []uint32, n int, u uint32) []uint32 {
	out, _ := DecodeCursor(words, n, u)
	return out
}

// DecodeCursor behaves like Decode but additionally reports how many leading
// words of the input were actually touched by the decode, so a caller that
// packed more than one encoded stream end-to-end in the same word slice (as
// the prelude codec does, since it doesn't know in advance how many words
// its interpolative section occupies) can find where the next one starts.
func DecodeCursor(words []uint32, n int, u uint32) ([]uint32, int) {
	r := bitio.NewReader(words)
	out := make([]uint32, n)
	decodeInterpolative(r, out, 1, uint64(u)+1)
	return out, r.WordsConsumed()
}
