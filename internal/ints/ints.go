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

// Package ints provides small generic integer helpers: power-of-two helpers,
// which the frequency normalizers use, plus alignment and clamping helpers.
package ints

import (
	"golang.org/x/exp/constraints"
)

// IsAligned returns true if and only if v is an integer multiple of alignment.
func IsAligned[T constraints.Unsigned](v, alignment T) bool {
	return v%alignment == 0
}

// AlignDown returns v aligned down to a given alignment.
func AlignDown[T constraints.Unsigned](v, alignment T) T {
	return (v / alignment) * alignment
}

// AlignUp returns v aligned up to a given alignment.
func AlignUp[T constraints.Unsigned](v, alignment T) T {
	return ((v + alignment - 1) / alignment) * alignment
}

// ChunkCount returns the number of chunkSize-sized chunks needed to store n.
func ChunkCount[T constraints.Unsigned](n, chunkSize T) T {
	return (n + chunkSize - 1) / chunkSize
}

// Min returns the smaller value of x and y.
func Min[T constraints.Integer](x, y T) T {
	if x <= y {
		return x
	}
	return y
}

// Max returns the greater value of x and y.
func Max[T constraints.Integer](x, y T) T {
	if x >= y {
		return x
	}
	return y
}

// Clamp returns x if it is in [lo, hi]; otherwise the nearest bound.
func Clamp[T constraints.Integer](x, lo, hi T) T {
	return Max(lo, Min(x, hi))
}

// NextPowerOfTwo returns the smallest power of two >= v. v must be > 0.
func NextPowerOfTwo[T constraints.Unsigned](v T) T {
	p := T(1)
	for p < v {
		p <<= 1
	}
	return p
}

// IsPowerOfTwo returns true if v is a nonzero power of two.
func IsPowerOfTwo[T constraints.Unsigned](v T) bool {
	return v != 0 && v&(v-1) == 0
}
