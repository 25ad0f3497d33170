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

// The prelude codec (§4.4): a var-byte max-symbol header, a one-byte
// log2(frame size), and the normalized frequency table shipped through the
// interpolative coder as a strictly increasing, gap-plus-one sequence.
package ans

import (
	"math/bits"

	"github.com/mpetri/ans-large-alphabet-sub001/interp"
)

func putVbyte(out []byte, x uint32) []byte {
	for x >= 1<<7 {
		out = append(out, byte(x&0x7f)|0x80)
		x >>= 7
	}
	return append(out, byte(x))
}

func getVbyte(in []byte, pos int) (uint32, int, errorCode) {
	var x uint32
	var shift uint
	for {
		if pos >= len(in) {
			return 0, pos, ecMalformedPrelude
		}
		c := in[pos]
		pos++
		x += uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return x, pos, ecOK
		}
		shift += 7
	}
}

// serializePrelude appends the prelude for a normalized table S (indices
// 0..maxSym, frameSize a power of two) to out and returns the extended
// slice.
func serializePrelude(out []byte, s []uint32, frameSize uint32) []byte {
	maxSym := uint32(len(s) - 1)
	out = putVbyte(out, maxSym)
	out = append(out, byte(bits.Len32(frameSize)-1))

	increasing := make([]uint32, len(s))
	increasing[0] = s[0]
	for i := 1; i < len(s); i++ {
		increasing[i] = increasing[i-1] + s[i] + 1
	}
	universe := frameSize + uint32(len(s)) + 1
	words := interp.Encode(increasing, universe)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}

// deserializePrelude reads a prelude starting at in[pos:] and returns the
// normalized table, the frame size, and the position immediately following
// the consumed bytes.
func deserializePrelude(in []byte, pos int) ([]uint32, uint32, int, errorCode) {
	maxSym, pos, ec := getVbyte(in, pos)
	if ec != ecOK {
		return nil, 0, pos, ec
	}
	if pos >= len(in) {
		return nil, 0, pos, ecMalformedPrelude
	}
	log2Frame := in[pos]
	pos++
	if log2Frame > 31 {
		return nil, 0, pos, ecMalformedPrelude
	}
	frameSize := uint32(1) << log2Frame

	n := int(maxSym) + 1
	universe := frameSize + uint32(n) + 1
	wordsNeeded := (len(in)-pos)/4 + 1
	if wordsNeeded < 0 {
		wordsNeeded = 0
	}
	words := make([]uint32, 0, wordsNeeded)
	for pos+4 <= len(in) {
		words = append(words, uint32(in[pos])|uint32(in[pos+1])<<8|uint32(in[pos+2])<<16|uint32(in[pos+3])<<24)
		pos += 4
	}
	increasing, consumedWords := interp.DecodeCursor(words, n, universe)
	pos = pos - len(words)*4 + consumedWords*4

	s := make([]uint32, n)
	s[0] = increasing[0]
	for i := 1; i < n; i++ {
		s[i] = increasing[i] - increasing[i-1] - 1
	}
	return s, frameSize, pos, ecOK
}

// byteSerializePrelude is the byte codec's prelude: sigma is fixed at
// byteMaxSigma so there is no var-byte max-symbol header and no explicit
// frame-size byte (the decoder recovers frame_size by summing the decoded
// table), and the interpolative universe uses the byte codec's own fixed
// bound (byteMaxFrameSize + byteMaxSigma) rather than the generic prelude's
// frameSize+len(s)+1, since the byte codec's frame is capped well below the
// generic formula's headroom.
func byteSerializePrelude(out []byte, s [byteMaxSigma]uint32) []byte {
	var increasing [byteMaxSigma]uint32
	increasing[0] = s[0]
	for i := 1; i < byteMaxSigma; i++ {
		increasing[i] = increasing[i-1] + s[i] + 1
	}
	const universe = byteMaxFrameSize + byteMaxSigma
	words := interp.Encode(increasing[:], universe)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}

// byteDeserializePrelude is the inverse of byteSerializePrelude. It returns
// the normalized table and the position following the consumed bytes; the
// frame size is the caller's responsibility to recompute by summing s.
func byteDeserializePrelude(in []byte, pos int) ([byteMaxSigma]uint32, int, errorCode) {
	var s [byteMaxSigma]uint32
	const universe = byteMaxFrameSize + byteMaxSigma
	wordsNeeded := (len(in) - pos) / 4
	if wordsNeeded < 0 {
		wordsNeeded = 0
	}
	words := make([]uint32, 0, wordsNeeded)
	p := pos
	for p+4 <= len(in) {
		words = append(words, uint32(in[p])|uint32(in[p+1])<<8|uint32(in[p+2])<<16|uint32(in[p+3])<<24)
		p += 4
	}
	if len(words) == 0 {
		return s, pos, ecMalformedPrelude
	}
	increasing, consumedWords := interp.DecodeCursor(words, byteMaxSigma, universe)
	pos += consumedWords * 4

	s[0] = increasing[0]
	for i := 1; i < byteMaxSigma; i++ {
		s[i] = increasing[i] - increasing[i-1] - 1
	}
	return s, pos, ecOK
}
