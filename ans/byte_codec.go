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

// The byte codec: sigma is fixed at 256 and the frame is capped at 4096, so
// every value in values must already fit a byte. This is the variant with
// the tightest, best-understood table layout, and the one the interleave
// engine and the generic prelude format were both originally shaped around.
package ans

// EncodeByte compresses a sequence of byte-valued symbols (each entry of
// values must be < 256).
func EncodeByte(values []uint32) []byte {
	var freqs [byteMaxSigma]uint64
	for _, v := range values {
		freqs[v]++
	}
	nfreqs := normalizeByte(freqs)
	enc, frameSize := buildEncTable(nfreqs[:])
	lowerBound := K * frameSize

	out := byteSerializePrelude(nil, nfreqs)
	body := encodeInterleaved(values, lowerBound, func(state *uint64, v uint32, o *fwdCursor) {
		e := enc[v]
		if *state >= e.symUpperBound {
			o.putU32(uint32(*state))
			*state >>= RadixLog2
		}
		*state = (*state/uint64(e.freq))*frameSize + (*state % uint64(e.freq)) + uint64(e.base)
	})
	return append(out, body...)
}

// DecodeByte is the inverse of EncodeByte.
func DecodeByte(src []byte, n int) ([]uint32, errorCode) {
	nfreqs, pos, ec := byteDeserializePrelude(src, 0)
	if ec != ecOK {
		return nil, ec
	}
	frameSize64 := sumFreqs(nfreqs[:])
	frameSize32 := uint32(frameSize64)
	dt := buildDecTable(nfreqs[:], frameSize32)
	lowerBound := K * frameSize64
	frameMask := frameSize32 - 1
	frameLog2 := uint8(log2Exact(frameSize64))

	return decodeInterleaved(src[pos:], n, lowerBound, func(state *uint64, in *backCursor) (uint32, errorCode) {
		slot := uint32(*state) & frameMask
		sym, freq, offset := dt.lookup(slot)
		*state = uint64(freq)*(*state>>frameLog2) + uint64(offset)
		if *state < lowerBound {
			v, ec := in.popU32()
			if ec != ecOK {
				return 0, ec
			}
			*state = (*state << RadixLog2) | uint64(v)
		}
		return sym, ecOK
	})
}
