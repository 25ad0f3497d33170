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

// The raw 32-bit integer codec ("sint"): every distinct value in the input
// is its own symbol, normalized with the generic normalizer at the caller's
// chosen approximation budget. No exception bytes, no folding; this is the
// variant to reach for when sigma is small enough that a per-value table is
// affordable.
package ans

// EncodeSint compresses values using a per-distinct-value rANS model
// normalized to within hApprox/1000 of the raw entropy.
func EncodeSint(values []uint32, hApprox uint32) []byte {
	var maxSym uint32
	for _, v := range values {
		if v > maxSym {
			maxSym = v
		}
	}
	freqs := make([]uint64, maxSym+1)
	for _, v := range values {
		freqs[v]++
	}
	nfreqs := normalize(freqs, maxSym, false, hApprox)
	enc, frameSize := buildEncTable(nfreqs)
	lowerBound := K * frameSize

	out := serializePrelude(nil, nfreqs, uint32(frameSize))
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

// DecodeSint is the inverse of EncodeSint; n is the number of values to
// reconstruct (carried alongside the stream by the caller, per §4.2).
func DecodeSint(src []byte, n int) ([]uint32, errorCode) {
	nfreqs, frameSize32, pos, ec := deserializePrelude(src, 0)
	if ec != ecOK {
		return nil, ec
	}
	frameSize := uint64(frameSize32)
	dt := buildDecTable(nfreqs, frameSize32)
	lowerBound := K * frameSize
	frameMask := frameSize32 - 1
	frameLog2 := uint8(log2Exact(frameSize))

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
