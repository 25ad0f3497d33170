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

// The k-bit-fold codec: values are folded into a fidelity+7-bit model
// symbol by foldcommon.go's radix-8 shedding, with no frequency-based
// reorder step. This is reorderfold_codec.go's sibling with the reorder
// table always empty: every value is folded straight from its own
// magnitude, so unlike the reorder-fold variant there is no "+threshold"
// shift to undo on decode.
package ans

// foldUndoMappingPlain inverts foldMapping with no reorder shift applied,
// the form this codec needs since it never ships a reorder table.
func foldUndoMappingPlain(fidelity, mappedSym uint32) uint32 {
	thres := foldThreshold(fidelity)
	if mappedSym < thres {
		return mappedSym
	}
	div := foldDiv(fidelity)
	outputBytes := (mappedSym-thres)/div + 1
	xOrg := mappedSym - div*outputBytes
	return xOrg << (foldRadix * outputBytes)
}

func foldPackPlainPayload(fidelity, mappedSym uint32) uint32 {
	return mappedSym | (foldExceptionBytes(fidelity, mappedSym) << 30)
}

// EncodeFold compresses values with the k-bit-fold model at the given
// fidelity (bits of headroom before a byte gets shed as an exception).
func EncodeFold(values []uint32, fidelity uint32) []byte {
	var maxSym uint32
	freqs := map[uint32]uint64{}
	for _, v := range values {
		m := foldMapping(fidelity, v)
		freqs[m]++
		if m > maxSym {
			maxSym = m
		}
	}
	freqSlice := make([]uint64, maxSym+1)
	for sym, f := range freqs {
		freqSlice[sym] = f
	}
	nfreqs := normalize(freqSlice, maxSym, true, 0)
	enc, frameSize := buildEncTable(nfreqs)
	lowerBound := K * frameSize

	out := serializePrelude(nil, nfreqs, uint32(frameSize))
	body := encodeInterleaved(values, lowerBound, func(state *uint64, v uint32, o *fwdCursor) {
		mapped := foldMappingAndExceptions(fidelity, v, o)
		e := enc[mapped]
		if *state >= e.symUpperBound {
			o.putU32(uint32(*state))
			*state >>= RadixLog2
		}
		*state = (*state/uint64(e.freq))*frameSize + (*state % uint64(e.freq)) + uint64(e.base)
	})
	return append(out, body...)
}

// DecodeFold is the inverse of EncodeFold.
func DecodeFold(src []byte, n int, fidelity uint32) ([]uint32, errorCode) {
	nfreqs, frameSize32, pos, ec := deserializePrelude(src, 0)
	if ec != ecOK {
		return nil, ec
	}
	frameSize := uint64(frameSize32)
	lowerBound := K * frameSize
	frameMask := frameSize32 - 1
	frameLog2 := uint8(log2Exact(frameSize))

	payloads := make([]uint32, len(nfreqs))
	for sym := range nfreqs {
		payloads[sym] = foldPackPlainPayload(fidelity, uint32(sym))
	}
	dt := buildPayloadDecTable(nfreqs, frameSize32, payloads)

	return decodeInterleaved(src[pos:], n, lowerBound, func(state *uint64, in *backCursor) (uint32, errorCode) {
		slot := uint32(*state) & frameMask
		payload, freq, offset := dt.lookup(slot)
		*state = uint64(freq)*(*state>>frameLog2) + uint64(offset)
		if *state < lowerBound {
			v, ec := in.popU32()
			if ec != ecOK {
				return 0, ec
			}
			*state = (*state << RadixLog2) | uint64(v)
		}
		exceptBytes := payload >> 30
		base := foldUndoMappingPlain(fidelity, payload&0x3FFFFFFF)
		except, ec := in.popExceptionBytes(int(exceptBytes))
		if ec != ecOK {
			return 0, ec
		}
		return base + (except & foldExceptMask[exceptBytes]), ecOK
	})
}
