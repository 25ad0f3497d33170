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

// The reorder-fold codec: like the plain fold codec, but when the distinct
// symbol count is large enough to make it worthwhile, the most frequent
// symbols (as many as a single fold bucket holds) are relocated to the
// unfolded low range before folding, so the hottest values never pay the
// exception-byte cost at all. The relocation table, when shipped, rides
// along in the prelude ahead of the frequency table.
package ans

import "encoding/binary"

// buildReorderMapping decides whether reordering is worth shipping (sigma
// at least as large as a fold bucket) and, if so, builds the symbol
// relocation table: the noExceptThres most frequent raw symbols get low
// indices 0..noExceptThres-1 in descending frequency order, and every other
// symbol is pushed up by noExceptThres so it always folds.
func buildReorderMapping(values []uint32, fidelity uint32) (mapping []uint32, mostFrequent []uint32, reorder bool) {
	var maxSym uint32
	for _, v := range values {
		if v > maxSym {
			maxSym = v
		}
	}
	counts := make([]int64, maxSym+1)
	for _, v := range values {
		counts[v]--
	}
	type symCount struct {
		negCount int64
		sym      uint32
	}
	order := make([]symCount, len(counts))
	for i, c := range counts {
		order[i] = symCount{negCount: c, sym: uint32(i)}
	}
	// stable ascending sort by negCount (most frequent first), matching
	// std::sort on the (count, sym) pairs.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && (order[j-1].negCount > order[j].negCount ||
			(order[j-1].negCount == order[j].negCount && order[j-1].sym > order[j].sym)); j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	var sigma int
	for _, oc := range order {
		if oc.negCount == 0 {
			break
		}
		sigma++
	}

	noExceptThres := int(foldThreshold(fidelity))
	mapping = make([]uint32, maxSym+1)
	if sigma < noExceptThres {
		for i := range mapping {
			mapping[i] = uint32(i)
		}
		return mapping, nil, false
	}
	for i := range mapping {
		mapping[i] = uint32(i) + uint32(noExceptThres)
	}
	mostFrequent = make([]uint32, noExceptThres)
	for i := 0; i < noExceptThres; i++ {
		mapping[order[i].sym] = uint32(i)
		mostFrequent[i] = order[i].sym
	}
	return mapping, mostFrequent, true
}

func serializeReorderTable(out []byte, fidelity uint32, reorder bool, mostFrequent []uint32) []byte {
	noExceptThres := int(foldThreshold(fidelity))
	if !reorder {
		out = binary.LittleEndian.AppendUint32(out, 0)
		return out
	}
	out = binary.LittleEndian.AppendUint32(out, 1)
	for i := 0; i < noExceptThres; i++ {
		out = binary.LittleEndian.AppendUint32(out, mostFrequent[i])
	}
	return out
}

func deserializeReorderTable(in []byte, pos int, fidelity uint32) ([]uint32, int, errorCode) {
	noExceptThres := int(foldThreshold(fidelity))
	if pos+4 > len(in) {
		return nil, pos, ecMalformedPrelude
	}
	flag := binary.LittleEndian.Uint32(in[pos:])
	pos += 4
	mostFrequent := make([]uint32, noExceptThres)
	if flag == 0 {
		for i := range mostFrequent {
			mostFrequent[i] = uint32(i)
		}
		return mostFrequent, pos, ecOK
	}
	if pos+4*noExceptThres > len(in) {
		return nil, pos, ecMalformedPrelude
	}
	for i := 0; i < noExceptThres; i++ {
		mostFrequent[i] = binary.LittleEndian.Uint32(in[pos:])
		pos += 4
	}
	return mostFrequent, pos, ecOK
}

// EncodeReorderFold compresses values with the reorder-fold model at the
// given fidelity.
func EncodeReorderFold(values []uint32, fidelity uint32) []byte {
	mapping, mostFrequent, reorder := buildReorderMapping(values, fidelity)

	var maxSym uint32
	freqs := map[uint32]uint64{}
	for _, v := range values {
		m := foldMapping(fidelity, mapping[v])
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

	out := serializeReorderTable(nil, fidelity, reorder, mostFrequent)
	out = serializePrelude(out, nfreqs, uint32(frameSize))
	body := encodeInterleaved(values, lowerBound, func(state *uint64, v uint32, o *fwdCursor) {
		mapped := foldMappingAndExceptions(fidelity, mapping[v], o)
		e := enc[mapped]
		if *state >= e.symUpperBound {
			o.putU32(uint32(*state))
			*state >>= RadixLog2
		}
		*state = (*state/uint64(e.freq))*frameSize + (*state % uint64(e.freq)) + uint64(e.base)
	})
	return append(out, body...)
}

// DecodeReorderFold is the inverse of EncodeReorderFold.
func DecodeReorderFold(src []byte, n int, fidelity uint32) ([]uint32, errorCode) {
	mostFrequent, pos, ec := deserializeReorderTable(src, 0, fidelity)
	if ec != ecOK {
		return nil, ec
	}
	if binary.LittleEndian.Uint32(src) == 0 {
		// No reorder table: the encoder applied no +thres shift either, so
		// the rest of the stream is exactly a plain fold stream.
		return DecodeFold(src[pos:], n, fidelity)
	}
	nfreqs, frameSize32, pos, ec := deserializePrelude(src, pos)
	if ec != ecOK {
		return nil, ec
	}
	frameSize := uint64(frameSize32)
	lowerBound := K * frameSize
	frameMask := frameSize32 - 1
	frameLog2 := uint8(log2Exact(frameSize))

	payloads := make([]uint32, len(nfreqs))
	for sym := range nfreqs {
		payloads[sym] = foldPackPayload(fidelity, mostFrequent, uint32(sym))
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
		return reconstructFoldedValue(fidelity, payload, in)
	})
}
