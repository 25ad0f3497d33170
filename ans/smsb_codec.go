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

// The most-significant-byte-fold codec ("smsb"): every 32-bit value is
// mapped to one of 4 buckets by the byte position of its highest set byte,
// shedding the lower bytes it doesn't need for the model as exception
// bytes. Good for distributions with a long tail of large values that would
// otherwise blow up sigma for the raw sint codec.
package ans

const smsbMaxSigma = 1280

// smsbMapping maps a 32-bit value to its model symbol (0..1279) without
// recording the exception bytes, for building the frequency histogram.
func smsbMapping(x uint32) uint32 {
	switch {
	case x <= 256:
		return x
	case x <= 1<<16:
		return (x >> 8) + 256
	case x <= 1<<24:
		return (x >> 16) + 512
	default:
		return (x >> 24) + 768
	}
}

// smsbMappingAndExceptions is smsbMapping plus emission of the shed bytes,
// lowest-address byte first (the value's least significant shed byte).
func smsbMappingAndExceptions(x uint32, out *fwdCursor) uint32 {
	switch {
	case x <= 256:
		return x
	case x <= 1<<16:
		out.putExceptionByte(byte(x))
		return (x >> 8) + 256
	case x <= 1<<24:
		out.putExceptionByte(byte(x))
		out.putExceptionByte(byte(x >> 8))
		return (x >> 16) + 512
	default:
		out.putExceptionByte(byte(x))
		out.putExceptionByte(byte(x >> 8))
		out.putExceptionByte(byte(x >> 16))
		return (x >> 24) + 768
	}
}

func smsbExceptionBytes(mappedSym uint32) uint32 {
	switch {
	case mappedSym <= 256:
		return 0
	case mappedSym <= 512:
		return 1
	case mappedSym <= 768:
		return 2
	default:
		return 3
	}
}

// smsbUndoMapping recovers the low bits a mapped symbol stood in for,
// without the exception bytes (those get added back by the caller).
func smsbUndoMapping(mappedSym uint32) uint32 {
	switch {
	case mappedSym <= 256:
		return mappedSym
	case mappedSym <= 512:
		return (mappedSym - 256) << 8
	case mappedSym <= 768:
		return (mappedSym - 512) << 16
	default:
		return (mappedSym - 768) << 24
	}
}

var smsbExceptMask = [4]uint32{0, 0xFF, 0xFFFF, 0xFFFFFF}

// packSmsbPayload packs a decode-table payload the way tables.go's generic
// sym field carries it for this variant: the low 30 bits hold the mapped
// model symbol, the top 2 bits hold the exception byte count.
func packSmsbPayload(mappedSym uint32) uint32 {
	return mappedSym | (smsbExceptionBytes(mappedSym) << 30)
}

func unpackSmsbPayload(in *backCursor, payload uint32) (uint32, errorCode) {
	exceptBytes := payload >> 30
	base := smsbUndoMapping(payload & 0x3FFFFFFF)
	except, ec := in.popExceptionBytes(int(exceptBytes))
	if ec != ecOK {
		return 0, ec
	}
	return base + (except & smsbExceptMask[exceptBytes]), ecOK
}

// EncodeSmsb compresses values with the MSB-fold model at approximation
// budget hApprox (the normalizer's require_u16 flag is always set: the
// decode table packs freq/offset into 16 bits per entry).
func EncodeSmsb(values []uint32, hApprox uint32) []byte {
	var maxSym uint32
	freqs := make([]uint64, smsbMaxSigma)
	for _, v := range values {
		m := smsbMapping(v)
		freqs[m]++
		if m > maxSym {
			maxSym = m
		}
	}
	nfreqs := normalize(freqs, maxSym, true, hApprox)
	enc, frameSize := buildEncTable(nfreqs)
	lowerBound := K * frameSize

	out := serializePrelude(nil, nfreqs, uint32(frameSize))
	body := encodeInterleaved(values, lowerBound, func(state *uint64, v uint32, o *fwdCursor) {
		mapped := smsbMappingAndExceptions(v, o)
		e := enc[mapped]
		if *state >= e.symUpperBound {
			o.putU32(uint32(*state))
			*state >>= RadixLog2
		}
		*state = (*state/uint64(e.freq))*frameSize + (*state % uint64(e.freq)) + uint64(e.base)
	})
	return append(out, body...)
}

// DecodeSmsb is the inverse of EncodeSmsb.
func DecodeSmsb(src []byte, n int) ([]uint32, errorCode) {
	nfreqs, frameSize32, pos, ec := deserializePrelude(src, 0)
	if ec != ecOK {
		return nil, ec
	}
	frameSize := uint64(frameSize32)
	lowerBound := K * frameSize
	frameMask := frameSize32 - 1
	frameLog2 := uint8(log2Exact(frameSize))

	// Build a payload table indexed the same way buildDecTable lays symbols
	// out, but with the generic "sym" field repurposed to carry the packed
	// smsb payload (mapped symbol + exception byte count), so the decoder
	// knows how many exception bytes to pop before unmapping the symbol.
	payloads := make([]uint32, len(nfreqs))
	for sym := range nfreqs {
		payloads[sym] = packSmsbPayload(uint32(sym))
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
		return unpackSmsbPayload(in, payload)
	})
}
