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

// The radix-8 k-bit-fold mapping shared by the fold and reorder-fold
// variants: a value keeps its low fidelity+7 bits as the model symbol once
// it drops below the per-fold threshold, shedding one byte at a time (as
// exception bytes on encode) until it does. fold_codec.go applies this
// directly to raw symbol values; reorderfold_codec.go applies it to
// symbols that have already been passed through a frequency-based reorder
// mapping.
package ans

const foldRadix = 8

func foldThreshold(fidelity uint32) uint32 {
	return 1 << (fidelity + foldRadix - 1)
}

func foldDiv(fidelity uint32) uint32 {
	return (1 << (fidelity - 1)) * ((1 << foldRadix) - 1)
}

// foldMapping folds x down to its model symbol without recording exception
// bytes, for building the frequency histogram.
func foldMapping(fidelity, x uint32) uint32 {
	const radixMask = (1 << foldRadix) - 1
	thres := foldThreshold(fidelity)
	var offset uint32
	for x >= thres {
		x >>= foldRadix
		offset += (1 << (fidelity - 1)) * radixMask
	}
	return x + offset
}

// foldMappingAndExceptions is foldMapping plus emission of the shed bytes,
// lowest-address byte first.
func foldMappingAndExceptions(fidelity, x uint32, out *fwdCursor) uint32 {
	const radixMask = (1 << foldRadix) - 1
	thres := foldThreshold(fidelity)
	var offset uint32
	for x >= thres {
		out.putExceptionByte(byte(x & radixMask))
		x >>= foldRadix
		offset += (1 << (fidelity - 1)) * radixMask
	}
	return x + offset
}

func foldExceptionBytes(fidelity, xPlusOffset uint32) uint32 {
	thres := foldThreshold(fidelity)
	if xPlusOffset < thres {
		return 0
	}
	div := foldDiv(fidelity)
	return (xPlusOffset-thres)/div + 1
}

// foldUndoMapping recovers the original folded value (still missing the
// shed bytes, which the caller adds back from the exception-byte channel)
// from a mapped symbol plus any reorder offset baked into mostFrequent.
func foldUndoMapping(fidelity uint32, mostFrequent []uint32, xPlusOffset uint32) uint32 {
	thres := foldThreshold(fidelity)
	if xPlusOffset < thres {
		return mostFrequent[xPlusOffset] + thres
	}
	div := foldDiv(fidelity)
	outputBytes := (xPlusOffset-thres)/div + 1
	xOrg := xPlusOffset - div*outputBytes
	return xOrg << (foldRadix * outputBytes)
}

var foldExceptMask = [4]uint32{0, 0xFF, 0xFFFF, 0xFFFFFF}

// foldPackPayload and reconstructFoldedValue below implement the
// reorder-fold variant's decode convention specifically: the reorder
// mapping shifts every non-top-frequent raw symbol up by thres before
// folding (so it never collides with a reordered symbol's unfolded low
// index), and foldUndoMapping's <thres branch adds thres back in on load so
// that reconstructFoldedValue's uniform "- thres" cancels both cases with a
// single subtraction. fold_codec.go (no reorder) does not use this pair —
// since it never applies the shift on encode, it inverts foldMapping
// directly with no thres correction.
func foldPackPayload(fidelity uint32, mostFrequent []uint32, mappedSym uint32) uint32 {
	base := foldUndoMapping(fidelity, mostFrequent, mappedSym)
	exceptBytes := foldExceptionBytes(fidelity, mappedSym)
	return base | (exceptBytes << 30)
}

// reconstructFoldedValue finishes what foldPackPayload started: it pops the
// symbol's exception bytes (if any) off the back cursor, adds them into the
// packed base value, and applies the fold threshold correction.
func reconstructFoldedValue(fidelity uint32, payload uint32, in *backCursor) (uint32, errorCode) {
	exceptBytes := payload >> 30
	base := payload & 0x3FFFFFFF
	except, ec := in.popExceptionBytes(int(exceptBytes))
	if ec != ecOK {
		return 0, ec
	}
	thres := foldThreshold(fidelity)
	return base + (except & foldExceptMask[exceptBytes]) - thres, ecOK
}
