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

// Shared encoder/decoder table construction for every variant built on top
// of engine.go's interleave loop: the encoder side always looks the same
// (frequency, cumulative base, renormalization threshold per symbol); the
// decoder side comes in two physical layouts picked at load time depending
// on whether the largest normalized frequency fits a uint16, so a low-sigma
// table stays cache-resident while a high-sigma one still works correctly.
package ans

const u16Max = 1<<16 - 1

// encEntry is the per-symbol encode-side record: freq and base feed the
// rANS state transition, symUpperBound is the renormalization threshold.
type encEntry struct {
	freq          uint32
	base          uint32
	symUpperBound uint64
}

// buildEncTable turns a normalized frequency table into per-symbol encode
// entries plus the frame size (the sum of nfreqs).
func buildEncTable(nfreqs []uint32) ([]encEntry, uint64) {
	table := make([]encEntry, len(nfreqs))
	var frameSize uint64
	var curBase uint32
	const tmp = K * (uint64(1) << RadixLog2)
	for sym, f := range nfreqs {
		table[sym] = encEntry{
			freq:          f,
			base:          curBase,
			symUpperBound: tmp * uint64(f),
		}
		curBase += f
		frameSize += uint64(f)
	}
	return table, frameSize
}

// decTable is the decode-side lookup every codec's decodeOne closure drives:
// given a frame slot, it returns the symbol owning that slot plus the
// frequency and rank-within-symbol (offset) the rANS state update needs.
type decTable interface {
	lookup(slot uint32) (sym uint32, freq uint32, offset uint32)
}

type decEntrySmall struct {
	freq   uint16
	offset uint16
	sym    uint32
}

type decTableSmall []decEntrySmall

func (t decTableSmall) lookup(slot uint32) (uint32, uint32, uint32) {
	e := t[slot]
	return e.sym, uint32(e.freq), uint32(e.offset)
}

type decEntryLarge struct {
	freq   uint32
	offset uint32
	sym    uint32
}

type decTableLarge []decEntryLarge

func (t decTableLarge) lookup(slot uint32) (uint32, uint32, uint32) {
	e := t[slot]
	return e.sym, e.freq, e.offset
}

// buildDecTable lays nfreqs out across a frameSize-entry table, one record
// per occupied slot, choosing the small (uint16 freq/offset) physical layout
// whenever the largest normalized frequency fits, and the large layout
// otherwise.
func buildDecTable(nfreqs []uint32, frameSize uint32) decTable {
	if maxNormFreq(nfreqs) <= u16Max {
		table := make(decTableSmall, frameSize)
		var curBase uint32
		for sym, f := range nfreqs {
			for k := uint32(0); k < f; k++ {
				table[curBase+k] = decEntrySmall{freq: uint16(f), offset: uint16(k), sym: uint32(sym)}
			}
			curBase += f
		}
		return table
	}
	table := make(decTableLarge, frameSize)
	var curBase uint32
	for sym, f := range nfreqs {
		for k := uint32(0); k < f; k++ {
			table[curBase+k] = decEntryLarge{freq: f, offset: k, sym: uint32(sym)}
		}
		curBase += f
	}
	return table
}

// buildPayloadDecTable is buildDecTable with the table's generic payload
// field set from a caller-supplied per-symbol value instead of the bare
// symbol index, for variants (smsb, fold, reorder-fold) whose decoded value
// needs extra per-symbol bookkeeping (an exception-byte count, say) folded
// into that field.
func buildPayloadDecTable(nfreqs []uint32, frameSize uint32, payloads []uint32) decTable {
	if maxNormFreq(nfreqs) <= u16Max {
		table := make(decTableSmall, frameSize)
		var curBase uint32
		for sym, f := range nfreqs {
			for k := uint32(0); k < f; k++ {
				table[curBase+k] = decEntrySmall{freq: uint16(f), offset: uint16(k), sym: payloads[sym]}
			}
			curBase += f
		}
		return table
	}
	table := make(decTableLarge, frameSize)
	var curBase uint32
	for sym, f := range nfreqs {
		for k := uint32(0); k < f; k++ {
			table[curBase+k] = decEntryLarge{freq: f, offset: k, sym: payloads[sym]}
		}
		curBase += f
	}
	return table
}

// maxNormFreq returns the largest entry in a normalized frequency table,
// used both to pick a decoder table layout and to gate require_u16 codecs.
func maxNormFreq(nfreqs []uint32) uint32 {
	var m uint32
	for _, f := range nfreqs {
		if f > m {
			m = f
		}
	}
	return m
}

func sumFreqs(nfreqs []uint32) uint64 {
	var s uint64
	for _, f := range nfreqs {
		s += uint64(f)
	}
	return s
}

func log2Exact(v uint64) uint {
	var n uint
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}
