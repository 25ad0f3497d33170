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

// The generic frequency normalizer: turns raw symbol counts into a
// power-of-two frame whose cross-entropy against the raw distribution stays
// within an approximation budget. Used by every variant except the byte
// codec, which has its own fixed-frame specialization in bytestatistics.go.
package ans

import (
	"math"

	"golang.org/x/exp/slices"

	"github.com/mpetri/ans-large-alphabet-sub001/internal/ints"
)

func entropy(freqs []uint64, freqSum uint64) float64 {
	var h float64
	n := float64(freqSum)
	for _, f := range freqs {
		if f != 0 {
			p := float64(f) / n
			h += p * math.Log2(p)
		}
	}
	return -h
}

func crossEntropy(p []uint64, q []uint32) float64 {
	var sumP, sumQ uint64
	for _, v := range p {
		sumP += v
	}
	for _, v := range q {
		sumQ += uint64(v)
	}
	var h float64
	n := float64(sumP)
	m := float64(sumQ)
	for i := range p {
		if p[i] != 0 && q[i] != 0 {
			pp := float64(p[i]) / n
			qq := float64(q[i]) / m
			h += pp * math.Log2(qq)
		}
	}
	return -h
}

type symFreq struct {
	freq uint64
	sym  uint32
}

// scaleFreqs performs one pass of the water-filling allocation: symbols are
// visited in ascending raw-frequency order (mapping), each receiving a share
// of the remaining frame proportional to its share of the remaining mass,
// rounded to the nearest integer and floored at 1. It reports whether the
// frame was exhausted before every symbol could be assigned a nonzero share
// (in which case the caller must retry with a larger frame).
func scaleFreqs(scaled []uint32, freqs []uint64, mapping []uint32, targetFrame int64, freqSum uint64) bool {
	m := targetFrame
	fs := freqSum
	for _, sym := range mapping {
		aratio := float64(m) / float64(fs)
		s := uint32(0.5 + aratio*float64(freqs[sym]))
		if s == 0 {
			s = 1
		}
		scaled[sym] = s
		m -= int64(s)
		fs -= freqs[sym]
		if m < 0 {
			return true
		}
	}
	return m != 0
}

// normalize implements the generic normalizer (§4.3): it chooses the
// smallest power-of-two frame for which the normalized table's cross-entropy
// against freqs is within (1 + hApprox/1000) of the raw entropy, doubling
// the frame and retrying whenever the scale pass can't make every surviving
// symbol fit or the cross-entropy budget isn't met. If requireU16 is set
// and the frame that would satisfy the budget pushes any S_s to or past
// 2^16, the last accepted (smaller) table is returned instead.
func normalize(freqs []uint64, largestSym uint32, requireU16 bool, hApprox uint32) []uint32 {
	var sigma int
	var freqSum uint64
	for _, f := range freqs {
		freqSum += f
		if f != 0 {
			sigma++
		}
	}

	if freqSum == 0 {
		// An empty input has no symbols to model; water-filling has nothing
		// to fill. Ship a single unit of mass on symbol 0 so the frame is
		// well-formed (frame_size == 1); engine.go's interleave loop never
		// calls encodeOne for an empty input.
		scaled := make([]uint32, largestSym+1)
		scaled[0] = 1
		return scaled
	}

	targetFrame := uint64(sigma)
	if !ints.IsPowerOfTwo(targetFrame) {
		targetFrame = ints.NextPowerOfTwo(targetFrame)
	}

	sorted := make([]symFreq, 0, sigma)
	for i, f := range freqs {
		if f != 0 {
			sorted = append(sorted, symFreq{freq: f, sym: uint32(i)})
		}
	}
	slices.SortFunc(sorted, func(a, b symFreq) bool {
		if a.freq != b.freq {
			return a.freq < b.freq
		}
		return a.sym < b.sym
	})
	mapping := make([]uint32, len(sorted))
	for i, sf := range sorted {
		mapping[i] = sf.sym
	}

	h := entropy(freqs, freqSum)
	scaled := make([]uint32, largestSym+1)
	prev := make([]uint32, largestSym+1)
	approxFactor := 1.0 + float64(hApprox)/1000.0
	threshold := h * approxFactor
	const u16Limit = 1<<16 - 1

	for {
		if scaleFreqs(scaled, freqs, mapping, int64(targetFrame), freqSum) {
			targetFrame *= 2
			continue
		}
		if requireU16 && maxNormFreq(scaled) > u16Limit {
			copy(scaled, prev)
			break
		}
		if crossEntropy(freqs, scaled) <= threshold {
			break
		}
		targetFrame *= 2
		copy(prev, scaled)
	}
	return scaled
}
