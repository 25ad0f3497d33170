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

package ans

import "github.com/mpetri/ans-large-alphabet-sub001/internal/ints"

const (
	byteMaxSigma     = 256
	byteMaxFrameSize = 4096
	byteFrameFactor  = 64
)

// normalizeByte is the byte codec's specialized normalizer: a fixed target
// frame of min(4096, 64*sigma), a descending-fudge proportional shrink loop
// that keeps retrying at a slightly lower scale until the sum fits the
// target, and a final surplus/deficit redistribution pass over the
// highest-indexed symbols first.
func normalizeByte(freqs [byteMaxSigma]uint64) [byteMaxSigma]uint32 {
	var adj [byteMaxSigma]uint32
	var uniqSyms, initialSum uint64
	for _, f := range freqs {
		initialSum += f
		if f != 0 {
			uniqSyms++
		}
	}

	if initialSum == 0 {
		adj[0] = 1
		return adj
	}

	targetFrameSize := uniqSyms * byteFrameFactor
	if targetFrameSize > byteMaxFrameSize {
		targetFrameSize = byteMaxFrameSize
	}
	if !ints.IsPowerOfTwo(targetFrameSize) {
		targetFrameSize = ints.NextPowerOfTwo(targetFrameSize)
	}

	c := float64(targetFrameSize) / float64(initialSum)
	curFrameSize := uint64(1<<63 - 1)
	fudge := 1.0
	for curFrameSize > targetFrameSize {
		fudge -= 0.01
		curFrameSize = 0
		for sym, f := range freqs {
			v := uint32(fudge * float64(f) * c)
			if v == 0 && f != 0 {
				v = 1
			}
			adj[sym] = v
			curFrameSize += uint64(v)
		}
	}

	excess := int64(targetFrameSize) - int64(curFrameSize)
	for sym := 0; sym < byteMaxSigma; sym++ {
		idx := byteMaxSigma - sym - 1
		ncnt := adj[idx]
		if ncnt == 0 {
			continue
		}
		ratio := float64(excess) / float64(curFrameSize)
		adder := int64(ratio * float64(ncnt))
		if adder > excess {
			adder = excess
		}
		excess -= adder
		curFrameSize -= uint64(ncnt)
		adj[idx] = uint32(int64(ncnt) + adder)
	}
	if excess != 0 {
		var maxFreq uint32
		var maxSym int
		for sym, f := range adj {
			if f > maxFreq {
				maxFreq = f
				maxSym = sym
			}
		}
		adj[maxSym] = uint32(int64(adj[maxSym]) + excess)
	}
	return adj
}
