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

// This file holds the four-register interleaved rANS loop shared by every
// symbol-space variant (byte, sint, smsb, fold, reorder-fold). The variants
// differ only in how a single symbol maps to a model index and how many
// exception bytes it sheds; the register bookkeeping below is identical
// across all of them.
package ans

import "encoding/binary"

const (
	// K is the lower-bound multiplier: L = K * M.
	K = 16
	// RadixLog2 is the renormalization radix exponent; each renormalization
	// event moves exactly 32 bits across the forward/backward cursor.
	RadixLog2 = 32
)

// fwdCursor accumulates exception bytes and renormalization words emitted
// during encoding, in the exact relative order the decoder expects them
// back: exception bytes for a symbol are always written before the
// renormalization word that symbol may trigger.
type fwdCursor struct {
	buf []byte
}

func (c *fwdCursor) putExceptionByte(v byte) {
	c.buf = append(c.buf, v)
}

func (c *fwdCursor) putU32(v uint32) {
	c.buf = binary.LittleEndian.AppendUint32(c.buf, v)
}

func (c *fwdCursor) putU64(v uint64) {
	c.buf = binary.LittleEndian.AppendUint64(c.buf, v)
}

// backCursor consumes a byte slice back-to-front, mirroring fwdCursor.
type backCursor struct {
	buf []byte
	pos int
}

func newBackCursor(buf []byte) *backCursor {
	return &backCursor{buf: buf, pos: len(buf)}
}

func (c *backCursor) popU64() (uint64, errorCode) {
	if c.pos < 8 {
		return 0, ecOutOfInputData
	}
	c.pos -= 8
	return binary.LittleEndian.Uint64(c.buf[c.pos:]), ecOK
}

func (c *backCursor) popU32() (uint32, errorCode) {
	if c.pos < 4 {
		return 0, ecOutOfInputData
	}
	c.pos -= 4
	return binary.LittleEndian.Uint32(c.buf[c.pos:]), ecOK
}

// popExceptionBytes reads n bytes (0..3) immediately preceding the current
// cursor position and reassembles them into a uint32 the same way they were
// packed on encode: the first byte written (lowest address) is the least
// significant byte of the result.
func (c *backCursor) popExceptionBytes(n int) (uint32, errorCode) {
	if n == 0 {
		return 0, ecOK
	}
	if c.pos < n {
		return 0, ecOutOfInputData
	}
	start := c.pos - n
	var v uint32
	for i := 0; i < n; i++ {
		v |= uint32(c.buf[start+i]) << (8 * i)
	}
	c.pos = start
	return v, ecOK
}

// encodeInterleaved runs the shared back-to-front, four-register encode
// loop: a leading remainder of length len(values)%4 is processed on
// register 0 alone, then the main loop feeds registers 0,1,2,3 each step.
// encodeOne must perform one symbol's model mapping, exception-byte
// emission, and rANS state transition.
func encodeInterleaved(values []uint32, lowerBound uint64, encodeOne func(state *uint64, v uint32, out *fwdCursor)) []byte {
	n := len(values)
	out := &fwdCursor{}
	var regs [4]uint64
	for i := range regs {
		regs[i] = lowerBound
	}

	cur := 0
	for (n-cur)%4 != 0 {
		encodeOne(&regs[0], values[n-cur-1], out)
		cur++
	}
	for cur != n {
		encodeOne(&regs[0], values[n-cur-1], out)
		encodeOne(&regs[1], values[n-cur-2], out)
		encodeOne(&regs[2], values[n-cur-3], out)
		encodeOne(&regs[3], values[n-cur-4], out)
		cur += 4
	}

	for i := 0; i < 4; i++ {
		out.putU64(regs[i] - lowerBound)
	}
	return out.buf
}

// decodeInterleaved is the inverse of encodeInterleaved: it pops the four
// final states off the tail in order 3,2,1,0, then decodes four symbols per
// step in register order 3,2,1,0, writing to consecutive output slots; the
// trailing remainder is decoded on register 0.
func decodeInterleaved(src []byte, n int, lowerBound uint64, decodeOne func(state *uint64, in *backCursor) (uint32, errorCode)) ([]uint32, errorCode) {
	in := newBackCursor(src)
	var regs [4]uint64
	for i := 3; i >= 0; i-- {
		raw, ec := in.popU64()
		if ec != ecOK {
			return nil, ec
		}
		regs[i] = raw + lowerBound
	}

	out := make([]uint32, n)
	fastN := n - n%4
	idx := 0
	for idx != fastN {
		for _, lane := range [4]int{3, 2, 1, 0} {
			v, ec := decodeOne(&regs[lane], in)
			if ec != ecOK {
				return nil, ec
			}
			out[idx+(3-lane)] = v
		}
		idx += 4
	}
	for idx != n {
		v, ec := decodeOne(&regs[0], in)
		if ec != ecOK {
			return nil, ec
		}
		out[idx] = v
		idx++
	}
	return out, ecOK
}
