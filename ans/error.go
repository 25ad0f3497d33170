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

import "errors"

type errorCode uint32

const (
	ecOK errorCode = iota
	ecMalformedPrelude
	ecStateUnderflow
	ecOutOfInputData
	ecWrongSymbolCount
	ecU16Overflow
	ecLastCode
)

var errs = [ecLastCode]error{
	ecOK:                nil,
	ecMalformedPrelude:  errors.New("malformed prelude: max_symbol or frame size out of range"),
	ecStateUnderflow:    errors.New("decoder state underflow: ran out of renormalization words"),
	ecOutOfInputData:    errors.New("out of input bytes"),
	ecWrongSymbolCount:  errors.New("decoded symbol count does not match requested length"),
	ecU16Overflow:       errors.New("normalized frequency exceeds 16 bits with require_u16 set"),
}
