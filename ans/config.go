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

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Variant names a symbol-space codec selectable through Config.
type Variant string

const (
	VariantByte        Variant = "byte"
	VariantSint        Variant = "sint"
	VariantSmsb        Variant = "smsb"
	VariantFold        Variant = "fold"
	VariantReorderFold Variant = "reorder_fold"
)

// Config describes which codec to run and its tunables; it is the YAML
// front-end a cmd/ansbench invocation loads, following the teacher's
// convention of unmarshaling YAML into JSON-tagged structs via
// sigs.k8s.io/yaml (which round-trips through encoding/json).
type Config struct {
	Variant Variant `json:"variant"`

	// HApprox bounds how far the normalized table's cross-entropy may
	// drift from the raw distribution's entropy, in thousandths (sint and
	// smsb only).
	HApprox uint32 `json:"hApprox,omitempty"`

	// Fidelity is the number of headroom bits a fold-space symbol keeps
	// before shedding a byte (fold and reorder_fold only).
	Fidelity uint32 `json:"fidelity,omitempty"`
}

// LoadConfig parses a YAML document into a Config and validates it.
func LoadConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports whether c names a known variant with tunables in range.
func (c Config) Validate() error {
	switch c.Variant {
	case VariantByte:
		return nil
	case VariantSint, VariantSmsb:
		if c.HApprox > 1000 {
			return fmt.Errorf("hApprox %d out of range [0,1000]", c.HApprox)
		}
		return nil
	case VariantFold, VariantReorderFold:
		if c.Fidelity < 1 || c.Fidelity > 16 {
			return fmt.Errorf("fidelity %d out of range [1,16]", c.Fidelity)
		}
		return nil
	default:
		return fmt.Errorf("unknown variant %q", c.Variant)
	}
}
