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

// ansbench drives exactly one codec call each way: it loads a Config,
// gathers a []uint32 input (a binary file of little-endian words, or a
// synthetic Zipf-like stream when no file is given), encodes it with the
// configured variant, decodes the result back, and reports the ratio and
// the encode and decode times.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/mpetri/ans-large-alphabet-sub001/ans"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func loadConfig(path string) ans.Config {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading config: %s", err)
	}
	cfg, err := ans.LoadConfig(data)
	if err != nil {
		fatalf("parsing config: %s", err)
	}
	return cfg
}

func loadValues(path string) []uint32 {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading input: %s", err)
	}
	if len(data)%4 != 0 {
		fatalf("input file length %d is not a multiple of 4", len(data))
	}
	values := make([]uint32, len(data)/4)
	for i := range values {
		values[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return values
}

// syntheticValues generates a Zipf-like stream: a handful of hot symbols
// dominate, with a long uniform tail, the kind of skew the tANS family is
// built for.
func syntheticValues(n int) []uint32 {
	r := rand.New(rand.NewSource(1))
	values := make([]uint32, n)
	for i := range values {
		if r.Intn(10) < 7 {
			values[i] = uint32(r.Intn(8))
		} else {
			values[i] = uint32(r.Intn(1 << 16))
		}
	}
	return values
}

func encode(cfg ans.Config, values []uint32) []byte {
	switch cfg.Variant {
	case ans.VariantByte:
		return ans.EncodeByte(values)
	case ans.VariantSint:
		return ans.EncodeSint(values, cfg.HApprox)
	case ans.VariantSmsb:
		return ans.EncodeSmsb(values, cfg.HApprox)
	case ans.VariantFold:
		return ans.EncodeFold(values, cfg.Fidelity)
	case ans.VariantReorderFold:
		return ans.EncodeReorderFold(values, cfg.Fidelity)
	default:
		fatalf("unknown variant %q", cfg.Variant)
		return nil
	}
}

func decode(cfg ans.Config, encoded []byte, n int) []uint32 {
	var values []uint32
	var code uint32
	switch cfg.Variant {
	case ans.VariantByte:
		v, ec := ans.DecodeByte(encoded, n)
		values, code = v, uint32(ec)
	case ans.VariantSint:
		v, ec := ans.DecodeSint(encoded, n)
		values, code = v, uint32(ec)
	case ans.VariantSmsb:
		v, ec := ans.DecodeSmsb(encoded, n)
		values, code = v, uint32(ec)
	case ans.VariantFold:
		v, ec := ans.DecodeFold(encoded, n, cfg.Fidelity)
		values, code = v, uint32(ec)
	case ans.VariantReorderFold:
		v, ec := ans.DecodeReorderFold(encoded, n, cfg.Fidelity)
		values, code = v, uint32(ec)
	default:
		fatalf("unknown variant %q", cfg.Variant)
	}
	if code != 0 {
		fatalf("decoding: error code %d", code)
	}
	return values
}

func main() {
	var configPath, inputPath string
	var synthN int
	flag.StringVar(&configPath, "c", "", "path to a YAML Config document (required)")
	flag.StringVar(&inputPath, "i", "", "path to a binary file of little-endian uint32 values (default: synthetic input)")
	flag.IntVar(&synthN, "n", 1<<20, "number of synthetic values to generate when -i is not given")
	flag.Parse()

	if configPath == "" {
		fatalf("usage: %s -c config.yaml [-i values.bin] [-n count]", os.Args[0])
	}
	cfg := loadConfig(configPath)

	var values []uint32
	if inputPath != "" {
		values = loadValues(inputPath)
	} else {
		values = syntheticValues(synthN)
	}

	start := time.Now()
	encoded := encode(cfg, values)
	encDur := time.Since(start)

	start = time.Now()
	decoded := decode(cfg, encoded, len(values))
	decDur := time.Since(start)

	if len(decoded) != len(values) {
		log.Fatalf("decoded length %d does not match input length %d", len(decoded), len(values))
	}
	for i := range values {
		if values[i] != decoded[i] {
			log.Fatalf("mismatch at index %d: got %d, want %d", i, decoded[i], values[i])
		}
	}

	rawBytes := len(values) * 4
	ratio := float64(rawBytes) / float64(len(encoded))
	fmt.Printf("variant=%s n=%d %dB -> %dB (%.3gx) encode=%s decode=%s\n",
		cfg.Variant, len(values), rawBytes, len(encoded), ratio, encDur, decDur)
}
