// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package perfhash

import "math/bits"

// wordBits is the width of the hash word this package operates on. Both
// size policies and the HD displacement encoding are specific to 64-bit
// words (see DESIGN.md's Open Question decisions).
const wordBits = 64

// sizeExponent returns the exponent e such that 1<<e is the smallest power
// of two >= max(n, 2). This is shared by both size policies below; they
// differ only in how they turn the exponent into a size index and how they
// extract a position from a hash.
func sizeExponent(n uint64) uint64 {
	if n <= 2 {
		return 1
	}
	return uint64(bits.Len64(n - 1))
}

// lowerMaskPolicy rounds a requested capacity up to a power of two m and
// extracts a bucket position from the low bits of a hash: position(h) =
// h & (m-1). Used for the HD scheme's bucket table, since the HD element
// slot formula needs the high bits of the mixed hash (see upperShiftPolicy)
// and the two must not compete for the same bits.
type lowerMaskPolicy struct{}

func (lowerMaskPolicy) sizeIndex(n uint64) uint64 {
	return (uint64(1) << sizeExponent(n)) - 1
}

func (lowerMaskPolicy) size(sizeIndex uint64) int {
	return int(sizeIndex + 1)
}

func (lowerMaskPolicy) minSize() int { return 2 }

func (lowerMaskPolicy) position(hash, sizeIndex uint64) uint64 {
	return hash & sizeIndex
}

// upperShiftPolicy rounds a requested capacity up to a power of two m and
// extracts a position from the high bits of a hash: position(h) = h >>
// (wordBits - log2(m)). Used for the HD scheme's element array (the
// "extended" virtual capacity) and for the FKS scheme's bucket table.
type upperShiftPolicy struct{}

func (upperShiftPolicy) sizeIndex(n uint64) uint64 {
	return wordBits - sizeExponent(n)
}

func (upperShiftPolicy) size(sizeIndex uint64) int {
	return 1 << (wordBits - sizeIndex)
}

func (upperShiftPolicy) minSize() int { return 2 }

func (upperShiftPolicy) position(hash, sizeIndex uint64) uint64 {
	return hash >> sizeIndex
}
