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

// Package mixer collects the bit-mixing functions perfhash's placement
// solvers use to turn a caller's uint64 hash into a value with good
// avalanche behavior across both the low bits lowerMaskPolicy consumes and
// the high bits upperShiftPolicy consumes. None of these are
// cryptographic; they exist to spread bits, not to resist an adversary who
// controls the input.
//
// Mulx, Xmx, Xm and M are named after the mixing primitives of the same
// name in the 64-bit finalizers this package's construction was ported
// from (see the module's DESIGN.md). Murmur3 and Murmur3String wrap
// github.com/spaolacci/murmur3 for callers who would rather use a
// well-studied general-purpose hash than one of the narrow bit-mixers.
package mixer
