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

// Package perfhash builds immutable, static perfect-hash sets over a fixed
// collection of keys. Given N distinct keys known up front, construction
// produces a lookup structure answering membership queries in expected
// O(1) time with no collision-chain traversal: every key lands in its own
// slot, decided once at construction time.
//
// Two construction schemes are provided:
//
//   - HD (hash-and-displace, NewHD): keys are grouped into buckets, and each
//     bucket is assigned a per-bucket displacement pair (d0, d1) that maps
//     every member of the bucket into a free slot of a compact N-sized
//     element array.
//   - FKS (two-level hashing, NewFKS): keys are grouped into buckets, and
//     each bucket is given a contiguous, power-of-two-sized private
//     sub-table inside one shared element array, located via a bucket-local
//     offset extracted from a bit window of the hash.
//
// Both schemes share a pluggable hash function and equality predicate, a
// duplicate-detection discipline that distinguishes true equal keys from
// hash collisions (see ErrDuplicateElement / ErrDuplicateHash), and a
// try-and-halve construction loop driven by a load parameter lambda (see
// WithLambda).
//
// # What this is not
//
// A Set is built once from a finite slice of keys and is read-only from
// that point on. There is no insertion, deletion, or rehashing after
// construction; concurrent readers need no synchronization. See
// SPEC_FULL.md in the module root for the full specification this package
// implements.
package perfhash
