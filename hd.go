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

// hdDisplacement is a per-bucket displacement pair (d0, d1), pre-encoded so
// that the lookup formula is a single multiply-add: pos = (d0 + d1*hash) >>
// elemSizeIndex. d0 is pre-shifted left by elemSizeIndex so its contribution
// lives above the bits d1*hash occupies before the final shift, and d1 is
// encoded as (d1<<32)+1 so it is always odd (invertible mod a power of two)
// and mixes enough bits with d0 when combined. This encoding is specific to
// 64-bit words (see DESIGN.md).
type hdDisplacement struct {
	d0 uint64
	d1 uint64
}

// HDSet is an immutable perfect hash set built by the hash-and-displace
// (HD) scheme: every key occupies a unique slot in a compact N-long element
// array, located by one multiply-add per lookup plus a range check.
type HDSet[K any] struct {
	elements []K
	jumps    []hdDisplacement

	hash Hash[K]
	eq   Equal[K]

	n             int
	dispSizeIndex uint64 // lowerMaskPolicy size index for the bucket table.
	elemSizeIndex uint64 // upperShiftPolicy size index for the element slot.

	allocator Allocator[K]
}

// NewHD builds an HDSet over keys using hash and eq. Construction tries
// successively smaller values of lambda (starting from DefaultLambda or
// whatever WithLambda supplies), halving on every failed placement search,
// until it either succeeds or lambda reaches zero (ErrConstructionFailure).
// ErrDuplicateElement and ErrDuplicateHash are input defects and are
// returned immediately, without any lambda retry.
func NewHD[K any](keys []K, hash Hash[K], eq Equal[K], opts ...Option[K]) (*HDSet[K], error) {
	cfg := newConfig[K]()
	for _, o := range opts {
		o.apply(cfg)
	}

	lastLambda := cfg.lambda
	for lambda := cfg.lambda; lambda > 0; lambda /= 2 {
		lastLambda = lambda
		set, ok, err := tryConstructHD(keys, hash, eq, lambda, cfg.allocator)
		if err != nil {
			return nil, err
		}
		if ok {
			cfg.logger.Infof("perfhash: HD construction succeeded: n=%d buckets=%d lambda=%d", len(keys), len(set.jumps), lambda)
			return set, nil
		}
		cfg.logger.Debugf("perfhash: HD construction failed at lambda=%d, halving", lambda)
	}
	return nil, constructionFailureError(lastLambda)
}

func tryConstructHD[K any](keys []K, hash Hash[K], eq Equal[K], lambda int, allocator Allocator[K]) (*HDSet[K], bool, error) {
	n := len(keys)

	disp := lowerMaskPolicy{}
	dispSizeIndex := disp.sizeIndex(uint64(divCeil(n, lambda)))
	bucketCount := disp.size(dispSizeIndex)

	nodes, buckets, err := classifyBuckets(keys, hash, eq, bucketCount, func(h uint64) int {
		return int(disp.position(h, dispSizeIndex))
	})
	if err != nil {
		return nil, false, err
	}

	elem := upperShiftPolicy{}
	elemSizeIndex := elem.sizeIndex(uint64(n + 1))
	extended := uint64(elem.size(elemSizeIndex))

	elements := allocator.AllocElements(n)
	jumps := make([]hdDisplacement, len(buckets))
	mask := newOccupancyMask(n)

	positions := make([]int, 0, 16)
	for _, bi := range descendingBucketOrder(buckets) {
		b := buckets[bi]
		if b.size == 0 {
			break // Remaining buckets, ordered by descending size, are also empty.
		}

		placed := false
	searchD0:
		for d0 := uint64(0); d0 < extended; d0++ {
			d0Shifted := d0 << elemSizeIndex
			for d1 := uint64(0); d1 < extended; d1++ {
				d1Encoded := (d1 << 32) + 1

				positions = positions[:0]
				ok := true
				for cur := b.head; cur != -1; cur = nodes[cur].next {
					pos := elem.position(d0Shifted+d1Encoded*nodes[cur].hash, elemSizeIndex)
					if pos >= uint64(n) || !mask.free(int(pos)) || containsInt(positions, int(pos)) {
						ok = false
						break
					}
					positions = append(positions, int(pos))
				}
				if !ok {
					continue
				}

				i := 0
				for cur := b.head; cur != -1; cur = nodes[cur].next {
					pos := positions[i]
					i++
					mask.take(pos)
					elements[pos] = keys[nodes[cur].keyIdx]
				}
				jumps[bi] = hdDisplacement{d0: d0Shifted, d1: d1Encoded}
				placed = true
				break searchD0
			}
		}
		if !placed {
			return nil, false, nil
		}
	}

	return &HDSet[K]{
		elements:      elements,
		jumps:         jumps,
		hash:          hash,
		eq:            eq,
		n:             n,
		dispSizeIndex: dispSizeIndex,
		elemSizeIndex: elemSizeIndex,
		allocator:     allocator,
	}, true, nil
}

// Find reports whether k is a member of the set and, if so, the stored key
// that compares equal to it (useful when K carries data beyond what
// equality compares on). Find never allocates, never mutates the set, and
// performs at most two dependent loads: one from the jump table, one from
// the element array.
func (s *HDSet[K]) Find(k K) (K, bool) {
	h := s.hash(k)
	jmp := s.jumps[lowerMaskPolicy{}.position(h, s.dispSizeIndex)]
	pos := upperShiftPolicy{}.position(jmp.d0+jmp.d1*h, s.elemSizeIndex)
	if pos >= uint64(s.n) {
		var zero K
		return zero, false
	}
	stored := s.elements[pos]
	if !s.eq(k, stored) {
		var zero K
		return zero, false
	}
	return stored, true
}

// Len returns the number of keys stored in the set.
func (s *HDSet[K]) Len() int { return s.n }

// All iterates every stored key in element-array slot order. Iteration
// order carries no meaning beyond that; there is no guarantee it relates to
// input order.
func (s *HDSet[K]) All(yield func(K) bool) {
	for _, k := range s.elements {
		if !yield(k) {
			return
		}
	}
}

// Close releases the set's element array back to its Allocator. It is
// unnecessary to call Close when using the default allocator.
func (s *HDSet[K]) Close() {
	if s.elements != nil {
		s.allocator.FreeElements(s.elements)
		s.elements = nil
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func divCeil(n, d int) int {
	if d <= 0 {
		return n
	}
	return (n + d - 1) / d
}
