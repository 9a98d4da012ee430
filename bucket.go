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

import "sort"

// Hash maps a key to an unsigned machine word. It must be deterministic
// within a single construction but need not be stable across runs or
// processes.
type Hash[K any] func(key K) uint64

// Equal is an equivalence relation on keys.
type Equal[K any] func(a, b K) bool

// bucketNode is one key's entry in its bucket's singly-linked list. Nodes
// live in a single contiguous arena (bucketNodes below) and are threaded
// together with 32-bit indices rather than pointers, per the arena+index
// pattern described in spec.md's design notes: O(1) append, cache-friendly,
// and the whole arena is simply dropped (no per-node frees) once
// construction returns.
type bucketNode struct {
	keyIdx int32
	hash   uint64
	next   int32 // -1 terminates the list.
}

// bucketEntry is the head of one bucket's node list plus its length, so
// descending-size ordering doesn't need to walk every list.
type bucketEntry struct {
	head int32 // -1 if the bucket is empty.
	size int32
}

// classifyBuckets groups keys into bucketCount buckets using bucketIndex
// (derived from a size policy applied to Hash), detecting duplicates along
// the way. A hash collision within a bucket is resolved immediately: equal
// keys under eq fail with ErrDuplicateElement, distinct keys sharing a hash
// fail with ErrDuplicateHash. Both are input defects, not search failures,
// so they propagate all the way out of the lambda-halving construction
// loop instead of triggering a retry.
func classifyBuckets[K any](keys []K, hash Hash[K], eq Equal[K], bucketCount int, bucketIndex func(hash uint64) int) ([]bucketNode, []bucketEntry, error) {
	nodes := make([]bucketNode, 0, len(keys))
	buckets := make([]bucketEntry, bucketCount)
	for i := range buckets {
		buckets[i].head = -1
	}

	for i, k := range keys {
		h := hash(k)
		b := bucketIndex(h)
		entry := &buckets[b]
		for cur := entry.head; cur != -1; cur = nodes[cur].next {
			if nodes[cur].hash == h {
				if eq(keys[nodes[cur].keyIdx], k) {
					return nil, nil, duplicateElementError(b)
				}
				return nil, nil, duplicateHashError(b, h)
			}
		}
		nodes = append(nodes, bucketNode{keyIdx: int32(i), hash: h, next: entry.head})
		entry.head = int32(len(nodes) - 1)
		entry.size++
	}
	return nodes, buckets, nil
}

// descendingBucketOrder returns bucket indices ordered by descending size,
// ties broken by ascending original index. First-fit placement only works
// because large, constrained buckets are placed while the occupancy map is
// still sparse; this ordering must never be "optimized away".
func descendingBucketOrder(buckets []bucketEntry) []int {
	order := make([]int, len(buckets))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		bi, bj := buckets[order[i]], buckets[order[j]]
		if bi.size != bj.size {
			return bi.size > bj.size
		}
		return order[i] < order[j]
	})
	return order
}
