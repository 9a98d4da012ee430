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

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perfhash/perfhash/mixer"
)

func mulxStringHash(s string) uint64 { return mixer.Mulxp3String([]byte(s), 0) }
func stringEq(a, b string) bool      { return a == b }

func testFKSBothVariants(t *testing.T, name string, fn func(t *testing.T, variant FKSVariant)) {
	t.Run(name+"/VariantA", func(t *testing.T) { fn(t, VariantA) })
	t.Run(name+"/VariantB", func(t *testing.T) { fn(t, VariantB) })
}

func TestFKSBasicMembership(t *testing.T) {
	testFKSBothVariants(t, "basic", func(t *testing.T, variant FKSVariant) {
		keys := []int{17, 42, 128, 256, 513, 1024}
		set, err := NewFKS(keys, mulxIntHash, intEq, WithLambda[int](4), WithVariant[int](variant))
		require.NoError(t, err)
		require.Equal(t, len(keys), set.Len())

		for _, k := range keys {
			got, ok := set.Find(k)
			require.True(t, ok, "key %d", k)
			require.Equal(t, k, got)
		}
		_, ok := set.Find(0)
		require.False(t, ok)
	})
}

func TestFKSStringKeys(t *testing.T) {
	testFKSBothVariants(t, "strings", func(t *testing.T, variant FKSVariant) {
		keys := make([]string, 100)
		for i := range keys {
			keys[i] = fmt.Sprintf("pfx_%d_sfx", i)
		}
		set, err := NewFKS(keys, mulxStringHash, stringEq, WithLambda[string](4), WithVariant[string](variant))
		require.NoError(t, err)

		for _, k := range keys {
			_, ok := set.Find(k)
			require.True(t, ok, "key %s", k)
		}
		_, ok := set.Find("pfx_100_sfx")
		require.False(t, ok)
	})
}

func TestFKSEmptySet(t *testing.T) {
	testFKSBothVariants(t, "empty", func(t *testing.T, variant FKSVariant) {
		set, err := NewFKS([]int(nil), mulxIntHash, intEq, WithVariant[int](variant))
		require.NoError(t, err)
		require.Equal(t, 0, set.Len())
		_, ok := set.Find(1)
		require.False(t, ok)
	})
}

func TestFKSDuplicateElement(t *testing.T) {
	testFKSBothVariants(t, "dupElement", func(t *testing.T, variant FKSVariant) {
		_, err := NewFKS([]int{1, 1}, mulxIntHash, intEq, WithVariant[int](variant))
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrDuplicateElement))
	})
}

func TestFKSDuplicateHash(t *testing.T) {
	testFKSBothVariants(t, "dupHash", func(t *testing.T, variant FKSVariant) {
		stub := func(int) uint64 { return 42 }
		_, err := NewFKS([]int{1, 2}, stub, intEq, WithVariant[int](variant))
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrDuplicateHash))
	})
}

func TestFKSSizeInvariant(t *testing.T) {
	keys := make([]int, 500)
	for i := range keys {
		keys[i] = i * 3
	}

	a, err := NewFKS(keys, mulxIntHash, intEq, WithVariant[int](VariantA))
	require.NoError(t, err)
	require.Len(t, a.elements, len(keys))

	b, err := NewFKS(keys, mulxIntHash, intEq, WithVariant[int](VariantB))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b.elements), len(keys))
}

func TestFKSLargeRandomSet(t *testing.T) {
	testFKSBothVariants(t, "large", func(t *testing.T, variant FKSVariant) {
		const n = 20_000
		r := rand.New(rand.NewSource(2))
		seen := make(map[int]struct{}, n)
		keys := make([]int, 0, n)
		for len(keys) < n {
			v := r.Int()
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			keys = append(keys, v)
		}

		set, err := NewFKS(keys, mulxIntHash, intEq, WithLambda[int](4), WithVariant[int](variant))
		require.NoError(t, err)
		require.Equal(t, n, set.Len())

		for _, k := range keys {
			_, ok := set.Find(k)
			require.True(t, ok)
		}

		falsePositives := 0
		for i := 0; i < 2000; i++ {
			v := r.Int()
			if _, present := seen[v]; present {
				continue
			}
			if _, ok := set.Find(v); ok {
				falsePositives++
			}
		}
		require.Zero(t, falsePositives)
	})
}

func TestFKSDeterministicConstruction(t *testing.T) {
	testFKSBothVariants(t, "deterministic", func(t *testing.T, variant FKSVariant) {
		keys := []int{3, 6, 9, 12, 15, 18, 21, 24, 27, 30}
		a, err := NewFKS(keys, mulxIntHash, intEq, WithVariant[int](variant))
		require.NoError(t, err)
		b, err := NewFKS(keys, mulxIntHash, intEq, WithVariant[int](variant))
		require.NoError(t, err)

		require.Equal(t, a.jumps, b.jumps)
		require.Equal(t, a.elements, b.elements)
	})
}

func TestFKSAllVisitsEveryKey(t *testing.T) {
	testFKSBothVariants(t, "all", func(t *testing.T, variant FKSVariant) {
		keys := []int{1, 2, 3, 4, 5}
		set, err := NewFKS(keys, mulxIntHash, intEq, WithVariant[int](variant))
		require.NoError(t, err)

		visited := make(map[int]bool)
		set.All(func(k int) bool {
			visited[k] = true
			return true
		})
		require.Len(t, visited, len(keys))
	})
}
