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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLowerMaskPolicyRoundsUpToPowerOfTwo(t *testing.T) {
	p := lowerMaskPolicy{}
	for _, tc := range []struct{ n, want uint64 }{
		{0, 2}, {1, 2}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {9, 16}, {1000, 1024},
	} {
		idx := p.sizeIndex(tc.n)
		require.Equal(t, tc.want, uint64(p.size(idx)), "n=%d", tc.n)
	}
}

func TestLowerMaskPolicyPosition(t *testing.T) {
	p := lowerMaskPolicy{}
	idx := p.sizeIndex(16) // size 16, mask 15
	require.EqualValues(t, 15, idx)
	require.EqualValues(t, 5, p.position(0xFFFF_FFFF_FFFF_FF05, idx))
}

func TestUpperShiftPolicyRoundsUpToPowerOfTwo(t *testing.T) {
	p := upperShiftPolicy{}
	for _, tc := range []struct{ n, want uint64 }{
		{0, 2}, {1, 2}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {9, 16}, {1000, 1024},
	} {
		idx := p.sizeIndex(tc.n)
		require.Equal(t, tc.want, uint64(p.size(idx)), "n=%d", tc.n)
	}
}

func TestUpperShiftPolicyPosition(t *testing.T) {
	p := upperShiftPolicy{}
	idx := p.sizeIndex(4) // size 4 -> shift 62
	require.EqualValues(t, 62, idx)
	require.EqualValues(t, 3, p.position(uint64(3)<<62, idx))
}

func TestSizePoliciesAgreeOnRequestedCapacity(t *testing.T) {
	lower, upper := lowerMaskPolicy{}, upperShiftPolicy{}
	for n := uint64(1); n < 2000; n++ {
		li := lower.sizeIndex(n)
		ui := upper.sizeIndex(n)
		require.Equal(t, lower.size(li), upper.size(ui), "n=%d", n)
	}
}
