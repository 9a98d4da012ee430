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

import "github.com/pkg/errors"

// Sentinel errors returned by NewHD and NewFKS. All three are recognizable
// with errors.Is even though construction wraps them with contextual detail
// (bucket index, lambda, hash value) via github.com/pkg/errors.
var (
	// ErrDuplicateElement is returned when two distinct input positions hold
	// keys that compare equal under the supplied Equal. The caller must
	// deduplicate its input; retrying with a different hash will not help.
	ErrDuplicateElement = errors.New("perfhash: duplicate element")

	// ErrDuplicateHash is returned when two inputs that do not compare equal
	// under Equal nonetheless hash to the same word. This is recoverable by
	// the caller: retry construction with a different hash function.
	ErrDuplicateHash = errors.New("perfhash: duplicate hash")

	// ErrConstructionFailure is returned when the lambda-halving placement
	// search exhausted lambda down to zero without finding a valid
	// assignment. The caller should retry with a different hash function or
	// a smaller input.
	ErrConstructionFailure = errors.New("perfhash: construction failed")
)

func duplicateElementError(bucket int) error {
	return errors.Wrapf(ErrDuplicateElement, "bucket %d", bucket)
}

func duplicateHashError(bucket int, hash uint64) error {
	return errors.Wrapf(ErrDuplicateHash, "bucket %d: hash %#x shared by two distinct keys", bucket, hash)
}

func constructionFailureError(lambda int) error {
	return errors.Wrapf(ErrConstructionFailure, "search exhausted at lambda=%d", lambda)
}
