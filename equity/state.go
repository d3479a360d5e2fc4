// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package equity

// CacheState records whether a memoized value has been loaded.
type CacheState int

const (
	Unset CacheState = iota
	Cached
)

func (state CacheState) String() string {
	switch state {
	case Cached:
		return "cached"
	default:
		return "unset"
	}
}

type memo[T any] struct {
	state CacheState
	value T
}

// get returns the cached value unless refresh is set or nothing is cached
// yet, in which case load replaces it. A failed load leaves the previous
// value untouched.
func (m *memo[T]) get(refresh bool, load func() (T, error)) (T, error) {
	if m.state == Cached && !refresh {
		return m.value, nil
	}

	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	m.value = value
	m.state = Cached
	return value, nil
}

func (m *memo[T]) reset() {
	var zero T
	m.value = zero
	m.state = Unset
}
