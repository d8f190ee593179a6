// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package set

import (
	"cmp"
	"iter"
	"slices"
	"sort"
)

// SortedSet is an array of unique elements held in ascending order.  This is
// compact for the small sets of node identifiers being manipulated, and gives
// a deterministic iteration order.
type SortedSet[T cmp.Ordered] []T

// NewSortedSet returns a sorted set holding the given elements.
func NewSortedSet[T cmp.Ordered](items ...T) *SortedSet[T] {
	var set SortedSet[T]
	//
	for _, item := range items {
		set.Insert(item)
	}
	//
	return &set
}

// Len returns the number of elements in this set.
func (p *SortedSet[T]) Len() int {
	return len(*p)
}

// Contains returns true if a given element is in the set.
func (p *SortedSet[T]) Contains(element T) bool {
	i, found := p.find(element)
	return found && i < len(*p)
}

// Insert an element into this sorted set, returning true if it was not
// already present.
func (p *SortedSet[T]) Insert(element T) bool {
	i, found := p.find(element)
	//
	if !found {
		*p = slices.Insert(*p, i, element)
	}
	//
	return !found
}

// Remove an element from this sorted set, returning true if it was present.
func (p *SortedSet[T]) Remove(element T) bool {
	i, found := p.find(element)
	//
	if found {
		*p = slices.Delete(*p, i, i+1)
	}
	//
	return found
}

// InsertSorted inserts all elements of a given sorted set into this set.
func (p *SortedSet[T]) InsertSorted(q *SortedSet[T]) {
	left, right := *p, *q
	// Check for total inclusion
	if n := countDuplicates(left, right); n != len(right) {
		ndata := make([]T, len(left)+len(right)-n)
		mergeSorted(ndata, left, right)
		*p = ndata
	}
}

// Clone returns a copy of this set which shares no storage with it.
func (p *SortedSet[T]) Clone() *SortedSet[T] {
	ndata := slices.Clone(*p)
	return &ndata
}

// Equals checks whether two sets hold exactly the same elements.
func (p *SortedSet[T]) Equals(q *SortedSet[T]) bool {
	return slices.Equal(*p, *q)
}

// ToArray returns the elements of this set in ascending order.  The returned
// array must not be modified.
func (p *SortedSet[T]) ToArray() []T {
	return *p
}

// All returns an iterator over the elements of this set in ascending order.
func (p *SortedSet[T]) All() iter.Seq[T] {
	return slices.Values(*p)
}

func (p *SortedSet[T]) find(element T) (int, bool) {
	data := *p
	// Find index where element either does occur, or should occur.
	i := sort.Search(len(data), func(i int) bool {
		return element <= data[i]
	})
	//
	return i, i < len(data) && data[i] == element
}

// Determine number of duplicate elements
func countDuplicates[T cmp.Ordered](left []T, right []T) int {
	i, j, n := 0, 0, 0
	//
	for i < len(left) && j < len(right) {
		if left[i] < right[j] {
			i++
		} else if left[i] > right[j] {
			j++
		} else {
			i++
			j++
			n++
		}
	}
	//
	return n
}

// Merge two sorted arrays (left and right) into a target array, which is
// assumed big enough.
func mergeSorted[T cmp.Ordered](target []T, left []T, right []T) {
	i, j, k := 0, 0, 0
	//
	for ; i < len(left) && j < len(right); k++ {
		if left[i] < right[j] {
			target[k] = left[i]
			i++
		} else if left[i] > right[j] {
			target[k] = right[j]
			j++
		} else {
			target[k] = left[i]
			i++
			j++
		}
	}
	// Handle anything left
	if i < len(left) {
		copy(target[k:], left[i:])
	} else if j < len(right) {
		copy(target[k:], right[j:])
	}
}
