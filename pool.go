// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

// initialCapacity is the pre-allocated slot count for a fresh PtrVector.
// Capacity never drops below this floor (§4.1).
const initialCapacity = 8

// PtrVector is an amortized-growth dense array with swap-delete. It backs
// the runtime's runnable and blocked proc pools and a port's writer queue.
//
// Growth is explicit doubling, not Go's native append growth: append stops
// doubling once a slice grows past a size threshold and shifts to roughly
// 1.25x, which would eventually break §4.1's "capacity is always a power of
// two" invariant. Shrinkage mirrors this: trim halves capacity once
// occupancy drops to at most one quarter of it, and never below
// initialCapacity.
type PtrVector[T any] struct {
	data []T
}

// Init pre-allocates initialCapacity slots.
func (v *PtrVector[T]) Init() {
	v.data = make([]T, 0, initialCapacity)
}

// Finalize requires the vector be empty; it releases the backing array.
func (v *PtrVector[T]) Finalize() {
	if len(v.data) != 0 {
		panic("procrt: finalize on non-empty pointer-vector")
	}
	v.data = nil
}

// Len returns the current occupancy.
func (v *PtrVector[T]) Len() int {
	return len(v.data)
}

// Cap returns the current backing capacity, always a power of two >= initialCapacity.
func (v *PtrVector[T]) Cap() int {
	return cap(v.data)
}

// At returns the element at index i.
func (v *PtrVector[T]) At(i int) T {
	return v.data[i]
}

// Push appends item, growing capacity by explicit doubling when full so
// capacity always stays a power of two (see the type doc), and returns the
// new element's index.
func (v *PtrVector[T]) Push(item T) int {
	if len(v.data) == cap(v.data) {
		newCap := cap(v.data) * 2
		if newCap == 0 {
			newCap = initialCapacity
		}
		nd := make([]T, len(v.data), newCap)
		copy(nd, v.data)
		v.data = nd
	}
	v.data = append(v.data, item)
	return len(v.data) - 1
}

// SwapDelete removes the element at index i by moving the last element into
// the hole. It must never be called on an empty vector. If the removed
// element was not the last one, it returns the element that moved into the
// hole and its new index (== i) so the caller can fix up that element's
// stored idx field; ok is false when i was the last (or only) element, since
// nothing moved.
func (v *PtrVector[T]) SwapDelete(i int) (moved T, movedIdx int, ok bool) {
	n := len(v.data)
	if n == 0 {
		panic("procrt: swap-delete on empty pointer-vector")
	}
	last := n - 1
	if i != last {
		v.data[i] = v.data[last]
	}
	var zero T
	v.data[last] = zero
	v.data = v.data[:last]
	v.trim()
	if i == last {
		return zero, -1, false
	}
	return v.data[i], i, true
}

// trim halves capacity when occupancy is at most a quarter of it, provided
// the halved capacity stays at or above initialCapacity.
func (v *PtrVector[T]) trim() {
	c := cap(v.data)
	if c <= initialCapacity {
		return
	}
	if len(v.data) > c/4 {
		return
	}
	newCap := c / 2
	if newCap < initialCapacity {
		newCap = initialCapacity
	}
	nd := make([]T, len(v.data), newCap)
	copy(nd, v.data)
	v.data = nd
}
