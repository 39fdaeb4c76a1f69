// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"testing"
	"testing/quick"
)

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// indexedItem stands in for a *Proc or *Channel: an element that carries
// its own position in a PtrVector, the invariant spec §8 states as
// data[idx]==P (and, for a port's writer queue, writers.data[idx]==C).
type indexedItem struct {
	idx int
}

// TestPropertyPoolVectorInvariants proves that for any arbitrarily
// generated sequence of push/swap-delete operations, a PtrVector's capacity
// stays a power of two at or above initialCapacity and at or above its
// occupancy, and every live element's stamped idx matches its actual
// position.
func TestPropertyPoolVectorInvariants(t *testing.T) {
	property := func(ops []uint8) bool {
		var v PtrVector[*indexedItem]
		v.Init()
		var live []*indexedItem
		for _, op := range ops {
			if len(live) == 0 || op%3 != 0 {
				item := &indexedItem{}
				item.idx = v.Push(item)
				live = append(live, item)
			} else {
				i := int(op) % len(live)
				target := live[i]
				if moved, movedIdx, ok := v.SwapDelete(target.idx); ok {
					moved.idx = movedIdx
				}
				last := len(live) - 1
				live[i] = live[last]
				live = live[:last]
			}
			if !isPowerOfTwo(v.Cap()) || v.Cap() < initialCapacity || v.Cap() < v.Len() {
				return false
			}
			for idx, item := range live {
				if item.idx != idx || v.At(idx) != item {
					return false
				}
			}
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyPortWriterQueueInvariants proves the same data[idx]==C
// invariant for a port's writer queue: for any arbitrarily generated
// sequence of channels queuing (as send does on rendezvous failure) and
// dequeuing (as recv does on a successful rendezvous) at random, every
// still-queued channel's idx matches its actual position.
func TestPropertyPortWriterQueueInvariants(t *testing.T) {
	property := func(ops []uint8) bool {
		var writers PtrVector[*Channel]
		writers.Init()
		var live []*Channel
		for _, op := range ops {
			if len(live) == 0 || op%3 != 0 {
				ch := &Channel{idx: -1}
				ch.overflow.Init(1)
				ch.idx = writers.Push(ch)
				ch.queued = true
				live = append(live, ch)
			} else {
				i := int(op) % len(live)
				target := live[i]
				if moved, movedIdx, ok := writers.SwapDelete(target.idx); ok {
					moved.idx = movedIdx
				}
				target.queued = false
				target.idx = -1
				last := len(live) - 1
				live[i] = live[last]
				live = live[:last]
			}
			for idx, ch := range live {
				if ch.idx != idx || writers.At(idx) != ch {
					return false
				}
			}
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}
