// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import "testing"

func TestPtrVectorPushLen(t *testing.T) {
	var v PtrVector[int]
	v.Init()
	v.Push(1)
	v.Push(2)
	v.Push(3)
	if v.Len() != 3 {
		t.Fatalf("len = %d, want 3", v.Len())
	}
	if v.At(1) != 2 {
		t.Fatalf("At(1) = %d, want 2", v.At(1))
	}
}

func TestPtrVectorSwapDeleteMiddle(t *testing.T) {
	var v PtrVector[int]
	v.Init()
	a := v.Push(10)
	v.Push(20)
	v.Push(30)

	moved, movedIdx, ok := v.SwapDelete(a)
	if !ok {
		t.Fatal("expected ok=true when a middle element moves into the hole")
	}
	if moved != 30 || movedIdx != a {
		t.Fatalf("moved=%d movedIdx=%d, want 30/%d", moved, movedIdx, a)
	}
	if v.Len() != 2 {
		t.Fatalf("len = %d, want 2", v.Len())
	}
	if v.At(a) != 30 {
		t.Fatalf("At(a) = %d, want 30", v.At(a))
	}
}

func TestPtrVectorSwapDeleteLast(t *testing.T) {
	var v PtrVector[int]
	v.Init()
	v.Push(1)
	last := v.Push(2)

	_, movedIdx, ok := v.SwapDelete(last)
	if ok {
		t.Fatal("expected ok=false when the last element is removed")
	}
	if movedIdx != -1 {
		t.Fatalf("movedIdx = %d, want -1", movedIdx)
	}
	if v.Len() != 1 {
		t.Fatalf("len = %d, want 1", v.Len())
	}
}

func TestPtrVectorSwapDeleteOnlyElement(t *testing.T) {
	var v PtrVector[int]
	v.Init()
	i := v.Push(42)
	_, _, ok := v.SwapDelete(i)
	if ok {
		t.Fatal("expected ok=false when the only element is removed")
	}
	if v.Len() != 0 {
		t.Fatalf("len = %d, want 0", v.Len())
	}
}

func TestPtrVectorSwapDeletePanicsWhenEmpty(t *testing.T) {
	var v PtrVector[int]
	v.Init()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on swap-delete of an empty vector")
		}
	}()
	v.SwapDelete(0)
}

func TestPtrVectorFinalizePanicsWhenNonEmpty(t *testing.T) {
	var v PtrVector[int]
	v.Init()
	v.Push(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on finalize of a non-empty vector")
		}
	}()
	v.Finalize()
}

func TestPtrVectorTrimShrinksOnLowOccupancy(t *testing.T) {
	var v PtrVector[int]
	v.Init()
	idx := make([]int, 0, 64)
	for i := 0; i < 64; i++ {
		idx = append(idx, v.Push(i))
	}
	grownCap := v.Cap()
	if grownCap <= initialCapacity {
		t.Fatalf("cap = %d, want > %d after 64 pushes", grownCap, initialCapacity)
	}
	for len(idx) > 4 {
		last := len(idx) - 1
		v.SwapDelete(idx[last])
		idx = idx[:last]
	}
	if v.Cap() >= grownCap {
		t.Fatalf("cap = %d, want < %d after shrinking to low occupancy", v.Cap(), grownCap)
	}
	if v.Cap() < initialCapacity {
		t.Fatalf("cap = %d, want >= initialCapacity(%d)", v.Cap(), initialCapacity)
	}
}
