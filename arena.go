// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import "unsafe"

// arena is the runtime's malloc/free bookkeeping for the malloc/free
// upcalls (§4.7 codes 4-5). Go's allocator does not fail observably the
// way §7's "allocator exhaustion" does, so arena simulates that failure
// mode against an optional byte budget (WithAllocLimit) — without it, the
// fatal exit-123 path would be unreachable and untestable.
//
// Tracked blocks are kept alive in the map for the lifetime between
// malloc and free, matching the manual-lifetime discipline the ABI implies
// even though the host language is garbage collected underneath.
type arena struct {
	blocks map[uintptr][]byte
	limit  int64
	used   int64
}

func (a *arena) malloc(size uintptr) (uintptr, error) {
	if a.limit > 0 && a.used+int64(size) > a.limit {
		return 0, ErrAllocExhausted
	}
	buf := make([]byte, size)
	var ptr uintptr
	if size > 0 {
		ptr = uintptr(unsafe.Pointer(&buf[0]))
	} else {
		ptr = uintptr(unsafe.Pointer(&buf))
	}
	a.blocks[ptr] = buf
	a.used += int64(size)
	return ptr, nil
}

func (a *arena) free(ptr uintptr) {
	buf, ok := a.blocks[ptr]
	if !ok {
		panic("procrt: free of untracked pointer")
	}
	a.used -= int64(len(buf))
	delete(a.blocks, ptr)
}
