// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import "unsafe"

// initialStackSize is the usable body size of a freshly created stack
// segment, in bytes (§4.2).
const initialStackSize = 65536

// StackRegistry is the memory-checker hook a stack segment registers its
// body range with on creation and deregisters on destruction. The core
// never inspects the range itself; it is a structural hook for tools that
// need to know which byte ranges are proc stacks (conservative scanners,
// leak checkers, sanitizers).
type StackRegistry interface {
	Register(lo, hi uintptr)
	Deregister(lo, hi uintptr)
}

// noopRegistry is the default StackRegistry: it does nothing.
type noopRegistry struct{}

func (noopRegistry) Register(lo, hi uintptr)   {}
func (noopRegistry) Deregister(lo, hi uintptr) {}

// StackSegment is a heap-allocated, contiguous stack region. next/prev link
// segments in a sibling chain; the current core never allocates more than
// one segment per proc, so the chain is always a single node, but the links
// exist as a structural hook for future segmented-stack growth (§4.2, §3).
type StackSegment struct {
	next, prev *StackSegment
	size       int
	used       int
	body       []byte
	registry   StackRegistry
}

// NewStackSegment allocates one segment of size bytes, zeroes its header
// fields, and registers its body range with reg (a nil reg uses the no-op
// default).
func NewStackSegment(size int, reg StackRegistry) *StackSegment {
	if reg == nil {
		reg = noopRegistry{}
	}
	s := &StackSegment{
		size:     size,
		body:     make([]byte, size),
		registry: reg,
	}
	lo, hi := s.Range()
	s.registry.Register(lo, hi)
	return s
}

// Range returns the [lo, hi) address range of the segment's body.
func (s *StackSegment) Range() (lo, hi uintptr) {
	if len(s.body) == 0 {
		return 0, 0
	}
	lo = uintptr(unsafe.Pointer(&s.body[0]))
	return lo, lo + uintptr(len(s.body))
}

// TopOfStack computes the initial stack pointer for a fresh proc: the last
// word-sized cell of the body, masked down to 16-byte alignment (§4.3).
func (s *StackSegment) TopOfStack() uintptr {
	_, hi := s.Range()
	top := hi - unsafe.Sizeof(uintptr(0))
	return top &^ 15
}

// FreeStackSegment walks the next chain and frees each segment,
// deregistering each from its memory checker.
func FreeStackSegment(s *StackSegment) {
	for s != nil {
		next := s.next
		lo, hi := s.Range()
		s.registry.Deregister(lo, hi)
		s.body = nil
		s = next
	}
}
