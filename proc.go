// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
)

// ProcState is one of the five states a proc occupies (§4.5, §6). The
// running value is deliberately zero so generated code can signal any
// non-running transition with a bitwise OR against zero.
type ProcState uint32

const (
	Running ProcState = iota
	CallingC
	Exiting
	BlockedReading
	BlockedWriting
)

func (s ProcState) String() string {
	switch s {
	case Running:
		return "running"
	case CallingC:
		return "calling_c"
	case Exiting:
		return "exiting"
	case BlockedReading:
		return "blocked_reading"
	case BlockedWriting:
		return "blocked_writing"
	default:
		return "unknown"
	}
}

// runnable reports whether the state belongs in the runnable pool
// ({Running, CallingC, Exiting}) as opposed to the blocked pool.
func (s ProcState) runnable() bool {
	return s == Running || s == CallingC || s == Exiting
}

const maxUpcallArgs = 8

// Proc is a lightweight cooperative task: it owns a stack, an
// upcall-argument area, a saved stack pointer, and a state (§3).
//
// The first seven fields mirror the generated-code ABI of §6 in order
// (word offsets 0-6). savedPC and savedSP are the ABI-visible register-save
// slots; the core itself never reads them back — the reified continuation
// held in susp is this Go rendering's actual saved-SP substitute (see
// SPEC_FULL.md, context.go). At creation savedSP holds the segment's real
// TopOfStack (§4.3); savedPC is never written and stays zero.
type Proc struct {
	rt      *Runtime           // offset 0: owning runtime (non-owning)
	stack   *StackSegment      // offset 1: owning pointer to current stack segment
	program *ProgramDescriptor // offset 2: back-reference to program descriptor (non-owning)
	savedPC uintptr            // offset 3: saved PC (reserved register save)
	savedSP uintptr            // offset 4: saved SP
	state   ProcState          // offset 5
	refs    atomix.Int32       // offset 6: producer/consumer refcount

	id ProcID

	// Upcall ABI: written by proc bodies before yielding, read by the
	// dispatcher, zeroed after dispatch (§4.7, §6).
	upcallCode uint32
	upcallArgs [maxUpcallArgs]uintptr

	idx int // position in current pool, maintained by swap-delete (§3 invariant ii)

	// activation/susp/result/pendingResume together are the idiomatic-Go
	// substitute for the register-save-area context switch of §4.4: see
	// context.go and DESIGN.md.
	activation       kont.Expr[kont.Resumed]
	susp             *kont.Suspension[kont.Resumed]
	result           kont.Resumed
	pendingResume    kont.Resumed
	hasPendingResume bool

	// Accounting fields, carried but not enforced by the core (§3).
	budgetMem, usedMem     int64
	budgetTicks, usedTicks int64
}

// State returns the proc's current state.
func (p *Proc) State() ProcState { return p.state }

// ID returns the proc's diagnostic identifier.
func (p *Proc) ID() ProcID { return p.id }

// Ref increments the proc's reference count. A proc is never freed while
// referenced by a channel sending through it or a port it owns (§3).
func (p *Proc) Ref() { p.refs.Add(1) }

// Unref decrements the proc's reference count.
func (p *Proc) Unref() { p.refs.Add(-1) }

func (p *Proc) refCount() int32 { return p.refs.Load() }

// transition moves p between the runnable and blocked pools per §4.5:
// remove from the current pool with swap-delete (fixing the moved
// element's idx), write the new state, push into the destination pool,
// record the new idx.
func (rt *Runtime) transition(p *Proc, dst ProcState) {
	srcPool := rt.poolFor(p.state)
	dstPool := rt.poolFor(dst)
	if srcPool != dstPool {
		if moved, movedIdx, ok := srcPool.SwapDelete(p.idx); ok {
			moved.idx = movedIdx
		}
	}
	p.state = dst
	if srcPool != dstPool {
		p.idx = dstPool.Push(p)
	}
}

// poolFor returns the pool a proc in state s currently lives in.
func (rt *Runtime) poolFor(s ProcState) *PtrVector[*Proc] {
	if s.runnable() {
		return &rt.runnable
	}
	return &rt.blocked
}
