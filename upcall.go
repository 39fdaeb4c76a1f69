// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"unsafe"

	"code.hybscloud.com/kont"
)

// Upcall codes, in the order of §4.7's table.
const (
	CodeLogUint32 uint32 = iota
	CodeLogStr
	CodeSpawn
	CodeCheckExpr
	CodeMalloc
	CodeFree
	CodeNewPort
	CodeDelPort
	CodeNewChan
	CodeDelChan
	CodeSend
	CodeRecv
	CodeSched
)

// upcallOp is the structural interface every upcall Op satisfies, one per
// row of the upcall table. Every Op is phantom-typed over kont.Resumed
// since a proc's activation is monomorphic in that type (§4.7, context.go).
type upcallOp interface {
	Code() uint32
	DispatchUpcall(rt *Runtime, p *Proc) (result kont.Resumed, blocked bool, err error)
}

// dispatch decodes the upcall the proc is suspended on and performs the
// named service (§4.7). After dispatch it zeroes the upcall code field so
// generated code can signal a subsequent upcall by writing a nonzero value
// without first reading the old one. If the upcall did not block the proc
// (send/recv) or terminate it (check_expr with a falsy argument), it
// restores the proc to Running and stashes the upcall's result for the
// next glue entry to resume with.
func (rt *Runtime) dispatch(p *Proc) error {
	op, ok := p.susp.Op().(upcallOp)
	if !ok {
		panic("procrt: unhandled effect in dispatcher")
	}
	p.upcallCode = op.Code()
	result, blocked, err := op.DispatchUpcall(rt, p)
	p.upcallCode = 0
	if err != nil {
		return err
	}
	if blocked || p.state == Exiting {
		return nil
	}
	p.state = Running
	p.pendingResume, p.hasPendingResume = result, true
	return nil
}

// LogUint32 is upcall code 0: emit a diagnostic line with an unsigned
// 32-bit value.
type LogUint32 struct {
	kont.Phantom[kont.Resumed]
	Value uint32
}

func (LogUint32) Code() uint32 { return CodeLogUint32 }

func (op LogUint32) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = uintptr(op.Value)
	rt.diag.Logf("%d", op.Value)
	return struct{}{}, false, nil
}

// LogStr is upcall code 1: emit a diagnostic line from a pointer to a
// NUL-terminated C-string.
type LogStr struct {
	kont.Phantom[kont.Resumed]
	Ptr uintptr
}

func (LogStr) Code() uint32 { return CodeLogStr }

func (op LogStr) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = op.Ptr
	rt.diag.Logf("%s", cString(op.Ptr))
	return struct{}{}, false, nil
}

// Spawn is upcall code 2: create a new proc for Program and store its
// pointer through Out. It does not enqueue the new proc — see Sched.
type Spawn struct {
	kont.Phantom[kont.Resumed]
	Out     uintptr
	Program *ProgramDescriptor
}

func (Spawn) Code() uint32 { return CodeSpawn }

func (op Spawn) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0], p.upcallArgs[1] = op.Out, uintptr(unsafe.Pointer(op.Program))
	child := rt.spawnChild(op.Program)
	writeWord(op.Out, uintptr(unsafe.Pointer(child)))
	return child, false, nil
}

// CheckExpr is upcall code 3: if Truthy is zero, the proc self-terminates
// (state becomes Exiting) instead of resuming.
type CheckExpr struct {
	kont.Phantom[kont.Resumed]
	Truthy uintptr
}

func (CheckExpr) Code() uint32 { return CodeCheckExpr }

func (op CheckExpr) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = op.Truthy
	if op.Truthy == 0 {
		p.susp.Discard()
		p.susp = nil
		p.state = Exiting
		return nil, false, nil
	}
	return struct{}{}, false, nil
}

// Malloc is upcall code 4: allocate Size bytes, returning the pointer
// through Out.
type Malloc struct {
	kont.Phantom[kont.Resumed]
	Out  uintptr
	Size uintptr
}

func (Malloc) Code() uint32 { return CodeMalloc }

func (op Malloc) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0], p.upcallArgs[1] = op.Out, op.Size
	ptr, err := rt.arena.malloc(op.Size)
	if err != nil {
		return nil, false, err
	}
	writeWord(op.Out, ptr)
	return struct{}{}, false, nil
}

// Free is upcall code 5.
type Free struct {
	kont.Phantom[kont.Resumed]
	Ptr uintptr
}

func (Free) Code() uint32 { return CodeFree }

func (op Free) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = op.Ptr
	rt.arena.free(op.Ptr)
	return struct{}{}, false, nil
}

// NewPort is upcall code 6: allocate a port owned by the calling proc.
type NewPort struct {
	kont.Phantom[kont.Resumed]
	Out uintptr
}

func (NewPort) Code() uint32 { return CodeNewPort }

func (op NewPort) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = op.Out
	port := newPort(p)
	writeWord(op.Out, uintptr(unsafe.Pointer(port)))
	return struct{}{}, false, nil
}

// DelPort is upcall code 7: free a port (requires live refcount 0).
type DelPort struct {
	kont.Phantom[kont.Resumed]
	Port *Port
}

func (DelPort) Code() uint32 { return CodeDelPort }

func (op DelPort) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = uintptr(unsafe.Pointer(op.Port))
	delPort(op.Port)
	return struct{}{}, false, nil
}

// NewChan is upcall code 8: allocate a channel bound to Port.
type NewChan struct {
	kont.Phantom[kont.Resumed]
	Out  uintptr
	Port *Port
}

func (NewChan) Code() uint32 { return CodeNewChan }

func (op NewChan) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0], p.upcallArgs[1] = op.Out, uintptr(unsafe.Pointer(op.Port))
	ch := newChannel(op.Port)
	writeWord(op.Out, uintptr(unsafe.Pointer(ch)))
	return struct{}{}, false, nil
}

// DelChan is upcall code 9: free a channel. Per the ABI table (§4.7) and
// the open question recorded in §9, the channel argument is arg1, not
// arg0 — inconsistent with every other single-pointer upcall, but honored
// here as documented spec behavior rather than "fixed" underneath callers.
type DelChan struct {
	kont.Phantom[kont.Resumed]
	Chan *Channel
}

func (DelChan) Code() uint32 { return CodeDelChan }

func (op DelChan) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[1] = uintptr(unsafe.Pointer(op.Chan))
	delChan(op.Chan)
	return struct{}{}, false, nil
}

// Send is upcall code 10: block the caller writing, attempt rendezvous
// with the port's owner, else queue on the port's writer list (§4.8).
// arg0 = channel, arg1 = the value word to send.
type Send struct {
	kont.Phantom[kont.Resumed]
	Chan  *Channel
	Value uintptr
}

func (Send) Code() uint32 { return CodeSend }

func (op Send) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = uintptr(unsafe.Pointer(op.Chan))
	rt.send(p, op.Chan, op.Value)
	return nil, true, nil
}

// Recv is upcall code 11: block the caller reading, attempt rendezvous
// with a uniformly-chosen queued writer (§4.8). Per the ABI table and the
// open question in §9, arg1 (not arg0) carries the port; arg0 is the
// destination out-pointer the transferred word is written through.
type Recv struct {
	kont.Phantom[kont.Resumed]
	Out  uintptr
	Port *Port
}

func (Recv) Code() uint32 { return CodeRecv }

func (op Recv) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[1] = uintptr(unsafe.Pointer(op.Port))
	rt.recv(p, op.Port, op.Out)
	return nil, true, nil
}

// Sched is upcall code 12: enqueue a constructed proc into the runnable
// pool. Complements Spawn, which deliberately does not enqueue.
type Sched struct {
	kont.Phantom[kont.Resumed]
	Proc *Proc
}

func (Sched) Code() uint32 { return CodeSched }

func (op Sched) DispatchUpcall(rt *Runtime, p *Proc) (kont.Resumed, bool, error) {
	p.upcallArgs[0] = uintptr(unsafe.Pointer(op.Proc))
	rt.enqueue(op.Proc)
	return struct{}{}, false, nil
}
