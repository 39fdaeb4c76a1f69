// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"fmt"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// Port is a receive endpoint owned by exactly one proc (§3). It holds a
// live-refcount and weak-refcount, a back-reference to its owning proc,
// and the writer queue: a pointer-vector of channels currently queued to
// send to it.
type Port struct {
	live  atomix.Int32
	weak  atomix.Int32
	owner *Proc
	writers PtrVector[*Channel]
}

func newPort(owner *Proc) *Port {
	p := &Port{owner: owner}
	p.writers.Init()
	p.live.Store(1)
	owner.Ref()
	return p
}

// Channel is a writer-side endpoint targeting one port (§3). overflow is
// the single-word transport the rendezvous actually moves a value through:
// a one-slot lock-free queue from code.hybscloud.com/lfq, enqueued by send
// and dequeued by rendezvous, rather than reading the value straight out of
// the sender's upcall-argument area. Capacity 1 matches the invariant that
// a channel has at most one send outstanding at a time (it stays
// BlockedWriting until rendezvous drains it).
type Channel struct {
	port     *Port
	proc     *Proc
	queued   bool
	idx      int
	overflow lfq.SPSC[uintptr]
}

func newChannel(port *Port) *Channel {
	c := &Channel{port: port, idx: -1}
	c.overflow.Init(1)
	return c
}

// rendezvous implements §4.8's ordered pair (src, dst), where src is ch's
// blocked writer. Precondition: src.state == BlockedWriting and
// dst.state == BlockedReading. The transferred word is dequeued from ch's
// overflow slot (the value send enqueued there); the destination address is
// dst's upcall_args[0], interpreted as a pointer to a word. On success both
// participants move to Running and the call reports true; on precondition
// failure it reports false with no side effects. Composite values are out
// of scope (§4.8): only one word ever moves.
func rendezvous(rt *Runtime, ch *Channel, dst *Proc) bool {
	src := ch.proc
	if src.state != BlockedWriting || dst.state != BlockedReading {
		return false
	}
	value, err := ch.overflow.Dequeue()
	if err != nil {
		panic(fmt.Errorf("%w: channel overflow slot empty at rendezvous", ErrProtocolViolation))
	}
	writeWord(dst.upcallArgs[0], value)

	rt.transition(src, Running)
	rt.transition(dst, Running)
	src.hasPendingResume, src.pendingResume = true, struct{}{}
	dst.hasPendingResume, dst.pendingResume = true, struct{}{}
	return true
}

// send implements §4.8's send algorithm for upcall code 10: set
// ch.proc <- p, transition p to BlockedWriting, then attempt rendezvous
// with ch.port's owner. On rendezvous failure, queue ch on the port's
// writer list unless it is already queued, taking a reference on p for as
// long as ch holds onto it (§3: "a proc is never freed while referenced by
// a channel it is sending through"), released when recv dequeues ch. If
// the port has no owner, this is a "dead send" (§7d): logged and dropped,
// the sender stays blocked-writing forever — documented behavior, not a
// bug to fix here.
func (rt *Runtime) send(p *Proc, ch *Channel, value uintptr) {
	ch.proc = p
	p.upcallArgs[1] = value
	if err := ch.overflow.Enqueue(&value); err != nil {
		panic(fmt.Errorf("%w: channel overflow slot full at send", ErrProtocolViolation))
	}
	rt.transition(p, BlockedWriting)

	if ch.port == nil || ch.port.owner == nil {
		rt.diag.Logf("DEAD SEND")
		return
	}
	if rendezvous(rt, ch, ch.port.owner) {
		return
	}
	if !ch.queued {
		ch.idx = ch.port.writers.Push(ch)
		ch.queued = true
		p.Ref()
	}
}

// recv implements §4.8's recv algorithm for upcall code 11: transition d
// to BlockedReading, then, if port.writers is non-empty, draw a uniformly
// random writer and attempt rendezvous. On success, swap-delete the
// chosen channel from the writer queue (fixing the moved channel's idx),
// clear its queued flag, and release the reference send took on the
// dequeued writer.
func (rt *Runtime) recv(d *Proc, port *Port, out uintptr) {
	d.upcallArgs[0] = out
	rt.transition(d, BlockedReading)

	n := port.writers.Len()
	if n == 0 {
		return
	}
	i := int(rt.rng.intn(uint32(n)))
	ch := port.writers.At(i)
	src := ch.proc
	if !rendezvous(rt, ch, d) {
		return
	}
	if moved, movedIdx, ok := port.writers.SwapDelete(i); ok {
		moved.idx = movedIdx
	}
	ch.queued = false
	ch.idx = -1
	src.Unref()
}

// delPort frees a port. Requires the live-refcount be zero (§4.7 code 7),
// and releases the reference newPort took on its owner.
func delPort(port *Port) {
	if port.live.Load() != 0 {
		panic(fmt.Errorf("%w: delete port with nonzero live refcount", ErrProtocolViolation))
	}
	port.writers.Finalize()
	port.owner.Unref()
}

// delChan frees a channel. A channel queued on a port's writer list must
// be dequeued (by a successful recv, or by the caller) before deletion.
func delChan(ch *Channel) {
	if ch.queued {
		panic(fmt.Errorf("%w: delete channel still queued on a port", ErrProtocolViolation))
	}
}
