// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/kont"
)

// testProc constructs a minimal proc, inserted Running, for exercising the
// scheduler and rendezvous engine directly against the unexported API.
func testProc(rt *Runtime) *Proc {
	prog := &ProgramDescriptor{
		MainCode: func(env unsafe.Pointer, p *Proc) kont.Expr[kont.Resumed] {
			return kont.ExprReturn[kont.Resumed](struct{}{})
		},
	}
	p := rt.newProc(prog, prog.MainCode)
	rt.insert(p, Running)
	return p
}

func TestRendezvousTransfersWord(t *testing.T) {
	rt := New()
	src := testProc(rt)
	dst := testProc(rt)
	rt.transition(src, BlockedWriting)
	rt.transition(dst, BlockedReading)

	ch := &Channel{proc: src, idx: -1}
	ch.overflow.Init(1)
	value := uintptr(42)
	if err := ch.overflow.Enqueue(&value); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var out uintptr
	dst.upcallArgs[0] = uintptr(unsafe.Pointer(&out))

	if !rendezvous(rt, ch, dst) {
		t.Fatal("rendezvous reported failure on a valid blocked pair")
	}
	if out != 42 {
		t.Fatalf("out = %d, want 42", out)
	}
	if src.state != Running || dst.state != Running {
		t.Fatalf("states = %v/%v, want Running/Running", src.state, dst.state)
	}
}

func TestRendezvousRequiresBlockedStates(t *testing.T) {
	rt := New()
	src := testProc(rt)
	dst := testProc(rt)
	ch := &Channel{proc: src, idx: -1}
	ch.overflow.Init(1)
	if rendezvous(rt, ch, dst) {
		t.Fatal("rendezvous succeeded on procs that were not blocked")
	}
}

func TestSendQueuesWhenNoReaderWaiting(t *testing.T) {
	rt := New()
	owner := testProc(rt)
	sender := testProc(rt)
	port := newPort(owner)
	ch := newChannel(port)

	rt.send(sender, ch, 7)

	if !ch.queued {
		t.Fatal("expected channel to be queued on the port's writer list")
	}
	if port.writers.Len() != 1 {
		t.Fatalf("writers len = %d, want 1", port.writers.Len())
	}
	if sender.state != BlockedWriting {
		t.Fatalf("sender state = %v, want BlockedWriting", sender.state)
	}
}

func TestRecvDrainsAQueuedSender(t *testing.T) {
	rt := New()
	owner := testProc(rt)
	sender := testProc(rt)
	port := newPort(owner)
	ch := newChannel(port)
	rt.send(sender, ch, 55)

	var out uintptr
	rt.recv(owner, port, uintptr(unsafe.Pointer(&out)))

	if out != 55 {
		t.Fatalf("out = %d, want 55", out)
	}
	if ch.queued {
		t.Fatal("channel should have been dequeued by recv")
	}
	if port.writers.Len() != 0 {
		t.Fatalf("writers len = %d, want 0", port.writers.Len())
	}
	if sender.state != Running || owner.state != Running {
		t.Fatalf("states = %v/%v, want Running/Running", sender.state, owner.state)
	}
}

func TestRecvPicksOneQueuedSenderLeavingTheOtherQueued(t *testing.T) {
	rt := New()
	owner := testProc(rt)
	sender1 := testProc(rt)
	sender2 := testProc(rt)
	port := newPort(owner)
	ch1 := newChannel(port)
	ch2 := newChannel(port)

	rt.send(sender1, ch1, 1)
	rt.send(sender2, ch2, 2)

	if !ch1.queued || !ch2.queued {
		t.Fatal("expected both channels queued before any recv, per scenario 4")
	}
	if port.writers.Len() != 2 {
		t.Fatalf("writers len = %d, want 2", port.writers.Len())
	}

	var out uintptr
	rt.recv(owner, port, uintptr(unsafe.Pointer(&out)))

	if port.writers.Len() != 1 {
		t.Fatalf("writers len = %d, want 1 after recv picks one of two queued senders", port.writers.Len())
	}

	picked, other, otherSender := ch1, ch2, sender2
	if ch1.queued {
		picked, other, otherSender = ch2, ch1, sender1
	}
	if picked.queued {
		t.Fatal("the sender recv rendezvoused with should have been dequeued")
	}
	if !other.queued || other.idx < 0 {
		t.Fatal("the unselected sender must remain queued with idx tracking its position")
	}
	if otherSender.state != BlockedWriting {
		t.Fatalf("unselected sender state = %v, want BlockedWriting", otherSender.state)
	}
	if port.writers.At(other.idx) != other {
		t.Fatal("the unselected channel's idx must match its position after the swap-delete")
	}
	if out != 1 && out != 2 {
		t.Fatalf("out = %d, want 1 or 2", out)
	}
}

func TestRecvOnEmptyPortBlocks(t *testing.T) {
	rt := New()
	owner := testProc(rt)
	port := newPort(owner)

	var out uintptr
	rt.recv(owner, port, uintptr(unsafe.Pointer(&out)))

	if owner.state != BlockedReading {
		t.Fatalf("owner state = %v, want BlockedReading", owner.state)
	}
}

func TestSendToUnownedPortIsADeadSend(t *testing.T) {
	rt := New()
	sender := testProc(rt)
	ch := &Channel{idx: -1}
	ch.overflow.Init(1)

	rt.send(sender, ch, 1)

	if sender.state != BlockedWriting {
		t.Fatalf("sender state = %v, want BlockedWriting", sender.state)
	}
	if ch.queued {
		t.Fatal("a dead send must not be queued")
	}
}

func TestDelPortPanicsOnNonzeroLiveRefcount(t *testing.T) {
	rt := New()
	owner := testProc(rt)
	port := newPort(owner)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic deleting a port with a live refcount")
		}
	}()
	delPort(port)
}

func TestDelChanPanicsWhileQueued(t *testing.T) {
	rt := New()
	owner := testProc(rt)
	sender := testProc(rt)
	port := newPort(owner)
	ch := newChannel(port)
	rt.send(sender, ch, 1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic deleting a channel still queued on a port")
		}
	}()
	delChan(ch)
}
