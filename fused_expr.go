// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"code.hybscloud.com/kont"
)

// Expr-world equivalents of fused.go's Then/Bind fusions: allocation-free
// once the frame pool is warm. Since every upcall here resolves to the
// single monomorphic result type kont.Resumed (context.go), one pair of
// helpers (performThenExpr, performBindExpr) backs all thirteen public
// combinators below instead of one variant per effect type.

var exprReturnFrame kont.Frame = kont.ReturnFrame{}

// identityResume is the identity resume function for EffectFrame
// construction. A named function produces a static function value.
func identityResume(v kont.Erased) kont.Erased { return v }

func performThenExpr(op any, next resumedExpr) resumedExpr {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[kont.Resumed](ef)
}

func bindUnwind(data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(kont.Resumed) resumedExpr)
	result := f(current)
	return kont.Erased(result.Value), result.Frame
}

func performBindExpr(op any, f func(kont.Resumed) resumedExpr) resumedExpr {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = bindUnwind
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[kont.Resumed](ef)
}

// ExprLogUint32Then performs upcall 0 and continues with next.
func ExprLogUint32Then(value uint32, next resumedExpr) resumedExpr {
	return performThenExpr(LogUint32{Value: value}, next)
}

// ExprLogStrThen performs upcall 1 and continues with next.
func ExprLogStrThen(ptr uintptr, next resumedExpr) resumedExpr {
	return performThenExpr(LogStr{Ptr: ptr}, next)
}

// ExprSpawnBind performs upcall 2 and passes the constructed child to f.
func ExprSpawnBind(out uintptr, program *ProgramDescriptor, f func(kont.Resumed) resumedExpr) resumedExpr {
	return performBindExpr(Spawn{Out: out, Program: program}, f)
}

// ExprCheckExprThen performs upcall 3 and continues with next.
func ExprCheckExprThen(truthy uintptr, next resumedExpr) resumedExpr {
	return performThenExpr(CheckExpr{Truthy: truthy}, next)
}

// ExprMallocBind performs upcall 4 and passes control to f.
func ExprMallocBind(out, size uintptr, f func(kont.Resumed) resumedExpr) resumedExpr {
	return performBindExpr(Malloc{Out: out, Size: size}, f)
}

// ExprFreeThen performs upcall 5 and continues with next.
func ExprFreeThen(ptr uintptr, next resumedExpr) resumedExpr {
	return performThenExpr(Free{Ptr: ptr}, next)
}

// ExprNewPortBind performs upcall 6 and passes control to f.
func ExprNewPortBind(out uintptr, f func(kont.Resumed) resumedExpr) resumedExpr {
	return performBindExpr(NewPort{Out: out}, f)
}

// ExprDelPortThen performs upcall 7 and continues with next.
func ExprDelPortThen(port *Port, next resumedExpr) resumedExpr {
	return performThenExpr(DelPort{Port: port}, next)
}

// ExprNewChanBind performs upcall 8 and passes control to f.
func ExprNewChanBind(out uintptr, port *Port, f func(kont.Resumed) resumedExpr) resumedExpr {
	return performBindExpr(NewChan{Out: out, Port: port}, f)
}

// ExprDelChanThen performs upcall 9 and continues with next.
func ExprDelChanThen(ch *Channel, next resumedExpr) resumedExpr {
	return performThenExpr(DelChan{Chan: ch}, next)
}

// ExprSendThen performs upcall 10 and continues with next once the proc
// has been rescheduled past its blocked-writing wait.
func ExprSendThen(ch *Channel, value uintptr, next resumedExpr) resumedExpr {
	return performThenExpr(Send{Chan: ch, Value: value}, next)
}

// ExprRecvBind performs upcall 11 and passes control to f once the proc
// has been rescheduled past its blocked-reading wait.
func ExprRecvBind(out uintptr, port *Port, f func(kont.Resumed) resumedExpr) resumedExpr {
	return performBindExpr(Recv{Out: out, Port: port}, f)
}

// ExprSchedThen performs upcall 12 and continues with next.
func ExprSchedThen(proc *Proc, next resumedExpr) resumedExpr {
	return performThenExpr(Sched{Proc: proc}, next)
}
