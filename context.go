// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"unsafe"

	"code.hybscloud.com/kont"
)

// ActivationFunc is a program entry point: it takes an opaque environment
// pointer (the out-of-scope "crate" pointer of the compiler ABI) and the
// proc it is running on, and builds the Expr-world computation that IS
// the proc's body (§4.3, §6).
type ActivationFunc func(env unsafe.Pointer, p *Proc) kont.Expr[kont.Resumed]

// ProgramDescriptor is the structure of three function pointers the
// embedder supplies: init_code, main_code, fini_code (§6).
//
// Open question resolved (see DESIGN.md): the root proc built by Enter/Run
// chains InitCode, MainCode and FiniCode as one continuation, matching a
// conventional crt0 bootstrap. A proc created by the spawn upcall (§4.7
// code 2) only ever activates MainCode directly, matching §4.3's literal
// synthetic-frame description ("program.main_code (activation PC)").
type ProgramDescriptor struct {
	InitCode ActivationFunc
	MainCode ActivationFunc
	FiniCode ActivationFunc
	Env      unsafe.Pointer
}

// resumedExpr is the concrete Expr-world type a proc's activation
// evaluates to: an effect-carrying computation whose final result is a
// type-erased Resumed value.
type resumedExpr = kont.Expr[kont.Resumed]

// chainActivations sequences zero or more ActivationFuncs into one
// continuation, discarding intermediate results (crt0-style init/main/fini
// bootstrap). A nil phase is skipped. An all-nil chain completes
// immediately.
func chainActivations(env unsafe.Pointer, p *Proc, phases ...ActivationFunc) resumedExpr {
	var expr resumedExpr
	have := false
	for _, phase := range phases {
		if phase == nil {
			continue
		}
		e := phase(env, p)
		if !have {
			expr = e
			have = true
			continue
		}
		expr = kont.ExprThen[kont.Resumed, kont.Resumed](expr, e)
	}
	if !have {
		expr = kont.ExprReturn[kont.Resumed](struct{}{})
	}
	return expr
}

// Glue is the C-to-proc context switch: a single call taking the proc
// pointer, returning nothing (§4.4, §6). Control returns to the core only
// when the proc's body transitions its state away from Running and yields.
//
// This is inherently non-portable at the machine level (§9); the runtime
// treats it as an external collaborator and only depends on the contract
// above. ExprGlue below is the reference implementation: a mock suitable
// for testing the scheduler and dispatcher independently of a real
// register/stack switch — here it is not just a test mock but the actual
// Go rendering, since kont's reified continuations already give a
// portable stand-in for a saved stack pointer.
type Glue func(p *Proc)

// ExprGlue enters p: on first entry it begins stepping p's activation; on
// later entries it resumes p's reified continuation with the value the
// previous upcall's dispatch computed. It returns only when p's body
// performs its next upcall (state becomes CallingC) or completes (state
// becomes Exiting) — the only two states glue may leave a proc in, per
// §4.5's transition table ("Effected by generated code").
func ExprGlue(p *Proc) {
	var result kont.Resumed
	var susp *kont.Suspension[kont.Resumed]
	switch {
	case p.susp == nil && !p.hasPendingResume:
		result, susp = kont.StepExpr[kont.Resumed](p.activation)
	case p.hasPendingResume:
		v := p.pendingResume
		p.pendingResume = nil
		p.hasPendingResume = false
		result, susp = p.susp.Resume(v)
	default:
		panic("procrt: glue invoked on a proc with no pending activation or resume value")
	}
	if susp == nil {
		p.result = result
		p.susp = nil
		p.state = Exiting
		return
	}
	p.susp = susp
	p.state = CallingC
}
