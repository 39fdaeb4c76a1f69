// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package procrt implements a cooperative, single-threaded, user-space
// process runtime for green-threaded generated code.
//
// Procs are lightweight tasks scheduled uniformly at random from a
// runnable pool. A proc blocks by performing an upcall — a numbered
// service request the runtime dispatches (log, spawn, malloc, port and
// channel management, send, recv, sched) — and resumes only when the
// core moves it back to Running.
//
// # Architecture
//
//   - Scheduling: two dense pointer-vectors (runnable, blocked) with
//     swap-delete removal and a keyed PRNG for fair random pick (sched.go,
//     pool.go).
//   - Context switch: a real machine-level register/stack switch is out of
//     scope; ExprGlue (context.go) renders it as a reified continuation
//     step via [code.hybscloud.com/kont]'s Expr/Suspension machinery —
//     itself the mock the runtime's own contract sanctions for testing.
//   - Rendezvous: ports are single-reader receive endpoints, channels are
//     writer-side endpoints; a send/recv pair transfers exactly one word
//     synchronously (port.go).
//   - Execution: dual-world API mirroring [code.hybscloud.com/kont]'s
//     Cont-world (fused.go) and Expr-world (fused_expr.go) combinators for
//     building proc bodies out of upcalls.
//
// # Topology
//
//   - Upcalls: [LogUint32], [LogStr], [Spawn], [CheckExpr], [Malloc],
//     [Free], [NewPort], [DelPort], [NewChan], [DelChan], [Send], [Recv],
//     [Sched].
//   - Cont-world: [LogUint32Then], [SpawnBind], [SendThen], [RecvBind], and
//     so on for every upcall.
//   - Expr-world: zero-allocation variants prefixed Expr, e.g.
//     [ExprSendThen], [ExprRecvBind]. Bridge via [Reify] and [Reflect].
//   - Recursive proc bodies: [Loop] and [ExprLoop].
//
// # Entry point
//
// [Enter] constructs a [Runtime], drives [Runtime.Run]'s main loop to
// completion, and returns a process exit code: 0 on quiescence, 1 on
// deadlock, 123 on allocator exhaustion.
//
//	program := &procrt.ProgramDescriptor{MainCode: myMain}
//	os.Exit(procrt.Enter(program, procrt.ExprGlue))
package procrt
