// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"fmt"
	"unsafe"
)

// Runtime holds two proc pools (runnable, blocked), a PRNG, and the saved
// host stack-pointer cell used by the context switch (§3).
//
// The first fields mirror the generated-code-visible runtime record of
// §6: a C-register save area (hostPC, hostSP) followed by the current proc
// pointer and the two pool vectors. hostPC/hostSP are kept for interface
// fidelity but never written: ExprGlue's Go rendering of the context switch
// does not spill to them (see context.go).
type Runtime struct {
	hostPC   uintptr       // offset 0
	hostSP   uintptr       // offset 1
	current  *Proc         // offset 2
	runnable PtrVector[*Proc]
	blocked  PtrVector[*Proc]

	rng      *prng
	registry StackRegistry
	stackSize int

	arena arena

	diag Diagnostics
	glue Glue
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithSeed sets the PRNG's seed key (§4.6). Default: a fixed non-zero key,
// deterministic across runs unless overridden — run-to-run determinism is
// not required, only that the generator be keyed and deterministic given a
// key.
func WithSeed(seed uint64) Option {
	return func(rt *Runtime) { rt.rng = newPRNG(seed) }
}

// WithStackSize overrides the per-proc stack segment size (default
// initialStackSize, §4.2).
func WithStackSize(n int) Option {
	return func(rt *Runtime) { rt.stackSize = n }
}

// WithStackRegistry installs a memory-checker hook for stack segments
// (default: a no-op registry).
func WithStackRegistry(reg StackRegistry) Option {
	return func(rt *Runtime) { rt.registry = reg }
}

// WithAllocLimit bounds the runtime's malloc arena in bytes. Exceeding it
// is allocator exhaustion (§7): fatal, reported to Enter as exit code 123.
// Zero (the default) means unbounded.
func WithAllocLimit(n int64) Option {
	return func(rt *Runtime) { rt.arena.limit = n }
}

// WithDiagnostics installs a diagnostic sink (default: os.Stdout via
// newDefaultDiagnostics).
func WithDiagnostics(d Diagnostics) Option {
	return func(rt *Runtime) { rt.diag = d }
}

// New constructs a Runtime: two empty pools, a seeded PRNG (default seed if
// unset), and the saved host stack-pointer cell.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stackSize: initialStackSize,
		registry:  noopRegistry{},
	}
	rt.runnable.Init()
	rt.blocked.Init()
	rt.arena.blocks = make(map[uintptr][]byte)
	for _, opt := range opts {
		opt(rt)
	}
	if rt.rng == nil {
		rt.rng = newPRNG(0x9e3779b97f4a7c15)
	}
	if rt.diag == nil {
		rt.diag = newDefaultDiagnostics()
	}
	return rt
}

// newProc allocates a proc record, obtains a stack segment, and writes the
// synthetic initial frame described in §4.3: TopOfStack becomes the proc's
// savedSP, and the activation is built by calling fn against the fresh
// proc. The proc is not inserted into any pool; callers do that.
func (rt *Runtime) newProc(program *ProgramDescriptor, fn ActivationFunc) *Proc {
	seg := NewStackSegment(rt.stackSize, rt.registry)
	p := &Proc{
		rt:      rt,
		stack:   seg,
		program: program,
		savedSP: seg.TopOfStack(),
		id:      nextProcID(),
	}
	p.refs.Store(1)
	p.activation = fn(program.Env, p)
	return p
}

// insert places a freshly created proc into the pool matching state,
// recording its idx.
func (rt *Runtime) insert(p *Proc, state ProcState) {
	p.state = state
	p.idx = rt.poolFor(state).Push(p)
}

// spawnRoot builds the root proc for Enter/Run: InitCode, MainCode and
// FiniCode chained as one continuation (§6, and the Open Question resolved
// in context.go's ProgramDescriptor doc).
func (rt *Runtime) spawnRoot(program *ProgramDescriptor) *Proc {
	return rt.newProc(program, func(env unsafe.Pointer, p *Proc) resumedExpr {
		chain := program.InitCode
		main := program.MainCode
		fini := program.FiniCode
		return chainActivations(env, p, chain, main, fini)
	})
}

// spawnChild builds a proc that activates only program.MainCode, matching
// §4.3's literal description of the synthetic frame written for a spawned
// proc. It is not enqueued (§4.7 code 2: spawn does not schedule; code 12,
// sched, does).
func (rt *Runtime) spawnChild(program *ProgramDescriptor) *Proc {
	p := rt.newProc(program, program.MainCode)
	rt.insert(p, Running)
	// spawn hands the new proc's ownership to the caller via the
	// out-pointer; the proc is not runnable until sched (§4.7) enqueues
	// it, so remove it from the runnable pool immediately, keeping only
	// the refcount alive.
	if moved, movedIdx, ok := rt.runnable.SwapDelete(p.idx); ok {
		moved.idx = movedIdx
	}
	p.idx = -1
	return p
}

// enqueue makes a constructed-but-not-yet-scheduled proc runnable (§4.7
// code 12, sched).
func (rt *Runtime) enqueue(p *Proc) {
	rt.insert(p, Running)
}

// freeProc releases a proc observed in Exiting from the main loop: it is
// removed from its pool, its stack is freed, and its refcount is dropped.
// It is a fatal error to free a proc with nonzero reference count beyond
// this final drop (§3 invariant v) — a port's reference is released by
// DelPort, and a queued channel's reference by the recv that dequeues it.
func (rt *Runtime) freeProc(p *Proc) {
	if moved, movedIdx, ok := rt.poolFor(p.state).SwapDelete(p.idx); ok {
		moved.idx = movedIdx
	}
	p.Unref()
	if p.refCount() > 0 {
		panic(fmt.Errorf("%w: proc freed with nonzero reference count", ErrProtocolViolation))
	}
	FreeStackSegment(p.stack)
	p.stack = nil
}

// Enter is the embedder entry point (§6): it constructs a Runtime, runs
// program to completion under glue, and returns a process exit code.
func Enter(program *ProgramDescriptor, glue Glue, opts ...Option) int {
	rt := New(opts...)
	code, err := rt.Run(program, glue)
	if err == nil {
		return code
	}
	switch err {
	case ErrDeadlock, ErrAllocExhausted:
		return code
	default:
		panic(err)
	}
}

// Start builds the root proc for program under glue and enqueues it, without
// running anything. Paired with Step, this gives an embedder a non-blocking
// way to drive several runtimes concurrently on one goroutine (see
// cmd/procrtd).
func (rt *Runtime) Start(program *ProgramDescriptor, glue Glue) {
	rt.glue = glue
	root := rt.spawnRoot(program)
	rt.insert(root, Running)
}

// Step performs one schedule-glue-dispatch cycle without looping. quiescent
// is true when nothing was scheduled, either because no procs remain (err
// nil) or because the runnable pool emptied with blocked procs left over
// (err ErrDeadlock). A dispatch failure (err ErrAllocExhausted) is also
// reported with quiescent true, since the runtime cannot make further
// progress once fatal.
func (rt *Runtime) Step() (quiescent bool, err error) {
	cur, ok := rt.schedule()
	if !ok {
		if rt.blocked.Len() > 0 {
			rt.diag.Logf("no schedulable processes")
			return true, ErrDeadlock
		}
		return true, nil
	}
	rt.current = cur
	rt.glue(cur)
	switch cur.state {
	case CallingC:
		if err := rt.dispatch(cur); err != nil {
			return true, err
		}
		if cur.state == Exiting {
			rt.freeProc(cur)
		}
	case Exiting:
		rt.freeProc(cur)
	default:
		panic(fmt.Errorf("%w: blocked state observed in main loop", ErrProtocolViolation))
	}
	return false, nil
}

// Run executes the main loop of §4.9: construct the root proc, enqueue it,
// then repeatedly schedule, invoke glue, and branch on the returned state.
// It returns (0, nil) when no procs remain live, (1, ErrDeadlock) when the
// runnable pool empties while procs remain blocked, and (123,
// ErrAllocExhausted) when the malloc arena's limit is exceeded.
func (rt *Runtime) Run(program *ProgramDescriptor, glue Glue) (int, error) {
	rt.Start(program, glue)

	for {
		quiescent, err := rt.Step()
		if !quiescent {
			continue
		}
		switch err {
		case nil:
			return 0, nil
		case ErrDeadlock:
			return 1, err
		default:
			return 123, err
		}
	}
}
