// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command procrtd hosts one or more proc programs on top of
// code.hybscloud.com/procrt. Code generation is out of scope for the
// runtime itself, so the "generated code" here is hand-written Go that
// implements the upcall ABI directly, standing in for what a compiler
// backend would emit.
package main

import (
	"flag"
	"fmt"
	"os"
	"unsafe"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/procrt"
)

func main() {
	var (
		seed      = flag.Uint64("seed", 0x9e3779b97f4a7c15, "scheduler PRNG seed")
		stackSize = flag.Int("stack-size", 0, "per-proc stack size in bytes (0: runtime default)")
		allocMax  = flag.Int64("alloc-limit", 0, "malloc arena byte budget (0: unbounded)")
		multi     = flag.Bool("multi", false, "host the demo program on several runtimes round-robin")
	)
	flag.Parse()

	opts := []procrt.Option{procrt.WithSeed(*seed)}
	if *stackSize > 0 {
		opts = append(opts, procrt.WithStackSize(*stackSize))
	}
	if *allocMax > 0 {
		opts = append(opts, procrt.WithAllocLimit(*allocMax))
	}

	if *multi {
		os.Exit(hostMany(opts, 4))
	}
	os.Exit(procrt.Enter(pingPongProgram(), procrt.ExprGlue, opts...))
}

// pingPongProgram builds a root program that spawns a child, exchanges one
// word with it over a fresh port/channel pair, and logs what it received.
func pingPongProgram() *procrt.ProgramDescriptor {
	// The child body is written in kont's Cont-world (NewChanBind, SendThen)
	// and bridged to the Expr-world glue loop via Reify, rather than using
	// the Expr* combinators directly the way the root body below does.
	child := &procrt.ProgramDescriptor{
		MainCode: func(env unsafe.Pointer, p *procrt.Proc) kont.Expr[kont.Resumed] {
			portPtr := (*procrt.Port)(env)
			var chanWord uintptr
			return procrt.Reify(procrt.NewChanBind(uintptr(unsafe.Pointer(&chanWord)), portPtr, func(kont.Resumed) kont.Eff[kont.Resumed] {
				ch := (*procrt.Channel)(unsafe.Pointer(chanWord))
				return procrt.SendThen(ch, 42, kont.Pure[kont.Resumed](struct{}{}))
			}))
		},
	}

	return &procrt.ProgramDescriptor{
		MainCode: func(env unsafe.Pointer, p *procrt.Proc) kont.Expr[kont.Resumed] {
			var portWord, spawnOut, recvWord uintptr
			return procrt.ExprNewPortBind(uintptr(unsafe.Pointer(&portWord)), func(kont.Resumed) kont.Expr[kont.Resumed] {
				port := (*procrt.Port)(unsafe.Pointer(portWord))
				child.Env = unsafe.Pointer(port)
				return procrt.ExprSpawnBind(uintptr(unsafe.Pointer(&spawnOut)), child, func(c kont.Resumed) kont.Expr[kont.Resumed] {
					cp := c.(*procrt.Proc)
					return procrt.ExprSchedThen(cp, procrt.ExprRecvBind(uintptr(unsafe.Pointer(&recvWord)), port, func(kont.Resumed) kont.Expr[kont.Resumed] {
						return procrt.ExprLogUint32Then(uint32(recvWord), procrt.ExprDelPortThen(port, kont.ExprReturn[kont.Resumed](struct{}{})))
					}))
				})
			})
		},
	}
}

// hostMany runs n independent runtimes, each hosting its own copy of
// pingPongProgram, round-robin on the calling goroutine, backing off with
// iox.Backoff only once every runtime has gone quiescent for a full pass.
func hostMany(opts []procrt.Option, n int) int {
	runtimes := make([]*procrt.Runtime, n)
	for i := range runtimes {
		rt := procrt.New(opts...)
		rt.Start(pingPongProgram(), procrt.ExprGlue)
		runtimes[i] = rt
	}

	code := 0
	remaining := n
	done := make([]bool, n)
	errs := make([]error, n)

	var bo iox.Backoff
	for remaining > 0 {
		progressed := false
		for i, rt := range runtimes {
			if done[i] {
				continue
			}
			quiescent, err := rt.Step()
			if !quiescent {
				progressed = true
				continue
			}
			done[i] = true
			errs[i] = err
			remaining--
		}
		if progressed {
			bo.Reset()
			continue
		}
		if remaining > 0 {
			bo.Wait()
		}
	}

	for i, err := range errs {
		switch err {
		case nil:
		case procrt.ErrDeadlock:
			fmt.Fprintf(os.Stderr, "procrtd: runtime %d: %v\n", i, err)
			code = 1
		default:
			fmt.Fprintf(os.Stderr, "procrtd: runtime %d: %v\n", i, err)
			code = 123
		}
	}
	return code
}
