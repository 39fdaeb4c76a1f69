// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import "errors"

// Error kinds per §7. check_expr's failure case is not an error at this
// boundary — it is a normal proc self-termination (state Exiting) and
// never surfaces as one of these sentinels.
var (
	// ErrDeadlock: the runnable pool emptied while blocked procs remain.
	// Fatal; Enter reports exit code 1.
	ErrDeadlock = errors.New("procrt: no schedulable processes")

	// ErrAllocExhausted: the malloc arena's byte limit was exceeded.
	// Fatal; Enter reports exit code 123.
	ErrAllocExhausted = errors.New("procrt: allocator exhausted")

	// ErrProtocolViolation marks a broken invariant: a blocked state
	// observed in the main loop, a proc freed with a nonzero reference
	// count, a port deleted with a nonzero live refcount, a channel deleted
	// while still queued, or a channel's overflow slot found full at send or
	// empty at rendezvous. The core panics rather than
	// returning this error (§7: "fatal, assertion") — it is exported so
	// callers can recognize a recovered panic's value.
	ErrProtocolViolation = errors.New("procrt: protocol violation")
)
