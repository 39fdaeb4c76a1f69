// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"code.hybscloud.com/kont"
)

// The functions below fuse Perform with Then/Bind for each upcall (§4.7),
// the Cont-world equivalent of the ABI a compiler backend would emit for a
// proc body. Every result type is kont.Resumed since a proc's activation is
// monomorphic in that type (context.go).

// LogUint32Then performs upcall 0 and continues with next.
func LogUint32Then[B any](value uint32, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(LogUint32{Value: value}), next)
}

// LogStrThen performs upcall 1 and continues with next.
func LogStrThen[B any](ptr uintptr, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(LogStr{Ptr: ptr}), next)
}

// SpawnBind performs upcall 2 and passes the constructed child to f.
func SpawnBind[B any](out uintptr, program *ProgramDescriptor, f func(kont.Resumed) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Spawn{Out: out, Program: program}), f)
}

// CheckExprThen performs upcall 3 and continues with next. If truthy is
// zero the proc terminates before next ever runs (upcall.go's CheckExpr).
func CheckExprThen[B any](truthy uintptr, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(CheckExpr{Truthy: truthy}), next)
}

// MallocBind performs upcall 4 and passes control to f once the pointer has
// been written through out.
func MallocBind[B any](out, size uintptr, f func(kont.Resumed) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Malloc{Out: out, Size: size}), f)
}

// FreeThen performs upcall 5 and continues with next.
func FreeThen[B any](ptr uintptr, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Free{Ptr: ptr}), next)
}

// NewPortBind performs upcall 6 and passes control to f.
func NewPortBind[B any](out uintptr, f func(kont.Resumed) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(NewPort{Out: out}), f)
}

// DelPortThen performs upcall 7 and continues with next.
func DelPortThen[B any](port *Port, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(DelPort{Port: port}), next)
}

// NewChanBind performs upcall 8 and passes control to f.
func NewChanBind[B any](out uintptr, port *Port, f func(kont.Resumed) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(NewChan{Out: out, Port: port}), f)
}

// DelChanThen performs upcall 9 and continues with next.
func DelChanThen[B any](ch *Channel, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(DelChan{Chan: ch}), next)
}

// SendThen performs upcall 10 and continues with next once the proc has
// been rescheduled past its blocked-writing wait.
func SendThen[B any](ch *Channel, value uintptr, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Send{Chan: ch, Value: value}), next)
}

// RecvBind performs upcall 11 and passes control to f once the proc has
// been rescheduled past its blocked-reading wait.
func RecvBind[B any](out uintptr, port *Port, f func(kont.Resumed) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Recv{Out: out, Port: port}), f)
}

// SchedThen performs upcall 12 and continues with next.
func SchedThen[B any](proc *Proc, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Sched{Proc: proc}), next)
}
