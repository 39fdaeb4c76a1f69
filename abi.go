// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import "unsafe"

// writeWord writes v through ptr, interpreted as a pointer to a word. Used
// by upcalls whose ABI slot is an out-pointer (malloc, spawn, new_port,
// new_chan) and by the rendezvous engine's single-word transfer (§4.8).
func writeWord(ptr uintptr, v uintptr) {
	if ptr == 0 {
		panic("procrt: write through nil out-pointer")
	}
	*(*uintptr)(unsafe.Pointer(ptr)) = v
}

// cString reads a NUL-terminated byte sequence starting at ptr, matching
// the "pointer to a C-string" argument of the log_str upcall (§4.7 code 1).
func cString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var b []byte
	for i := uintptr(0); ; i++ {
		c := *(*byte)(unsafe.Pointer(ptr + i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}
