// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"fmt"
	"io"
	"os"
)

// Diagnostics is the runtime's diagnostic sink: human-readable lines on
// standard output prefixed "rt: " (§6). Not a compatibility surface — no
// caller should parse these lines.
type Diagnostics interface {
	Logf(format string, args ...any)
}

// stdoutDiagnostics writes "rt: "-prefixed lines to an io.Writer, the
// default being os.Stdout.
type stdoutDiagnostics struct {
	w io.Writer
}

func newDefaultDiagnostics() Diagnostics {
	return &stdoutDiagnostics{w: os.Stdout}
}

// NewDiagnostics wraps an arbitrary io.Writer as a Diagnostics sink, for
// embedders that want diagnostics routed elsewhere (a log file, a test
// buffer) without losing the "rt: " line convention.
func NewDiagnostics(w io.Writer) Diagnostics {
	return &stdoutDiagnostics{w: w}
}

func (d *stdoutDiagnostics) Logf(format string, args ...any) {
	fmt.Fprintf(d.w, "rt: "+format+"\n", args...)
}
