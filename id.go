// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import "code.hybscloud.com/atomix"

// ProcID is a monotonically increasing proc identifier, assigned once per
// proc for diagnostics; it plays no role in scheduling or rendezvous.
type ProcID = uint32

// procIDCounter is the process-wide monotonic counter for proc ids.
var procIDCounter atomix.Uint32

// nextProcID returns the next monotonically increasing proc id.
func nextProcID() ProcID {
	return procIDCounter.Add(1)
}
