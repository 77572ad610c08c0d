package scale

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses encode buffers across Encode calls.
// Encode copies the result out, so a buffer never escapes the call.
var bytesBufPool = sync.Pool{
	New: func() any {
		// Most extrinsic payloads fit in 4KB without re-allocating.
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}
