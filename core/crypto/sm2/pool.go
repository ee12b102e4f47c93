package sm2

import (
	"sync"

	"github.com/kochabx/smkit/core/crypto/sm2/internal"
)

// secretPool recycles the scratch buffers that hold shared-point coordinates.
var secretPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 2*KeySize)
		return &buf
	},
}

// getSecret returns an empty buffer with room for x2 ‖ y2.
func getSecret() []byte {
	bufPtr := secretPool.Get().(*[]byte)
	buf := *bufPtr
	if cap(buf) < 2*KeySize {
		buf = make([]byte, 0, 2*KeySize)
	}
	return buf[:0]
}

// putSecret wipes buf and returns it to the pool. buf must not be used afterwards.
func putSecret(buf []byte) {
	internal.Wipe(buf[:cap(buf)])
	buf = buf[:0]
	secretPool.Put(&buf)
}
