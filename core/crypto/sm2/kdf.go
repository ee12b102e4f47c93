package sm2

import (
	"encoding/binary"
	"math"

	"github.com/tjfoc/gmsm/sm3"

	"github.com/kochabx/smkit/core/crypto/sm2/internal"
)

// maxKDFLength is the longest mask the 32-bit counter can produce.
const maxKDFLength = math.MaxUint32 * DigestSize

// KDF expands z into length bytes: SM3(z ‖ 1) ‖ SM3(z ‖ 2) ‖ … truncated, with the
// counter as a 4-byte big-endian integer.
//
// A non-positive length, a length beyond the counter range or an all-zero mask fails
// with ErrLength. Encryption treats the last case as a request for a fresh ephemeral key.
func KDF(z []byte, length int) ([]byte, error) {
	if length <= 0 || uint64(length) > maxKDFLength {
		return nil, ErrLength.WithCausef("kdf output length %d out of range", length)
	}

	blocks := (length + DigestSize - 1) / DigestSize
	out := make([]byte, 0, blocks*DigestSize)

	h := sm3.New()
	var ct [4]byte
	for i := 1; i <= blocks; i++ {
		binary.BigEndian.PutUint32(ct[:], uint32(i))
		h.Reset()
		h.Write(z)
		h.Write(ct[:])
		out = h.Sum(out)
	}

	out = out[:length]
	if internal.IsZero(out) {
		return nil, ErrLength.WithCausef("kdf produced an all-zero mask")
	}
	return out, nil
}
