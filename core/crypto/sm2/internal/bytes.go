package internal

import "crypto/subtle"

// ZeroPad left-pads b with zeros to length. A longer b is truncated to its first
// length bytes.
func ZeroPad(b []byte, length int) []byte {
	if len(b) >= length {
		return b[:length]
	}

	result := make([]byte, length)
	copy(result[length-len(b):], b)
	return result
}

// IsZero reports whether every byte of b is zero, in time that depends only on len(b).
func IsZero(b []byte) bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return subtle.ConstantTimeByteEq(acc, 0) == 1
}

// XOR sets dst[i] = a[i] ^ b[i] for every i < len(dst).
func XOR(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
}
