package sm2

import (
	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/errors"
)

// Taxonomy errors. Detail is attached with WithCause, so errors.Is matches the
// sentinel whatever the cause.
var (
	// ErrCurve reports a point off the curve, infinity where a finite point is
	// required, an out-of-range scalar or an exhausted resampling loop
	ErrCurve = curve.ErrCurve

	// ErrEncoding reports an unknown point prefix or a malformed container
	ErrEncoding = curve.ErrEncoding

	// ErrLength reports empty plaintext, a malformed fixed-width field or a
	// degenerate KDF output
	ErrLength = errors.Length("sm2: invalid length")

	// ErrMacMismatch reports a ciphertext whose C3 does not match the recovered plaintext
	ErrMacMismatch = errors.MacMismatch("sm2: decryption integrity failure")

	// ErrSignatureFormat reports a signature that is neither valid DER nor valid plain r‖s
	ErrSignatureFormat = errors.SignatureFormat("sm2: malformed signature")
)

// Key-related errors
var (
	// ErrInvalidPrivateKey indicates a scalar outside [1, n-2] or a malformed encoding
	ErrInvalidPrivateKey = errors.Curve("sm2: invalid private key")

	// ErrInvalidPublicKey indicates a point that cannot serve as a public key
	ErrInvalidPublicKey = errors.Curve("sm2: invalid public key")

	// ErrPrivateKeyEmpty indicates that an operation needs a private key the engine lacks
	ErrPrivateKeyEmpty = errors.BadRequest("sm2: private key is empty")

	// ErrPublicKeyEmpty indicates that an operation needs a public key the engine lacks
	ErrPublicKeyEmpty = errors.BadRequest("sm2: public key is empty")

	// ErrKeyMismatch indicates a public key that is not d·G for the given private key
	ErrKeyMismatch = errors.BadRequest("sm2: public key does not match private key")

	// ErrUnsupportedKey indicates a key container for another algorithm or curve
	ErrUnsupportedKey = errors.Encoding("sm2: unsupported key")
)

// I/O errors
var (
	// ErrInvalidPEMBlock indicates an invalid PEM block format
	ErrInvalidPEMBlock = errors.Encoding("sm2: invalid PEM block")

	// ErrKeyFileRead indicates a failure to read or write a key file
	ErrKeyFileRead = errors.Internal("sm2: failed to access key file")
)
