package sm2

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/errors"
)

// Engine bundles a key pair with a fixed configuration: ciphertext mode, signature
// encoding, signer identity, C1 point form and randomness source.
//
// An Engine is immutable and safe for concurrent use provided its random source is.
// Either key half may be absent: a public-only engine encrypts and verifies, a
// private-key engine also decrypts and signs.
type Engine struct {
	privateKey *PrivateKey
	publicKey  *PublicKey
	opts       options
}

// New builds an engine from priv, pub or both. With only priv, the public key is
// derived; with both, pub must equal d·G.
func New(priv *PrivateKey, pub *PublicKey, opts ...Option) (*Engine, error) {
	if priv != nil && priv.scalar() == nil {
		return nil, ErrPrivateKeyEmpty
	}
	if priv == nil && pub == nil {
		return nil, ErrPublicKeyEmpty
	}

	switch {
	case pub == nil:
		pub = priv.Public()
	case priv != nil && !pub.Equals(priv.Public()):
		return nil, ErrKeyMismatch
	}

	o := newOptions(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}

	return &Engine{
		privateKey: priv,
		publicKey:  pub,
		opts:       o,
	}, nil
}

// NewWithPrivateKey builds an engine able to perform every operation.
func NewWithPrivateKey(priv *PrivateKey, opts ...Option) (*Engine, error) {
	if priv == nil {
		return nil, ErrPrivateKeyEmpty
	}
	return New(priv, nil, opts...)
}

// NewWithPublicKey builds an encrypt and verify only engine.
func NewWithPublicKey(pub *PublicKey, opts ...Option) (*Engine, error) {
	if pub == nil {
		return nil, ErrPublicKeyEmpty
	}
	return New(nil, pub, opts...)
}

// Generate builds an engine around a freshly generated key pair, drawn from the
// random source configured in opts.
func Generate(opts ...Option) (*Engine, error) {
	o := newOptions(opts...)
	priv, err := GenerateKey(o.random)
	if err != nil {
		return nil, err
	}
	return New(priv, nil, opts...)
}

// With returns a copy of e with opts applied on top of its configuration.
func (e *Engine) With(opts ...Option) (*Engine, error) {
	o := e.opts
	o.userID = append([]byte(nil), e.opts.userID...)
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	return &Engine{
		privateKey: e.privateKey,
		publicKey:  e.publicKey,
		opts:       o,
	}, nil
}

// PrivateKey returns the private key, nil for a public-only engine.
func (e *Engine) PrivateKey() *PrivateKey {
	return e.privateKey
}

// PublicKey returns the public key.
func (e *Engine) PublicKey() *PublicKey {
	return e.publicKey
}

// Mode returns the ciphertext component order.
func (e *Engine) Mode() Mode {
	return e.opts.mode
}

// SignatureEncoding returns the signature serialization.
func (e *Engine) SignatureEncoding() SignatureEncoding {
	return e.opts.encoding
}

// UserID returns a copy of the signer identity.
func (e *Engine) UserID() []byte {
	return append([]byte(nil), e.opts.userID...)
}

// PointForm returns the encoding of C1 in produced ciphertexts.
func (e *Engine) PointForm() curve.PointForm {
	return e.opts.form
}

// Encrypt encrypts msg to the engine's public key.
func (e *Engine) Encrypt(msg []byte) ([]byte, error) {
	c, err := EncryptCiphertext(e.opts.random, e.publicKey, msg)
	if err != nil {
		return nil, err
	}
	return c.Bytes(e.opts.mode, e.opts.form)
}

// EncryptHex encrypts msg and returns the ciphertext in hexadecimal encoding.
func (e *Engine) EncryptHex(msg []byte) (string, error) {
	out, err := e.Encrypt(msg)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// EncryptBase64 encrypts msg and returns the ciphertext in standard base64 encoding.
func (e *Engine) EncryptBase64(msg []byte) (string, error) {
	out, err := e.Encrypt(msg)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt decrypts a ciphertext serialized in the engine's mode.
func (e *Engine) Decrypt(ciphertext []byte) ([]byte, error) {
	if e.privateKey == nil {
		return nil, ErrPrivateKeyEmpty
	}

	msg, err := Decrypt(e.privateKey, ciphertext, WithMode(e.opts.mode))
	if err != nil {
		event := e.opts.logger.Debug()
		if errors.Is(err, ErrMacMismatch) {
			event = e.opts.logger.Warn()
		}
		event.Err(err).
			Str("mode", e.opts.mode.String()).
			Int("size", len(ciphertext)).
			Msg("decryption failed")
		return nil, err
	}
	return msg, nil
}

// DecryptHex decrypts a hex-encoded ciphertext.
func (e *Engine) DecryptHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrEncoding.WithCause(err)
	}
	return e.Decrypt(b)
}

// DecryptBase64 decrypts a standard base64-encoded ciphertext.
func (e *Engine) DecryptBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrEncoding.WithCause(err)
	}
	return e.Decrypt(b)
}

// DecryptString decrypts a ciphertext given as hex or as base64. Text made only of
// hex digits is read as hex.
func (e *Engine) DecryptString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if isHex(s) {
		return e.DecryptHex(s)
	}
	return e.DecryptBase64(s)
}

func isHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	for _, c := range s {
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Sign signs msg under the engine's user ID and encodes the result with the engine's
// signature encoding.
func (e *Engine) Sign(msg []byte) ([]byte, error) {
	return e.SignWithUserID(msg, e.opts.userID)
}

// SignHex signs msg and returns the signature in hexadecimal encoding.
func (e *Engine) SignHex(msg []byte) (string, error) {
	sig, err := e.Sign(msg)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// SignWithUserID signs msg under uid instead of the engine's user ID.
func (e *Engine) SignWithUserID(msg, uid []byte) ([]byte, error) {
	if e.privateKey == nil {
		return nil, ErrPrivateKeyEmpty
	}
	if uid == nil {
		uid = DefaultUserID
	}
	if err := CheckUserID(uid); err != nil {
		return nil, err
	}

	sig, err := Sign(e.opts.random, e.privateKey, msg, uid)
	if err != nil {
		return nil, err
	}
	return sig.Bytes(e.opts.encoding)
}

// Verify reports whether sig, in the engine's signature encoding, is a valid signature
// of msg under the engine's user ID. A signature that does not parse fails with
// ErrSignatureFormat; a well-formed but invalid one returns false.
func (e *Engine) Verify(msg, sig []byte) (bool, error) {
	return e.VerifyWithUserID(msg, e.opts.userID, sig)
}

// VerifyHex is Verify with a hex-encoded signature.
func (e *Engine) VerifyHex(msg []byte, sigHex string) (bool, error) {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, ErrSignatureFormat.WithCause(err)
	}
	return e.Verify(msg, sig)
}

// VerifyWithUserID is Verify under uid instead of the engine's user ID.
func (e *Engine) VerifyWithUserID(msg, uid, sig []byte) (bool, error) {
	if uid == nil {
		uid = DefaultUserID
	}
	if err := CheckUserID(uid); err != nil {
		return false, err
	}

	parsed, err := ParseSignature(sig, e.opts.encoding)
	if err != nil {
		return false, err
	}

	ok := Verify(e.publicKey, msg, uid, parsed)
	if !ok {
		e.opts.logger.Debug().
			Str("encoding", e.opts.encoding.String()).
			Msg("signature rejected")
	}
	return ok, nil
}

// DecryptASN1 decrypts a ciphertext in the GM/T 0009 ASN.1 form.
func (e *Engine) DecryptASN1(der []byte) ([]byte, error) {
	if e.privateKey == nil {
		return nil, ErrPrivateKeyEmpty
	}
	c, err := ParseCiphertextASN1(der)
	if err != nil {
		return nil, err
	}
	return DecryptCiphertext(e.privateKey, c)
}

// EncryptASN1 encrypts msg and returns the ciphertext in the GM/T 0009 ASN.1 form.
func (e *Engine) EncryptASN1(msg []byte) ([]byte, error) {
	c, err := EncryptCiphertext(e.opts.random, e.publicKey, msg)
	if err != nil {
		return nil, err
	}
	return c.MarshalASN1()
}
