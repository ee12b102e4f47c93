package sm2

import (
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/core/tag"
	"github.com/kochabx/smkit/errors"
)

var (
	// OIDNamedCurveSM2 identifies sm2p256v1 (GM/T 0006).
	OIDNamedCurveSM2 = asn1.ObjectIdentifier{1, 2, 156, 10197, 1, 301}

	// OIDPublicKeyEC is id-ecPublicKey (RFC 5480).
	OIDPublicKeyEC = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
)

// PEM block types
const (
	PEMTypeECPrivateKey = "EC PRIVATE KEY"
	PEMTypePrivateKey   = "PRIVATE KEY"
	PEMTypePublicKey    = "PUBLIC KEY"
)

const ecPrivKeyVersion = 1

var (
	tagECParameters = cbasn1.Tag(0).Constructed().ContextSpecific()
	tagECPublicKey  = cbasn1.Tag(1).Constructed().ContextSpecific()
)

// MarshalECPrivateKey encodes priv as a SEC1 ECPrivateKey carrying the SM2 curve OID
// and the public point.
func MarshalECPrivateKey(priv *PrivateKey) ([]byte, error) {
	return marshalECPrivateKey(priv, true)
}

func marshalECPrivateKey(priv *PrivateKey, withParams bool) ([]byte, error) {
	if priv.scalar() == nil {
		return nil, ErrPrivateKeyEmpty
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(ecPrivKeyVersion)
		b.AddASN1OctetString(priv.Bytes())
		if withParams {
			b.AddASN1(tagECParameters, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(OIDNamedCurveSM2)
			})
		}
		b.AddASN1(tagECPublicKey, func(b *cryptobyte.Builder) {
			b.AddASN1BitString(priv.publicKey.Bytes(curve.Uncompressed))
		})
	})
	return b.Bytes()
}

// ParseECPrivateKey decodes a SEC1 ECPrivateKey. When present, the curve parameters
// must name SM2 and the embedded public point must match the scalar.
func ParseECPrivateKey(der []byte) (*PrivateKey, error) {
	var (
		inner     cryptobyte.String
		version   int64
		d         cryptobyte.String
		params    cryptobyte.String
		pubField  cryptobyte.String
		hasParams bool
		hasPub    bool
	)

	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, cbasn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(&version) ||
		!inner.ReadASN1(&d, cbasn1.OCTET_STRING) ||
		!inner.ReadOptionalASN1(&params, &hasParams, tagECParameters) ||
		!inner.ReadOptionalASN1(&pubField, &hasPub, tagECPublicKey) ||
		!inner.Empty() {
		return nil, ErrEncoding.WithCausef("malformed SEC1 private key")
	}
	if version != ecPrivKeyVersion {
		return nil, ErrUnsupportedKey.WithCausef("SEC1 version %d", version)
	}

	if hasParams {
		var oid asn1.ObjectIdentifier
		if !params.ReadASN1ObjectIdentifier(&oid) || !params.Empty() {
			return nil, ErrEncoding.WithCausef("malformed SEC1 curve parameters")
		}
		if !oid.Equal(OIDNamedCurveSM2) {
			return nil, ErrUnsupportedKey.WithCausef("curve %s", oid)
		}
	}

	priv, err := NewPrivateKey(d)
	if err != nil {
		return nil, err
	}

	if hasPub {
		var bits asn1.BitString
		if !pubField.ReadASN1BitString(&bits) || !pubField.Empty() {
			return nil, ErrEncoding.WithCausef("malformed SEC1 public key")
		}
		pub, err := NewPublicKey(bits.RightAlign())
		if err != nil {
			return nil, err
		}
		if !pub.Equals(priv.Public()) {
			return nil, ErrKeyMismatch
		}
	}
	return priv, nil
}

// addAlgorithm writes AlgorithmIdentifier { id-ecPublicKey, sm2p256v1 }.
func addAlgorithm(b *cryptobyte.Builder) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(OIDPublicKeyEC)
		b.AddASN1ObjectIdentifier(OIDNamedCurveSM2)
	})
}

// readAlgorithm accepts id-ecPublicKey with the SM2 curve, or the bare SM2 OID some
// producers write as the algorithm itself.
func readAlgorithm(s *cryptobyte.String) error {
	var (
		alg       cryptobyte.String
		algorithm asn1.ObjectIdentifier
	)
	if !s.ReadASN1(&alg, cbasn1.SEQUENCE) || !alg.ReadASN1ObjectIdentifier(&algorithm) {
		return ErrEncoding.WithCausef("malformed algorithm identifier")
	}

	switch {
	case algorithm.Equal(OIDPublicKeyEC):
		var namedCurve asn1.ObjectIdentifier
		if !alg.ReadASN1ObjectIdentifier(&namedCurve) {
			return ErrUnsupportedKey.WithCausef("EC key without named curve")
		}
		if !namedCurve.Equal(OIDNamedCurveSM2) {
			return ErrUnsupportedKey.WithCausef("curve %s", namedCurve)
		}
	case algorithm.Equal(OIDNamedCurveSM2):
		if alg.PeekASN1Tag(cbasn1.OBJECT_IDENTIFIER) {
			var namedCurve asn1.ObjectIdentifier
			if !alg.ReadASN1ObjectIdentifier(&namedCurve) || !namedCurve.Equal(OIDNamedCurveSM2) {
				return ErrUnsupportedKey.WithCausef("unexpected curve parameters")
			}
		}
	default:
		return ErrUnsupportedKey.WithCausef("algorithm %s", algorithm)
	}
	return nil
}

// MarshalPKCS8PrivateKey encodes priv as a PKCS#8 PrivateKeyInfo.
func MarshalPKCS8PrivateKey(priv *PrivateKey) ([]byte, error) {
	sec1, err := marshalECPrivateKey(priv, false)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		addAlgorithm(b)
		b.AddASN1OctetString(sec1)
	})
	return b.Bytes()
}

// ParsePKCS8PrivateKey decodes a version 0 PKCS#8 PrivateKeyInfo holding an SM2 key.
func ParsePKCS8PrivateKey(der []byte) (*PrivateKey, error) {
	var (
		inner   cryptobyte.String
		version int64
		key     cryptobyte.String
	)

	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, cbasn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(&version) {
		return nil, ErrEncoding.WithCausef("malformed PKCS#8 private key")
	}
	if version != 0 {
		return nil, ErrEncoding.WithCausef("unsupported PKCS#8 version %d", version)
	}
	if err := readAlgorithm(&inner); err != nil {
		return nil, err
	}
	// optional [0] attributes are skipped, nothing may follow them
	if !inner.ReadASN1(&key, cbasn1.OCTET_STRING) ||
		!inner.SkipOptionalASN1(cbasn1.Tag(0).Constructed().ContextSpecific()) ||
		!inner.Empty() {
		return nil, ErrEncoding.WithCausef("malformed PKCS#8 private key")
	}
	return ParseECPrivateKey(key)
}

// MarshalPKIXPublicKey encodes pub as a SubjectPublicKeyInfo.
func MarshalPKIXPublicKey(pub *PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, ErrPublicKeyEmpty
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addAlgorithm(b)
		b.AddASN1BitString(pub.Bytes(curve.Uncompressed))
	})
	return b.Bytes()
}

// ParsePKIXPublicKey decodes a SubjectPublicKeyInfo holding an SM2 key.
func ParsePKIXPublicKey(der []byte) (*PublicKey, error) {
	var (
		inner cryptobyte.String
		bits  asn1.BitString
	)

	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, ErrEncoding.WithCausef("malformed PKIX public key")
	}
	if err := readAlgorithm(&inner); err != nil {
		return nil, err
	}
	if !inner.ReadASN1BitString(&bits) || !inner.Empty() {
		return nil, ErrEncoding.WithCausef("malformed PKIX public key")
	}
	return NewPublicKey(bits.RightAlign())
}

// ParsePrivateKey accepts a SEC1 key, a PKCS#8 key or a raw scalar of at most KeySize
// bytes, in that order.
func ParsePrivateKey(der []byte) (*PrivateKey, error) {
	priv, err := ParseECPrivateKey(der)
	if err == nil || !errors.Is(err, ErrEncoding) {
		return priv, err
	}

	priv, err = ParsePKCS8PrivateKey(der)
	if err == nil || !errors.Is(err, ErrEncoding) {
		return priv, err
	}

	if len(der) <= KeySize {
		return NewPrivateKey(der)
	}
	return nil, ErrUnsupportedKey.WithCausef("neither SEC1, PKCS#8 nor a raw scalar")
}

// KeyOption contains options for key generation and file I/O.
type KeyOption struct {
	Dirpath            string `json:"dirpath" default:"."`
	PrivateKeyFilename string `json:"private_key_filename" default:"private.pem"`
	PublicKeyFilename  string `json:"public_key_filename" default:"public.pem"`
}

// WithDirpath sets the directory path for key file operations.
func WithDirpath(dirpath string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.Dirpath = dirpath
	}
}

// WithPrivateKeyFilename sets the filename for the private key.
func WithPrivateKeyFilename(filename string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.PrivateKeyFilename = filename
	}
}

// WithPublicKeyFilename sets the filename for the public key.
func WithPublicKeyFilename(filename string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.PublicKeyFilename = filename
	}
}

// GenerateKeyPair generates a new key pair and saves both halves as PEM files.
func GenerateKeyPair(opts ...func(*KeyOption)) error {
	option := &KeyOption{}

	if err := tag.ApplyDefaults(option); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	for _, opt := range opts {
		opt(option)
	}

	privateKey, err := GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	defer privateKey.Destroy()

	if err := os.MkdirAll(option.Dirpath, 0o755); err != nil {
		return ErrKeyFileRead.WithCause(err)
	}

	privateKeyPath := filepath.Join(option.Dirpath, option.PrivateKeyFilename)
	if err := SavePrivateKey(privateKey, privateKeyPath); err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}

	publicKeyPath := filepath.Join(option.Dirpath, option.PublicKeyFilename)
	if err := SavePublicKey(privateKey.Public(), publicKeyPath); err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}

	return nil
}

// SavePrivateKey writes priv to path as a SEC1 "EC PRIVATE KEY" PEM block, readable by
// the owner only.
func SavePrivateKey(priv *PrivateKey, path string) error {
	der, err := MarshalECPrivateKey(priv)
	if err != nil {
		return err
	}
	return writePEM(path, &pem.Block{Type: PEMTypeECPrivateKey, Bytes: der}, 0o600)
}

// SavePublicKey writes pub to path as a PKIX "PUBLIC KEY" PEM block.
func SavePublicKey(pub *PublicKey, path string) error {
	der, err := MarshalPKIXPublicKey(pub)
	if err != nil {
		return err
	}
	return writePEM(path, &pem.Block{Type: PEMTypePublicKey, Bytes: der}, 0o644)
}

func writePEM(path string, block *pem.Block, perm os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return ErrKeyFileRead.WithCause(err)
	}
	defer file.Close()

	if err := pem.Encode(file, block); err != nil {
		return fmt.Errorf("failed to encode PEM: %w", err)
	}
	return nil
}

// LoadPrivateKey reads a SEC1 or PKCS#8 private key from a PEM file.
func LoadPrivateKey(path string) (*PrivateKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}

	switch block.Type {
	case PEMTypeECPrivateKey:
		return ParseECPrivateKey(block.Bytes)
	case PEMTypePrivateKey:
		return ParsePKCS8PrivateKey(block.Bytes)
	default:
		return nil, ErrInvalidPEMBlock.WithCausef("unexpected block type %q", block.Type)
	}
}

// LoadPublicKey reads a PKIX public key from a PEM file.
func LoadPublicKey(path string) (*PublicKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}
	if block.Type != PEMTypePublicKey {
		return nil, ErrInvalidPEMBlock.WithCausef("unexpected block type %q", block.Type)
	}
	return ParsePKIXPublicKey(block.Bytes)
}

func readPEM(path string) (*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrKeyFileRead.WithCause(err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	return block, nil
}
