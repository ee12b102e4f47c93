package sm2

import (
	"bytes"
	"encoding/hex"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/errors"
)

// OID 1.2.156.10197.1.301 in DER
var oidSM2DER = mustDecode("06082A811CCF5501822D")

func mustDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestPrivateKeyVector(t *testing.T) {
	priv := vectorKey(t)

	assert.Equal(t, mustHex(t, vectorPrivateKey), priv.Bytes())
	assert.Equal(t, strings.ToLower(vectorPrivateKey), priv.Hex())
	assert.Equal(t, mustHex(t, vectorPublicKey), priv.Public().Bytes(curve.Uncompressed))
}

func TestPrivateKeyRange(t *testing.T) {
	n := curve.Params().N
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))
	nMinus2 := new(big.Int).Sub(n, big.NewInt(2))

	_, err := NewPrivateKey(nil)
	assert.True(t, errors.Is(err, ErrPrivateKeyEmpty))

	_, err = NewPrivateKey(make([]byte, KeySize))
	assert.True(t, errors.Is(err, ErrInvalidPrivateKey), "zero scalar")

	_, err = NewPrivateKey(nMinus1.Bytes())
	assert.True(t, errors.Is(err, ErrInvalidPrivateKey), "n-1 leaves 1+d non-invertible")

	_, err = NewPrivateKey(n.Bytes())
	assert.True(t, errors.Is(err, ErrInvalidPrivateKey), "n")

	_, err = NewPrivateKey(make([]byte, KeySize+1))
	assert.True(t, errors.Is(err, ErrInvalidPrivateKey), "33 bytes")

	priv, err := NewPrivateKey(nMinus2.Bytes())
	require.NoError(t, err)
	sig, err := Sign(nil, priv, []byte("edge"), nil)
	require.NoError(t, err)
	assert.True(t, Verify(priv.Public(), []byte("edge"), nil, sig))

	// Short scalars are left-padded
	one, err := NewPrivateKey([]byte{0x01})
	require.NoError(t, err)
	assert.Len(t, one.Bytes(), KeySize)
	assert.Equal(t, byte(0x01), one.Bytes()[KeySize-1])
	assert.True(t, one.Public().Point().Equal(curve.Generator()))

	_, err = NewPrivateKeyFromHex("zz")
	assert.True(t, errors.Is(err, ErrEncoding))
}

func TestPrivateKeyEqualsDestroy(t *testing.T) {
	a := vectorKey(t)
	b := vectorKey(t)
	c, err := GenerateKey(nil)
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))

	a.Destroy()
	assert.Nil(t, a.Bytes())
	assert.False(t, a.Equals(b))
}

func TestPublicKeyForms(t *testing.T) {
	priv := vectorKey(t)
	pub := priv.Public()

	for _, form := range []curve.PointForm{curve.Uncompressed, curve.Compressed, curve.Hybrid} {
		parsed, err := NewPublicKey(pub.Bytes(form))
		require.NoError(t, err, form.String())
		assert.True(t, parsed.Equals(pub), form.String())

		fromHex, err := NewPublicKeyFromHex(pub.Hex(form))
		require.NoError(t, err)
		assert.True(t, fromHex.Equals(pub))
	}

	// 64 bytes without the 0x04 tag
	prefixless, err := NewPublicKey(pub.Bytes(curve.Uncompressed)[1:])
	require.NoError(t, err)
	assert.True(t, prefixless.Equals(pub))

	_, err = NewPublicKey(nil)
	assert.True(t, errors.Is(err, ErrPublicKeyEmpty))

	offCurve := pub.Bytes(curve.Uncompressed)
	offCurve[len(offCurve)-1] ^= 0x01
	_, err = NewPublicKey(offCurve)
	assert.True(t, errors.Is(err, ErrInvalidPublicKey))
	assert.True(t, errors.Is(err, ErrCurve))

	_, err = NewPublicKey(append([]byte{0x05}, pub.Bytes(curve.Uncompressed)[1:]...))
	assert.True(t, errors.Is(err, ErrEncoding))
}

func TestECPrivateKeyImport(t *testing.T) {
	priv, err := ParseECPrivateKey(mustBase64(t, gmsslPrivateKey))
	require.NoError(t, err)
	assert.Equal(t, "2c5348e856038a188f60c8f79cee9cfa871c42994a2e5014bbd6cf9ec17c8195", priv.Hex())

	pair, err := ParseECPrivateKey(mustBase64(t, pairPrivateKey))
	require.NoError(t, err)

	pub, err := ParsePKIXPublicKey(mustBase64(t, pairPublicKey))
	require.NoError(t, err)
	assert.Equal(t, pairPublicHex, pub.Hex(curve.Uncompressed))
	assert.True(t, pub.Equals(pair.Public()))
}

func TestECPrivateKeyMismatch(t *testing.T) {
	der := mustBase64(t, pairPrivateKey)
	// flip a bit in the embedded public point
	der[len(der)-1] ^= 0x01

	_, err := ParseECPrivateKey(der)
	require.Error(t, err)
}

func TestKeyContainersRoundTrip(t *testing.T) {
	priv, err := GenerateKey(nil)
	require.NoError(t, err)

	sec1, err := MarshalECPrivateKey(priv)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(sec1, oidSM2DER))

	pkcs8, err := MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(pkcs8, oidSM2DER))

	pkix, err := MarshalPKIXPublicKey(priv.Public())
	require.NoError(t, err)
	assert.True(t, bytes.Contains(pkix, oidSM2DER))

	fromSEC1, err := ParseECPrivateKey(sec1)
	require.NoError(t, err)
	assert.True(t, fromSEC1.Equals(priv))

	fromPKCS8, err := ParsePKCS8PrivateKey(pkcs8)
	require.NoError(t, err)
	assert.True(t, fromPKCS8.Equals(priv))

	fromPKIX, err := ParsePKIXPublicKey(pkix)
	require.NoError(t, err)
	assert.True(t, fromPKIX.Equals(priv.Public()))

	for name, der := range map[string][]byte{"sec1": sec1, "pkcs8": pkcs8, "raw": priv.Bytes()} {
		parsed, err := ParsePrivateKey(der)
		require.NoError(t, err, name)
		assert.True(t, parsed.Equals(priv), name)
	}
}

func TestKeyContainersRejectOtherCurves(t *testing.T) {
	// PKIX prime256v1 key: id-ecPublicKey with OID 1.2.840.10045.3.1.7
	p256 := mustBase64(t, "MFkwEwYHKoZIzj0CAQYIKoZIzj0DAQcDQgAEAAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8gISIjJCUmJygpKissLS4vMDEyMzQ1Njc4OTo7PD0+Pw==")
	_, err := ParsePKIXPublicKey(p256)
	assert.True(t, errors.Is(err, ErrUnsupportedKey), "got %v", err)

	_, err = ParsePKIXPublicKey([]byte{0x30, 0x00})
	assert.True(t, errors.Is(err, ErrEncoding))

	_, err = ParsePrivateKey(bytes.Repeat([]byte{0x42}, 40))
	assert.True(t, errors.Is(err, ErrUnsupportedKey))
}

func TestKeyFiles(t *testing.T) {
	dir := t.TempDir()

	err := GenerateKeyPair(
		WithDirpath(dir),
		WithPrivateKeyFilename("sm2.pem"),
		WithPublicKeyFilename("sm2.pub.pem"),
	)
	require.NoError(t, err)

	priv, err := LoadPrivateKey(filepath.Join(dir, "sm2.pem"))
	require.NoError(t, err)
	pub, err := LoadPublicKey(filepath.Join(dir, "sm2.pub.pem"))
	require.NoError(t, err)
	assert.True(t, pub.Equals(priv.Public()))

	info, err := os.Stat(filepath.Join(dir, "sm2.pem"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A PKCS#8 block loads too
	pkcs8Path := filepath.Join(dir, "pkcs8.pem")
	der, err := MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	require.NoError(t, writePEM(pkcs8Path, &pem.Block{Type: PEMTypePrivateKey, Bytes: der}, 0o600))

	loaded, err := LoadPrivateKey(pkcs8Path)
	require.NoError(t, err)
	assert.True(t, loaded.Equals(priv))

	// Wrong block type and garbage
	_, err = LoadPublicKey(filepath.Join(dir, "sm2.pem"))
	assert.True(t, errors.Is(err, ErrInvalidPEMBlock))

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not pem"), 0o600))
	_, err = LoadPrivateKey(garbage)
	assert.True(t, errors.Is(err, ErrInvalidPEMBlock))

	_, err = LoadPrivateKey(filepath.Join(dir, "missing.pem"))
	assert.True(t, errors.Is(err, ErrKeyFileRead))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParsePKCS8Strict(t *testing.T) {
	priv := vectorKey(t)
	sec1, err := marshalECPrivateKey(priv, false)
	require.NoError(t, err)

	attributes := cbasn1.Tag(0).Constructed().ContextSpecific()
	build := func(version int64, tail func(b *cryptobyte.Builder)) []byte {
		var b cryptobyte.Builder
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(version)
			addAlgorithm(b)
			b.AddASN1OctetString(sec1)
			tail(b)
		})
		der, err := b.Bytes()
		require.NoError(t, err)
		return der
	}

	withAttributes := build(0, func(b *cryptobyte.Builder) {
		b.AddASN1(attributes, func(b *cryptobyte.Builder) {
			b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {})
		})
	})
	parsed, err := ParsePKCS8PrivateKey(withAttributes)
	require.NoError(t, err)
	assert.True(t, parsed.Equals(priv))

	tests := []struct {
		name string
		der  []byte
	}{
		{"version 1", build(1, func(*cryptobyte.Builder) {})},
		{"trailing integer", build(0, func(b *cryptobyte.Builder) { b.AddASN1Int64(7) })},
		{"data after attributes", build(0, func(b *cryptobyte.Builder) {
			b.AddASN1(attributes, func(*cryptobyte.Builder) {})
			b.AddASN1Int64(7)
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePKCS8PrivateKey(tt.der)
			assert.True(t, errors.Is(err, ErrEncoding), "got %v", err)
		})
	}
}
