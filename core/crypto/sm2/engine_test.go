package sm2

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/errors"
	"github.com/kochabx/smkit/log"
)

func TestEngineDefaults(t *testing.T) {
	engine, err := Generate()
	require.NoError(t, err)

	assert.Equal(t, C1C3C2, engine.Mode())
	assert.Equal(t, EncodingDER, engine.SignatureEncoding())
	assert.Equal(t, DefaultUserID, engine.UserID())
	assert.Equal(t, curve.Uncompressed, engine.PointForm())
	assert.NotNil(t, engine.PrivateKey())
	assert.True(t, engine.PublicKey().Equals(engine.PrivateKey().Public()))
}

func TestEngineConstructors(t *testing.T) {
	priv := vectorKey(t)
	other, err := GenerateKey(nil)
	require.NoError(t, err)

	_, err = New(nil, nil)
	assert.True(t, errors.Is(err, ErrPublicKeyEmpty))

	_, err = NewWithPrivateKey(nil)
	assert.True(t, errors.Is(err, ErrPrivateKeyEmpty))

	_, err = NewWithPublicKey(nil)
	assert.True(t, errors.Is(err, ErrPublicKeyEmpty))

	_, err = New(priv, other.Public())
	assert.True(t, errors.Is(err, ErrKeyMismatch))

	full, err := New(priv, priv.Public())
	require.NoError(t, err)
	assert.NotNil(t, full.PrivateKey())

	_, err = New(priv, nil, WithMode(Mode(7)))
	assert.True(t, errors.Is(err, ErrEncoding))

	_, err = New(priv, nil, WithUserID(make([]byte, maxUserIDLen+1)))
	assert.True(t, errors.Is(err, ErrLength))
}

func TestEnginePublicOnly(t *testing.T) {
	priv := vectorKey(t)
	full, err := NewWithPrivateKey(priv)
	require.NoError(t, err)

	pubOnly, err := NewWithPublicKey(priv.Public())
	require.NoError(t, err)
	assert.Nil(t, pubOnly.PrivateKey())

	msg := []byte("public side")

	ciphertext, err := pubOnly.Encrypt(msg)
	require.NoError(t, err)
	decrypted, err := full.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, msg, decrypted)

	sig, err := full.Sign(msg)
	require.NoError(t, err)
	ok, err := pubOnly.Verify(msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = pubOnly.Decrypt(ciphertext)
	assert.True(t, errors.Is(err, ErrPrivateKeyEmpty))
	_, err = pubOnly.Sign(msg)
	assert.True(t, errors.Is(err, ErrPrivateKeyEmpty))
}

func TestEngineStringVariants(t *testing.T) {
	engine, err := NewWithPrivateKey(vectorKey(t), WithMode(C1C2C3))
	require.NoError(t, err)

	msg := []byte("123456")

	hexText, err := engine.EncryptHex(msg)
	require.NoError(t, err)
	_, err = hex.DecodeString(hexText)
	require.NoError(t, err)

	b64Text, err := engine.EncryptBase64(msg)
	require.NoError(t, err)
	_, err = base64.StdEncoding.DecodeString(b64Text)
	require.NoError(t, err)

	for name, decrypt := range map[string]func() ([]byte, error){
		"hex":           func() ([]byte, error) { return engine.DecryptHex(hexText) },
		"base64":        func() ([]byte, error) { return engine.DecryptBase64(b64Text) },
		"string hex":    func() ([]byte, error) { return engine.DecryptString(hexText) },
		"string base64": func() ([]byte, error) { return engine.DecryptString(b64Text) },
	} {
		got, err := decrypt()
		require.NoError(t, err, name)
		assert.Equal(t, msg, got, name)
	}

	_, err = engine.DecryptString("%%%")
	assert.True(t, errors.Is(err, ErrEncoding))

	sigHex, err := engine.SignHex(msg)
	require.NoError(t, err)
	ok, err := engine.VerifyHex(msg, sigHex)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = engine.VerifyHex(msg, "not hex")
	assert.True(t, errors.Is(err, ErrSignatureFormat))
}

func TestEngineDecryptPeerCiphertext(t *testing.T) {
	priv, err := ParseECPrivateKey(mustBase64(t, gmsslPrivateKey))
	require.NoError(t, err)

	engine, err := NewWithPrivateKey(priv, WithMode(C1C2C3))
	require.NoError(t, err)

	got, err := engine.DecryptBase64(gmsslCiphertext)
	require.NoError(t, err)
	assert.Equal(t, "123456", string(got))
}

func TestEngineSignatureEncodings(t *testing.T) {
	der, err := NewWithPrivateKey(vectorKey(t))
	require.NoError(t, err)
	plain, err := der.With(WithPlainEncoding())
	require.NoError(t, err)
	assert.Equal(t, EncodingDER, der.SignatureEncoding(), "With must not modify the receiver")

	msg := []byte("encoding is per instance")

	plainSig, err := plain.Sign(msg)
	require.NoError(t, err)
	assert.Len(t, plainSig, PlainSignatureSize)

	ok, err := plain.Verify(msg, plainSig)
	require.NoError(t, err)
	assert.True(t, ok)

	// A plain signature is malformed input for a DER verifier
	_, err = der.Verify(msg, plainSig)
	assert.True(t, errors.Is(err, ErrSignatureFormat))

	derSig, err := der.Sign(msg)
	require.NoError(t, err)
	ok, err = der.Verify(msg, derSig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = der.Verify([]byte("other message"), derSig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngineUserID(t *testing.T) {
	alice, err := NewWithPrivateKey(vectorKey(t), WithUserID([]byte("alice@example.com")))
	require.NoError(t, err)

	msg := []byte("hello")
	sig, err := alice.Sign(msg)
	require.NoError(t, err)

	ok, err := alice.Verify(msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = alice.VerifyWithUserID(msg, DefaultUserID, sig)
	require.NoError(t, err)
	assert.False(t, ok)

	sig, err = alice.SignWithUserID(msg, []byte("bob@example.com"))
	require.NoError(t, err)
	ok, err = alice.VerifyWithUserID(msg, []byte("bob@example.com"), sig)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = alice.SignWithUserID(msg, make([]byte, maxUserIDLen+1))
	assert.True(t, errors.Is(err, ErrLength))
}

func TestEngineASN1(t *testing.T) {
	engine, err := Generate()
	require.NoError(t, err)

	der, err := engine.EncryptASN1([]byte("asn1"))
	require.NoError(t, err)
	got, err := engine.DecryptASN1(der)
	require.NoError(t, err)
	assert.Equal(t, []byte("asn1"), got)
}

func TestEngineLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter(&buf)

	engine, err := Generate(WithLogger(logger))
	require.NoError(t, err)

	ciphertext, err := engine.Encrypt([]byte("logged"))
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0x01

	_, err = engine.Decrypt(ciphertext)
	require.True(t, errors.Is(err, ErrMacMismatch))

	assert.Contains(t, buf.String(), "decryption failed")
	assert.Contains(t, buf.String(), `"component":"sm2"`)
	assert.NotContains(t, buf.String(), engine.PrivateKey().Hex())
}

func TestEngineConcurrent(t *testing.T) {
	engine, err := Generate(WithMode(C1C2C3), WithPlainEncoding())
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		msg := []byte(fmt.Sprintf("message %d", i))
		g.Go(func() error {
			ciphertext, err := engine.Encrypt(msg)
			if err != nil {
				return err
			}
			plaintext, err := engine.Decrypt(ciphertext)
			if err != nil {
				return err
			}
			if !bytes.Equal(plaintext, msg) {
				return fmt.Errorf("round trip mismatch for %q", msg)
			}

			sig, err := engine.Sign(msg)
			if err != nil {
				return err
			}
			ok, err := engine.Verify(msg, sig)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("signature rejected for %q", msg)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
