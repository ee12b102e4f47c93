package sm2

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/errors"
)

// TestEncryptDecrypt tests round trips in both modes and every C1 form
func TestEncryptDecrypt(t *testing.T) {
	privateKey, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	defer privateKey.Destroy()

	plaintext := []byte("Hello, SM2!")

	for _, mode := range []Mode{C1C3C2, C1C2C3} {
		for _, form := range []curve.PointForm{curve.Uncompressed, curve.Compressed, curve.Hybrid} {
			t.Run(mode.String()+"/"+form.String(), func(t *testing.T) {
				ciphertext, err := Encrypt(rand.Reader, privateKey.Public(), plaintext, WithMode(mode), WithPointForm(form))
				if err != nil {
					t.Fatalf("Encryption failed: %v", err)
				}

				c1Size := curve.UncompressedSize
				if form == curve.Compressed {
					c1Size = curve.CompressedSize
				}
				if want := c1Size + len(plaintext) + DigestSize; len(ciphertext) != want {
					t.Errorf("ciphertext length = %d, want %d", len(ciphertext), want)
				}

				decrypted, err := Decrypt(privateKey, ciphertext, WithMode(mode))
				if err != nil {
					t.Fatalf("Decryption failed: %v", err)
				}
				if !bytes.Equal(plaintext, decrypted) {
					t.Errorf("Decrypted data doesn't match original.\nExpected: %s\nGot: %s", plaintext, decrypted)
				}
			})
		}
	}
}

// TestEncryptDecryptLargeData tests a mask spanning many KDF blocks
func TestEncryptDecryptLargeData(t *testing.T) {
	privateKey, err := GenerateKey(nil)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	plaintext := bytes.Repeat([]byte("Hello, world! "), 100)

	ciphertext, err := Encrypt(nil, privateKey.Public(), plaintext)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	decrypted, err := Decrypt(privateKey, ciphertext)
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if !bytes.Equal(plaintext, decrypted) {
		t.Error("Large data decryption mismatch")
	}
}

// TestEncryptEmpty tests that an empty plaintext is rejected
func TestEncryptEmpty(t *testing.T) {
	privateKey := vectorKey(t)

	for _, plaintext := range [][]byte{nil, {}} {
		_, err := Encrypt(rand.Reader, privateKey.Public(), plaintext)
		if !errors.Is(err, ErrLength) {
			t.Errorf("expected ErrLength, got %v", err)
		}
	}
}

// TestEncryptNilKey tests missing key halves
func TestEncryptNilKey(t *testing.T) {
	if _, err := Encrypt(rand.Reader, nil, []byte("x")); !errors.Is(err, ErrPublicKeyEmpty) {
		t.Errorf("expected ErrPublicKeyEmpty, got %v", err)
	}
	if _, err := Decrypt(nil, []byte("x")); !errors.Is(err, ErrPrivateKeyEmpty) {
		t.Errorf("expected ErrPrivateKeyEmpty, got %v", err)
	}
}

// TestDecryptVector decrypts "123456" under the reference key in C1C2C3 mode
func TestDecryptVector(t *testing.T) {
	privateKey := vectorKey(t)

	if got := privateKey.Public().Hex(curve.Uncompressed); got != strings.ToLower(vectorPublicKey) {
		t.Fatalf("public key = %s, want %s", got, vectorPublicKey)
	}

	ciphertext, err := Encrypt(rand.Reader, privateKey.Public(), []byte("123456"), WithMode(C1C2C3))
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	decrypted, err := Decrypt(privateKey, ciphertext, WithMode(C1C2C3))
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if string(decrypted) != "123456" {
		t.Errorf("got %q, want %q", decrypted, "123456")
	}
}

// TestDecryptPrefixlessC1 decrypts a peer ciphertext whose C1 lacks the 0x04 tag
func TestDecryptPrefixlessC1(t *testing.T) {
	privateKey, err := ParseECPrivateKey(mustBase64(t, gmsslPrivateKey))
	if err != nil {
		t.Fatalf("Failed to parse key: %v", err)
	}

	ciphertext := mustBase64(t, gmsslCiphertext)
	if len(ciphertext) != 2*KeySize+DigestSize+6 {
		t.Fatalf("unexpected vector length %d", len(ciphertext))
	}

	decrypted, err := Decrypt(privateKey, ciphertext, WithMode(C1C2C3))
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if string(decrypted) != "123456" {
		t.Errorf("got %q, want %q", decrypted, "123456")
	}

	// The same bytes read with the wrong component order must not authenticate
	if _, err := Decrypt(privateKey, ciphertext, WithMode(C1C3C2)); !errors.Is(err, ErrMacMismatch) {
		t.Errorf("expected ErrMacMismatch, got %v", err)
	}
}

// TestDecryptTampered tests that any modified component is detected
func TestDecryptTampered(t *testing.T) {
	privateKey := vectorKey(t)

	plaintext := []byte("attack at dawn")
	ciphertext, err := Encrypt(rand.Reader, privateKey.Public(), plaintext)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	tests := []struct {
		name    string
		offset  int
		wantErr error
	}{
		{"C3", curve.UncompressedSize + 3, ErrMacMismatch},
		{"C2", curve.UncompressedSize + DigestSize + 1, ErrMacMismatch},
		{"C1", 10, ErrCurve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := bytes.Clone(ciphertext)
			tampered[tt.offset] ^= 0x01

			decrypted, err := Decrypt(privateKey, tampered)
			if err == nil {
				t.Fatal("expected an error")
			}
			if decrypted != nil {
				t.Error("no plaintext may be returned on failure")
			}
			if !errors.Is(err, tt.wantErr) && !errors.Is(err, ErrMacMismatch) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestDecryptTooShort tests ciphertexts without room for C2
func TestDecryptTooShort(t *testing.T) {
	privateKey := vectorKey(t)

	for _, n := range []int{0, 1, curve.UncompressedSize, curve.UncompressedSize + DigestSize} {
		data := make([]byte, n)
		if n > 0 {
			data[0] = curve.UncompressedTag
		}
		if _, err := Decrypt(privateKey, data); err == nil {
			t.Errorf("length %d: expected an error", n)
		}
	}
}

// TestDecryptWrongKey tests that another key fails the integrity check
func TestDecryptWrongKey(t *testing.T) {
	privateKey1, _ := GenerateKey(nil)
	privateKey2, _ := GenerateKey(nil)

	ciphertext, err := Encrypt(nil, privateKey1.Public(), []byte("secret"))
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	if _, err := Decrypt(privateKey2, ciphertext); !errors.Is(err, ErrMacMismatch) {
		t.Errorf("expected ErrMacMismatch, got %v", err)
	}
}

// TestCiphertextASN1 tests the GM/T 0009 structure
func TestCiphertextASN1(t *testing.T) {
	privateKey := vectorKey(t)
	plaintext := []byte("asn.1 form")

	c, err := EncryptCiphertext(rand.Reader, privateKey.Public(), plaintext)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	der, err := c.MarshalASN1()
	if err != nil {
		t.Fatalf("MarshalASN1 failed: %v", err)
	}

	parsed, err := ParseCiphertextASN1(der)
	if err != nil {
		t.Fatalf("ParseCiphertextASN1 failed: %v", err)
	}
	if !parsed.C1.Equal(c.C1) || !bytes.Equal(parsed.C2, c.C2) || !bytes.Equal(parsed.C3, c.C3) {
		t.Fatal("ASN.1 round trip changed the ciphertext")
	}

	decrypted, err := DecryptCiphertext(privateKey, parsed)
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("got %q, want %q", decrypted, plaintext)
	}

	if _, err := ParseCiphertextASN1(append(der, 0x00)); !errors.Is(err, ErrEncoding) {
		t.Errorf("trailing data: expected ErrEncoding, got %v", err)
	}
}

// TestConvertMode tests reordering between the two layouts
func TestConvertMode(t *testing.T) {
	privateKey := vectorKey(t)
	plaintext := []byte("reorder me")

	c132, err := Encrypt(rand.Reader, privateKey.Public(), plaintext, WithMode(C1C3C2))
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	c123, err := ConvertMode(c132, C1C3C2, C1C2C3)
	if err != nil {
		t.Fatalf("ConvertMode failed: %v", err)
	}
	if bytes.Equal(c123, c132) {
		t.Fatal("conversion left the ciphertext unchanged")
	}

	decrypted, err := Decrypt(privateKey, c123, WithMode(C1C2C3))
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("got %q, want %q", decrypted, plaintext)
	}

	back, err := ConvertMode(c123, C1C2C3, C1C3C2)
	if err != nil {
		t.Fatalf("ConvertMode failed: %v", err)
	}
	if !bytes.Equal(back, c132) {
		t.Error("double conversion is not the identity")
	}

	// Prefix-less C1 stays prefix-less
	gmssl := mustBase64(t, gmsslCiphertext)
	converted, err := ConvertMode(gmssl, C1C2C3, C1C3C2)
	if err != nil {
		t.Fatalf("ConvertMode failed: %v", err)
	}
	if len(converted) != len(gmssl) || !bytes.Equal(converted[:2*KeySize], gmssl[:2*KeySize]) {
		t.Error("C1 changed during conversion")
	}
}
