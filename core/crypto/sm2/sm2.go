// Package sm2 implements the SM2 public-key cryptosystem (GB/T 32918-2016) over the
// recommended curve sm2p256v1.
//
// The package provides:
//   - Public-key encryption with C1C3C2 (default) or C1C2C3 ciphertext layout
//   - ID-bound signatures with DER (default) or 64-byte plain r‖s encoding
//   - Key import/export as raw bytes, hex, SEC1, PKCS#8, PKIX and PEM files
//
// Curve arithmetic lives in the curve subpackage and runs in constant time. SM3 is
// used for the KDF, the C3 digest and the ZA identity hash.
//
// Example usage:
//
//	// Generate a key pair and build an engine around it
//	engine, err := sm2.Generate(sm2.WithMode(sm2.C1C2C3))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encrypt and decrypt
//	ciphertext, err := engine.Encrypt([]byte("123456"))
//	plaintext, err := engine.Decrypt(ciphertext)
//
//	// Sign and verify with the default user ID
//	signature, err := engine.Sign([]byte("message"))
//	ok, err := engine.Verify([]byte("message"), signature)
//
// For key persistence:
//
//	err := sm2.GenerateKeyPair(
//	    sm2.WithDirpath("./keys"),
//	    sm2.WithPrivateKeyFilename("sm2.pem"),
//	)
//	privateKey, err := sm2.LoadPrivateKey("./keys/sm2.pem")
//	publicKey, err := sm2.LoadPublicKey("./keys/public.pem")
package sm2
