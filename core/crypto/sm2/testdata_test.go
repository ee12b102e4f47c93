package sm2

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
)

// Key pair of GB/T 32918.5 style vectors.
const (
	vectorPrivateKey = "4BD9A450D7E68A5D7E08EB7A0BFA468FD3EB32B71126246E66249A73A9E4D44A"
	vectorPublicKey  = "04970AB36C3B870FBC04041087DB1BC36FB4C6E125B5EA406DB0EC3E2F80F0A55D8AFF28357A0BB215ADC2928BE76F1AFF869BF4C0A3852A78F3B827812C650AD3"
)

// OpenSSL generated SEC1 key and a gmssl C1C2C3 ciphertext of "123456" whose C1 has no
// 0x04 prefix.
const (
	gmsslPrivateKey = "MHcCAQEEICxTSOhWA4oYj2DI95zunPqHHEKZSi5QFLvWz57BfIGVoAoGCCqBHM9VAYItoUQDQgAEIGRS/PssvgZ8Paw2YeFaW4VXrkgceBELKPWcXmq/p3iMhHxYfcaFAa5AzvPJOmYmVzVwu9QygMMrg/30Ok1npw=="
	gmsslCiphertext = "x0KA1DKkmuA/YZdmvMr8X+1ZQb7a19Pr5nSxxe2ItUYpDAioa263tm9u7vST38hAEUoOxxXftD+7bRQ7Y8v1tcFXeheKodetA6LrPIuh0QYZMdBqIKSKdmlGeVE0Vdm3excisbtC"
)

// SEC1 private key and the matching PKIX public key.
const (
	pairPrivateKey = "MHcCAQEEIE29XqAFV/rkJbnJzCoQRJLTeAHG2TR0h9ZCWag0+ZMEoAoGCCqBHM9VAYItoUQDQgAESkOzNigIsH5ehFvr9yQNQ66genyOrm+Q4umCA4aWXPeRzmcTAWSlTineiReTFN2lqor2xaulT8u3a4w3AM/F6A=="
	pairPublicKey  = "MFkwEwYHKoZIzj0CAQYIKoEcz1UBgi0DQgAESkOzNigIsH5ehFvr9yQNQ66genyOrm+Q4umCA4aWXPeRzmcTAWSlTineiReTFN2lqor2xaulT8u3a4w3AM/F6A=="
	pairPublicHex  = "044a43b3362808b07e5e845bebf7240d43aea07a7c8eae6f90e2e9820386965cf791ce67130164a54e29de89179314dda5aa8af6c5aba54fcbb76b8c3700cfc5e8"
)

// Plain signatures produced by a peer implementation under DefaultUserID.
const (
	plainPublicKey = "04db9629dd33ba568e9507add5df6587a0998361a03d3321948b448c653c2c1b7056434884ab6f3d1c529501f166a336e86f045cea10dffe58aa82ea13d7253763"
	plainMessage   = "我是一段测试aaaa"
	plainSignature = "2881346e038d2ed706ccdd025f2b1dafa7377d5cf090134b98756fafe084dddbcdba0ab00b5348ed48025195af3f1dda29e819bb66aa9d4d088050ff148482a1"

	plainPrivateKey2 = "FAB8BBE670FAE338C9E9382B9FB6485225C11A3ECB84C938F10F20A93B6215F0"
	plainPublicX2    = "9EF573019D9A03B16B0BE44FC8A5B4E8E098F56034C97B312282DD0B4810AFC3"
	plainPublicY2    = "CC759673ED0FC9B9DC7E6FA38F0E2B121E02654BF37EA6B63FAF2A0D6013EADF"
	plainMessage2    = "434477813974bf58f94bcf760833c2b40f77a5fc360485b0b9ed1bd9682edb45"
	plainSignature2  = "DCA0E80A7F46C93714B51C3EFC55A922BCEF7ECF0FE9E62B53BA6A7438B543A76C145A452CA9036F3CB70D7E6C67D4D9D7FE114E5367A2F6F5A4D39F2B10F3D6"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex: %v", err)
	}
	return b
}

func mustBase64(t testing.TB, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	return b
}

func vectorKey(t testing.TB) *PrivateKey {
	t.Helper()
	priv, err := NewPrivateKeyFromHex(vectorPrivateKey)
	if err != nil {
		t.Fatalf("load vector key: %v", err)
	}
	return priv
}
