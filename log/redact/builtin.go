package redact

// Mask 替换后的占位内容
const Mask = "[REDACTED]"

var (
	// PEMPrivateKeyRule 遮蔽 PEM 私钥块正文，保留首尾标记
	PEMPrivateKeyRule = MustNewContentRule(
		"pem_private_key",
		`(?s)(-----BEGIN [A-Z0-9 ]*PRIVATE KEY-----).*?(-----END [A-Z0-9 ]*PRIVATE KEY-----)`,
		"${1}"+Mask+"${2}",
	)

	// ScalarHexRule 遮蔽独立出现的 64 位十六进制串（原始私钥标量）
	ScalarHexRule = MustNewContentRule(
		"scalar_hex",
		`\b[0-9A-Fa-f]{64}\b`,
		Mask,
	)

	// PrivateKeyFieldRule 遮蔽 private_key 字段
	PrivateKeyFieldRule = MustNewFieldRule("private_key", "private_key", Mask)

	// ScalarFieldRule 遮蔽 d 字段
	ScalarFieldRule = MustNewFieldRule("d", "d", Mask)

	// SecretFieldRule 遮蔽 secret 字段（HMAC 密钥）
	SecretFieldRule = MustNewFieldRule("secret", "secret", Mask)
)

// BuiltinRules 返回所有内置规则
func BuiltinRules() []Rule {
	return []Rule{
		PEMPrivateKeyRule,
		PrivateKeyFieldRule,
		ScalarFieldRule,
		SecretFieldRule,
		ScalarHexRule,
	}
}
