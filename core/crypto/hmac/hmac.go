// Package hmac 提供基于 HMAC-SM3 的带时间戳请求签名
package hmac

import (
	"crypto/hmac"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/tjfoc/gmsm/sm3"

	"github.com/kochabx/smkit/errors"
)

// DefaultExpiration 签名默认有效期
const DefaultExpiration = 5 * time.Minute

var (
	ErrEmptySecret       = errors.BadRequest("hmac: secret cannot be empty")
	ErrEmptySignature    = errors.BadRequest("hmac: signature cannot be empty")
	ErrInvalidTimestamp  = errors.BadRequest("hmac: invalid timestamp")
	ErrExpired           = errors.BadRequest("hmac: signature expired")
	ErrFutureTimestamp   = errors.BadRequest("hmac: timestamp is in the future")
	ErrSignatureFormat   = errors.SignatureFormat("hmac: invalid signature format")
	ErrSignatureMismatch = errors.MacMismatch("hmac: signature mismatch")
)

// SignResult 封装签名结果
type SignResult struct {
	Signature string
	Timestamp int64
}

// Option 用于配置签名和验证选项
type Option struct {
	payload    []byte
	expiration time.Duration
	now        func() time.Time // 用于测试的时间注入
}

// WithPayload 设置要签名的附加数据
func WithPayload(payload string) func(*Option) {
	return func(o *Option) {
		o.payload = []byte(payload)
	}
}

// WithPayloadBytes 以字节形式设置附加数据，例如 SM2 密文或签名
func WithPayloadBytes(payload []byte) func(*Option) {
	return func(o *Option) {
		o.payload = payload
	}
}

// WithExpiration 设置签名过期时间，默认为 5 分钟
func WithExpiration(d time.Duration) func(*Option) {
	return func(o *Option) {
		o.expiration = d
	}
}

// withTimeFunc 用于测试的时间注入（内部使用）
func withTimeFunc(fn func() time.Time) func(*Option) {
	return func(o *Option) {
		o.now = fn
	}
}

func newOption(opts []func(*Option)) *Option {
	opt := &Option{
		expiration: DefaultExpiration,
		now:        time.Now,
	}
	for _, o := range opts {
		o(opt)
	}
	return opt
}

// Sum 计算 HMAC-SM3
func Sum(key, message []byte) []byte {
	h := hmac.New(sm3.New, key)
	h.Write(message)
	return h.Sum(nil)
}

// Sign 生成 HMAC-SM3 签名，签名内容为 "时间戳\n附加数据"
func Sign(secret string, opts ...func(*Option)) (*SignResult, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	opt := newOption(opts)
	timestamp := opt.now().Unix()

	return &SignResult{
		Signature: hex.EncodeToString(Sum([]byte(secret), message(timestamp, opt.payload))),
		Timestamp: timestamp,
	}, nil
}

// Verify 验证 HMAC-SM3 签名，选项需要与签名时保持一致
func Verify(secret, signature string, timestamp int64, opts ...func(*Option)) error {
	if secret == "" {
		return ErrEmptySecret
	}
	if signature == "" {
		return ErrEmptySignature
	}
	if timestamp <= 0 {
		return ErrInvalidTimestamp
	}

	opt := newOption(opts)

	elapsed := opt.now().Unix() - timestamp
	if elapsed < 0 {
		return ErrFutureTimestamp
	}
	if elapsed > int64(opt.expiration/time.Second) {
		return ErrExpired.WithMetadata(map[string]string{"elapsed": strconv.FormatInt(elapsed, 10) + "s"})
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrSignatureFormat.WithCause(err)
	}

	// 常量时间比较
	if !hmac.Equal(got, Sum([]byte(secret), message(timestamp, opt.payload))) {
		return ErrSignatureMismatch
	}
	return nil
}

func message(timestamp int64, payload []byte) []byte {
	b := strconv.AppendInt(make([]byte, 0, 20+1+len(payload)), timestamp, 10)
	b = append(b, '\n')
	return append(b, payload...)
}
