package sm2

import (
	"crypto/rand"
	"io"

	"github.com/rs/zerolog"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/log"
)

type options struct {
	mode     Mode
	encoding SignatureEncoding
	userID   []byte
	form     curve.PointForm
	random   io.Reader
	logger   zerolog.Logger
}

// Option configures an Engine or a single low-level call.
type Option func(*options)

func newOptions(opts ...Option) options {
	o := options{
		mode:     C1C3C2,
		encoding: EncodingDER,
		userID:   DefaultUserID,
		form:     curve.Uncompressed,
		random:   rand.Reader,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) validate() error {
	if o.mode != C1C3C2 && o.mode != C1C2C3 {
		return ErrEncoding.WithCausef("unknown ciphertext mode %d", int(o.mode))
	}
	if o.encoding != EncodingDER && o.encoding != EncodingPlain {
		return ErrEncoding.WithCausef("unknown signature encoding %d", int(o.encoding))
	}
	if o.form < curve.Uncompressed || o.form > curve.Hybrid {
		return ErrEncoding.WithCausef("unknown point form %d", int(o.form))
	}
	return CheckUserID(o.userID)
}

// WithMode sets the ciphertext component order.
func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithSignatureEncoding sets the signature serialization.
func WithSignatureEncoding(encoding SignatureEncoding) Option {
	return func(o *options) {
		o.encoding = encoding
	}
}

// WithPlainEncoding is shorthand for WithSignatureEncoding(EncodingPlain).
func WithPlainEncoding() Option {
	return WithSignatureEncoding(EncodingPlain)
}

// WithUserID sets the signer identity mixed into ZA. A nil id restores the default.
func WithUserID(id []byte) Option {
	return func(o *options) {
		if id == nil {
			o.userID = DefaultUserID
			return
		}
		o.userID = append([]byte(nil), id...)
	}
}

// WithPointForm sets the encoding of C1 in produced ciphertexts.
func WithPointForm(form curve.PointForm) Option {
	return func(o *options) {
		o.form = form
	}
}

// WithRandom sets the source of ephemeral scalars. It must be safe for concurrent use
// when the engine is shared between goroutines.
func WithRandom(random io.Reader) Option {
	return func(o *options) {
		if random != nil {
			o.random = random
		}
	}
}

// WithLogger routes engine diagnostics to l. Key material is never logged.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l.Logger.With().Str("component", "sm2").Logger()
		}
	}
}
