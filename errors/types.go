package errors

// Taxonomy codes of the crypto core. They sit outside the HTTP range so callers
// translating errors into responses can tell them apart.
const (
	CodeCurve           = 1001 // point off-curve, infinity where forbidden, scalar out of range, retries exhausted
	CodeLength          = 1002 // empty plaintext, malformed fixed-width field, degenerate KDF output
	CodeEncoding        = 1003 // unknown point prefix, malformed DER/PEM container
	CodeMacMismatch     = 1004 // decryption integrity failure
	CodeSignatureFormat = 1005 // malformed r/s encoding
)

func Curve(format string, args ...any) *Error {
	return New(CodeCurve, format, args...)
}

func Length(format string, args ...any) *Error {
	return New(CodeLength, format, args...)
}

func Encoding(format string, args ...any) *Error {
	return New(CodeEncoding, format, args...)
}

func MacMismatch(format string, args ...any) *Error {
	return New(CodeMacMismatch, format, args...)
}

func SignatureFormat(format string, args ...any) *Error {
	return New(CodeSignatureFormat, format, args...)
}

// HTTP-flavoured constructors used by the config and CLI layers

func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(404, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}
