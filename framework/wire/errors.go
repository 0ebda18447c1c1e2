package wire

import "fmt"

// Kind classifies why a request could not be read or parsed.
// A Kind is itself an error so callers can match with errors.Is(err, wire.Malformed).
type Kind int

const (
	// Malformed means the request line or a header is not valid HTTP/1.1 syntax
	Malformed Kind = iota
	// TruncatedBody means Content-Length promised more bytes than were received
	TruncatedBody
	// TooLarge means a bound was exceeded: the request size, or a token under strict Limits
	TooLarge
	// Empty means the peer went away before sending a single byte
	Empty
)

func (k Kind) Error() string {
	switch k {
	case Malformed:
		return "malformed request"
	case TruncatedBody:
		return "truncated body"
	case TooLarge:
		return "request too large"
	case Empty:
		return "empty request"
	default:
		return fmt.Sprintf("unknown parse error: %d", int(k))
	}
}

// ParseError is returned by Parse and ReadMessage
type ParseError struct {
	Kind   Kind
	Detail string
	// Err is the underlying I/O error, if any
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (underlying: %v)", e.Err)
	}
	return msg
}

// Is reports whether target is the error's Kind
func (e *ParseError) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// Unwrap returns the underlying I/O error, so errors.Is also matches
// causes like io.EOF or os.ErrDeadlineExceeded
func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(kind Kind, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
