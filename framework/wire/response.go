package wire

import (
	"strconv"
	"strings"
)

const version = "HTTP/1.1"

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusInternalServerError = 500
)

var statusText = map[int]string{
	StatusOK:                  "OK",
	StatusBadRequest:          "Bad Request",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

// StatusText returns the reason phrase for code, or "" if the code is unknown
func StatusText(code int) string {
	return statusText[code]
}

// Response is one HTTP response waiting to be serialized.
// Body is sent verbatim and its length is authoritative.
type Response struct {
	StatusCode int
	StatusText string
	Headers    []Header
	Body       []byte
}

// NewResponse creates a Response with the standard reason phrase for code
func NewResponse(code int, body []byte) *Response {
	return &Response{StatusCode: code, StatusText: StatusText(code), Body: body}
}

// AddHeader appends a header, keeping insertion order
func (r *Response) AddHeader(name, value string) {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// Header returns the value of the first header whose name matches, ignoring case
func (r *Response) Header(name string) (string, bool) {
	return lookup(r.Headers, name)
}

// BadRequest is the fixed response for requests that cannot be parsed
func BadRequest() *Response {
	return NewResponse(StatusBadRequest, []byte("Bad Request"))
}

// Serialize renders r as an HTTP/1.1 message.
// Content-Length is derived from len(Body) and written exactly once, any
// Content-Length set by the caller is ignored.
func Serialize(r *Response) []byte {
	text := r.StatusText
	if text == "" {
		text = StatusText(r.StatusCode)
	}
	code := strconv.Itoa(r.StatusCode)
	var bodyLength string
	if len(r.Body) > 0 {
		bodyLength = strconv.Itoa(len(r.Body))
	}

	// compute the exact size first so the buffer is allocated once
	size := len(version) + 1 + len(code) + 1 + len(text) + 2
	for _, h := range r.Headers {
		if isContentLength(h.Name) {
			continue
		}
		size += len(h.Name) + 2 + len(h.Value) + 2
	}
	if bodyLength != "" {
		size += len(contentLength) + 2 + len(bodyLength) + 2
	}
	size += 2 + len(r.Body)

	b := make([]byte, 0, size)
	b = append(b, version...)
	b = append(b, ' ')
	b = append(b, code...)
	b = append(b, ' ')
	b = append(b, text...)
	b = append(b, bCrlf...)
	for _, h := range r.Headers {
		if isContentLength(h.Name) {
			continue
		}
		b = appendHeader(b, h.Name, h.Value)
	}
	if bodyLength != "" {
		b = appendHeader(b, contentLength, bodyLength)
	}
	b = append(b, bCrlf...)
	b = append(b, r.Body...)
	return b
}

func appendHeader(b []byte, name, value string) []byte {
	b = append(b, name...)
	b = append(b, ':', ' ')
	b = append(b, value...)
	return append(b, bCrlf...)
}

func isContentLength(name string) bool {
	return strings.EqualFold(name, contentLength)
}
