package wire

import (
	"bytes"
	"strconv"
	"strings"
)

// the bytes for essential http parsing
var (
	bCrlf         = []byte("\r\n")
	bCrlfCrlf     = []byte("\r\n\r\n")
	contentLength = "Content-Length"
)

// Header is a single name/value pair as it appeared on the wire
type Header struct {
	Name  string
	Value string
}

// Request is one parsed HTTP request
type Request struct {
	Method  string
	Path    string
	Version string
	// Headers keeps wire order, duplicate names included
	Headers []Header
	// Body holds exactly Content-Length bytes, nil when there is no body
	Body []byte
}

// Header returns the value of the first header whose name matches, ignoring case
func (r *Request) Header(name string) (string, bool) {
	return lookup(r.Headers, name)
}

func lookup(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Parse parses raw into a Request.
// raw must hold at least a CRLF terminated request line. Headers are read until an empty
// line; lines without a colon are skipped. If a positive Content-Length is present, that
// many bytes following the empty line become the body.
func Parse(raw []byte, limits Limits) (*Request, error) {
	lineEnd := bytes.Index(raw, bCrlf)
	if lineEnd == -1 {
		return nil, newParseError(Malformed, "request line is not terminated by CRLF")
	}
	req := &Request{}
	if err := req.parseRequestLine(string(raw[:lineEnd]), limits); err != nil {
		return nil, err
	}
	pos, err := req.parseHeaders(raw, lineEnd+2, limits)
	if err != nil {
		return nil, err
	}
	if err := req.parseBody(raw[pos:], limits); err != nil {
		return nil, err
	}
	return req, nil
}

// parseRequestLine splits "GET /path HTTP/1.1" into its three tokens
func (r *Request) parseRequestLine(line string, limits Limits) (err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return newParseError(Malformed, "request line has %d fields, want 3", len(fields))
	}
	if r.Method, err = limits.clip(fields[0], limits.MaxMethod, "method"); err != nil {
		return err
	}
	if r.Path, err = limits.clip(fields[1], limits.MaxPath, "path"); err != nil {
		return err
	}
	if r.Version, err = limits.clip(fields[2], limits.MaxVersion, "version"); err != nil {
		return err
	}
	if !strings.HasPrefix(r.Path, "/") {
		return newParseError(Malformed, "path %q does not start with /", r.Path)
	}
	return nil
}

// parseHeaders reads header lines starting at pos and returns where the body starts.
// A header section that is not closed by an empty line ends at the last complete line.
func (r *Request) parseHeaders(raw []byte, pos int, limits Limits) (int, error) {
	for pos < len(raw) {
		if bytes.HasPrefix(raw[pos:], bCrlf) {
			return pos + 2, nil
		}
		end := bytes.Index(raw[pos:], bCrlf)
		if end == -1 {
			break
		}
		line := raw[pos : pos+end]
		pos += end + 2

		colon := bytes.IndexByte(line, ':')
		if colon == -1 {
			continue
		}
		if limits.headersFull(len(r.Headers)) {
			if limits.Strict {
				return 0, newParseError(TooLarge, "more than %d headers", limits.MaxHeaders)
			}
			// keep scanning so the body still starts after the empty line
			continue
		}
		name, err := limits.clip(string(line[:colon]), limits.MaxHeaderName, "header name")
		if err != nil {
			return 0, err
		}
		value, err := limits.clip(string(bytes.TrimLeft(line[colon+1:], " ")), limits.MaxHeaderValue, "header value")
		if err != nil {
			return 0, err
		}
		r.Headers = append(r.Headers, Header{Name: name, Value: value})
	}
	return pos, nil
}

// parseBody copies Content-Length bytes out of rest
func (r *Request) parseBody(rest []byte, limits Limits) error {
	value, ok := r.Header(contentLength)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		if limits.Strict {
			return newParseError(Malformed, "invalid Content-Length %q", value)
		}
		return nil
	}
	if n == 0 {
		return nil
	}
	if n > len(rest) {
		return newParseError(TruncatedBody, "Content-Length is %d but only %d bytes follow the headers", n, len(rest))
	}
	r.Body = make([]byte, n)
	copy(r.Body, rest[:n])
	return nil
}

// declaredLength scans a header block for Content-Length the same way Parse does.
// It returns 0 when the header is absent or not a valid length.
func declaredLength(head []byte) int {
	for len(head) > 0 {
		end := bytes.Index(head, bCrlf)
		if end == -1 {
			end = len(head)
		}
		line := head[:end]
		if end == len(head) {
			head = nil
		} else {
			head = head[end+2:]
		}
		colon := bytes.IndexByte(line, ':')
		if colon == -1 || !strings.EqualFold(string(line[:colon]), contentLength) {
			continue
		}
		n, err := strconv.Atoi(string(bytes.TrimSpace(line[colon+1:])))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return 0
}
