package wire

import (
	"bufio"
	"bytes"
	"github.com/valyala/fasthttp"
	"strings"
	"testing"
)

func TestSerialize(t *testing.T) {
	resp := NewResponse(StatusOK, []byte("<h1>hi</h1>"))
	resp.AddHeader("Content-Type", "text/html")
	resp.AddHeader("X-Extra", "1")

	got := string(Serialize(resp))
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nX-Extra: 1\r\nContent-Length: 11\r\n\r\n<h1>hi</h1>"
	if got != want {
		t.Errorf("Serialize:\n got %q\nwant %q", got, want)
	}
}

func TestSerialize_BadRequest(t *testing.T) {
	got := string(Serialize(BadRequest()))
	want := "HTTP/1.1 400 Bad Request\r\nContent-Length: 11\r\n\r\nBad Request"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSerialize_ContentLengthOnce(t *testing.T) {
	resp := NewResponse(StatusOK, []byte("abc"))
	resp.AddHeader("content-length", "999")
	resp.AddHeader("Content-Type", "text/plain")

	got := string(Serialize(resp))
	if n := strings.Count(strings.ToLower(got), "content-length"); n != 1 {
		t.Errorf("Content-Length appears %d times in %q", n, got)
	}
	if !strings.Contains(got, "Content-Length: 3\r\n") {
		t.Errorf("missing computed Content-Length in %q", got)
	}
}

func TestSerialize_NoBody(t *testing.T) {
	resp := &Response{StatusCode: StatusNotFound}
	got := string(Serialize(resp))
	want := "HTTP/1.1 404 Not Found\r\n\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSerialize_BinaryBody(t *testing.T) {
	body := []byte{0x89, 'P', 'N', 'G', 0x00, 0x00, '\r', '\n', 0xff}
	resp := NewResponse(StatusOK, body)
	resp.AddHeader("Content-Type", "image/png")

	out := Serialize(resp)
	if len(out) != cap(out) {
		t.Errorf("buffer capacity %d, length %d: size was not computed exactly", cap(out), len(out))
	}
	if !bytes.HasSuffix(out, append([]byte("\r\n\r\n"), body...)) {
		t.Errorf("body not written verbatim: %q", out)
	}
	if !bytes.Contains(out, []byte("Content-Length: 9\r\n")) {
		t.Errorf("wrong Content-Length: %q", out)
	}
}

func TestSerialize_CustomStatusText(t *testing.T) {
	resp := &Response{StatusCode: 418, StatusText: "I'm a teapot"}
	got := string(Serialize(resp))
	if !strings.HasPrefix(got, "HTTP/1.1 418 I'm a teapot\r\n") {
		t.Errorf("unexpected status line in %q", got)
	}
}

// TestSerialize_ReadableByFasthttp checks the output against an independent HTTP parser
func TestSerialize_ReadableByFasthttp(t *testing.T) {
	testCases := []struct {
		name string
		resp *Response
	}{
		{"ok", func() *Response {
			r := NewResponse(StatusOK, []byte("body\x00bytes"))
			r.AddHeader("Content-Type", "application/octet-stream")
			return r
		}()},
		{"bad request", BadRequest()},
		{"forbidden", NewResponse(StatusForbidden, []byte("403 Forbidden"))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parsed fasthttp.Response
			err := parsed.Read(bufio.NewReader(bytes.NewReader(Serialize(tc.resp))))
			if err != nil {
				t.Fatalf("fasthttp could not read the response: %v", err)
			}
			if parsed.StatusCode() != tc.resp.StatusCode {
				t.Errorf("status %d, want %d", parsed.StatusCode(), tc.resp.StatusCode)
			}
			if !bytes.Equal(parsed.Body(), tc.resp.Body) {
				t.Errorf("body %q, want %q", parsed.Body(), tc.resp.Body)
			}
			if parsed.Header.ContentLength() != len(tc.resp.Body) {
				t.Errorf("Content-Length %d, want %d", parsed.Header.ContentLength(), len(tc.resp.Body))
			}
		})
	}
}
