package wire

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"testing/iotest"
)

func TestReadMessage_ByteAtATime(t *testing.T) {
	raw := "POST /x HTTP/1.1\r\nContent-Length: 4\r\n\r\nbody"
	// the extra bytes must not be waited for once the message is complete
	r := io.MultiReader(iotest.OneByteReader(strings.NewReader(raw)), blockingReader{t})

	got, err := ReadMessage(r, 8, 1024)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if string(got) != raw {
		t.Errorf("got %q, want %q", got, raw)
	}
}

func TestReadMessage_NoBody(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: x\r\n\r\n"
	got, err := ReadMessage(io.MultiReader(strings.NewReader(raw), blockingReader{t}), 4096, 4096)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if string(got) != raw {
		t.Errorf("got %q, want %q", got, raw)
	}
}

func TestReadMessage_GrowsForLargeBody(t *testing.T) {
	body := bytes.Repeat([]byte("z"), 10000)
	raw := append([]byte("POST / HTTP/1.1\r\nContent-Length: 10000\r\n\r\n"), body...)

	got, err := ReadMessage(bytes.NewReader(raw), 16, 64<<10)
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	req, err := Parse(got, DefaultLimits())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !bytes.Equal(req.Body, body) {
		t.Errorf("body of %d bytes, want %d", len(req.Body), len(body))
	}
}

func TestReadMessage_Empty(t *testing.T) {
	_, err := ReadMessage(strings.NewReader(""), 4096, 4096)
	if !errors.Is(err, Empty) {
		t.Fatalf("expected Empty, got %v", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Err != io.EOF {
		t.Errorf("expected underlying io.EOF, got %v", err)
	}
}

func TestReadMessage_PeerClosesEarly(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"no CRLF at all", "GET / HTTP/1.1", Malformed},
		{"body cut short", "POST / HTTP/1.1\r\nContent-Length: 50\r\n\r\nonly this", TruncatedBody},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadMessage(strings.NewReader(tc.raw), 4096, 4096)
			if err != nil {
				t.Fatalf("partial data should be handed to the parser, got %v", err)
			}
			if string(got) != tc.raw {
				t.Errorf("got %q, want %q", got, tc.raw)
			}
			if _, err := Parse(got, DefaultLimits()); !errors.Is(err, tc.kind) {
				t.Errorf("Parse: expected %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestReadMessage_TooLarge(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"headers never end", "GET / HTTP/1.1\r\n" + strings.Repeat("X-Filler: aaaaaaaa\r\n", 100)},
		{"declared body over the limit", "POST / HTTP/1.1\r\nContent-Length: 5000\r\n\r\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadMessage(strings.NewReader(tc.raw), 64, 1024)
			if !errors.Is(err, TooLarge) {
				t.Errorf("expected TooLarge, got %v", err)
			}
		})
	}
}

func TestReadMessage_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("GET / HT"), iotest.ErrReader(boom))
	got, err := ReadMessage(r, 4096, 4096)
	if err != nil {
		t.Fatalf("bytes were received, expected them back without error: %v", err)
	}
	if string(got) != "GET / HT" {
		t.Errorf("got %q", got)
	}

	_, err = ReadMessage(iotest.ErrReader(boom), 4096, 4096)
	if !errors.Is(err, Empty) {
		t.Errorf("expected Empty, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected the read error to be reachable, got %v", err)
	}
}

func TestParseError_Is(t *testing.T) {
	err := error(&ParseError{Kind: Empty, Err: os.ErrDeadlineExceeded})
	if !errors.Is(err, Empty) {
		t.Error("expected to match its Kind")
	}
	if errors.Is(err, Malformed) || errors.Is(err, TooLarge) {
		t.Error("matched a different Kind")
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Error("expected to match the underlying error")
	}
	if errors.Is(err, io.EOF) {
		t.Error("matched an unrelated error")
	}
}

// blockingReader fails the test if ReadMessage reads past a complete message
type blockingReader struct {
	t *testing.T
}

func (b blockingReader) Read(p []byte) (int, error) {
	b.t.Error("read past the end of a complete message")
	return 0, io.EOF
}
