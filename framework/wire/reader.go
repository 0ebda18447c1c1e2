package wire

import (
	"bytes"
	"io"
)

// ReadMessage reads one request from r.
// It keeps reading until the first CRLFCRLF is found and then until the body declared by
// Content-Length has arrived. The buffer starts at initialSize bytes and grows up to
// maxSize; a request that does not fit is a TooLarge error.
// If the peer closes (or a deadline fires) after sending some bytes, the bytes received so
// far are returned without error and Parse decides whether they form a valid request.
// If nothing was received at all the error has kind Empty.
func ReadMessage(r io.Reader, initialSize, maxSize int) ([]byte, error) {
	if initialSize <= 0 {
		initialSize = 4096
	}
	if maxSize < initialSize {
		maxSize = initialSize
	}
	b := make([]byte, initialSize)
	n := 0
	// bodyStart is the index where the body starts, -1 until CRLFCRLF is found
	bodyStart := -1
	// lastIndex is the first index that may still start a CRLFCRLF
	lastIndex := 0
	// want is the total size of the message once the headers are complete
	want := -1

	for {
		if bodyStart == -1 {
			if i := bytes.Index(b[lastIndex:n], bCrlfCrlf); i != -1 {
				bodyStart = lastIndex + i + 4
				want = bodyStart + declaredLength(b[:bodyStart-4])
				if want > maxSize {
					return b[:n], newParseError(TooLarge, "message needs %d bytes, limit is %d", want, maxSize)
				}
			} else {
				// CR, LF, CR may already be received
				lastIndex = intMax(n-3, 0)
			}
		}
		if want != -1 && n >= want {
			return b[:n], nil
		}
		if n == len(b) {
			if len(b) >= maxSize {
				return b[:n], newParseError(TooLarge, "no end of headers within %d bytes", maxSize)
			}
			b = grow(b, n, want, maxSize)
		}
		read, err := r.Read(b[n:])
		n += read
		if err != nil {
			if n == 0 {
				return nil, &ParseError{Kind: Empty, Err: err}
			}
			return b[:n], nil
		}
	}
}

// grow returns a larger buffer holding the first n bytes of b.
// When the full message size is already known the buffer jumps straight to it.
func grow(b []byte, n, want, maxSize int) []byte {
	size := len(b) * 2
	if want > size {
		size = want
	}
	if size > maxSize {
		size = maxSize
	}
	nb := make([]byte, size)
	copy(nb, b[:n])
	return nb
}

// intMax return the max value of two ints
func intMax(x, y int) int {
	if x > y {
		return x
	}
	return y
}
