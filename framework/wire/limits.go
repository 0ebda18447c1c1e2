package wire

// Limits bounds every variable-length part of a request.
// A bound <= 0 disables that check.
type Limits struct {
	MaxMethod      int
	MaxPath        int
	MaxVersion     int
	MaxHeaders     int
	MaxHeaderName  int
	MaxHeaderValue int

	// Strict turns an exceeded bound into a TooLarge error.
	// Otherwise over-long tokens are truncated and extra headers are dropped.
	Strict bool
}

// DefaultLimits returns the lenient limits: 15 byte method and version,
// 255 byte path, 32 headers with 63 byte names and 255 byte values.
func DefaultLimits() Limits {
	return Limits{
		MaxMethod:      15,
		MaxPath:        255,
		MaxVersion:     15,
		MaxHeaders:     32,
		MaxHeaderName:  63,
		MaxHeaderValue: 255,
	}
}

// clip applies one bound to s
func (l Limits) clip(s string, max int, what string) (string, error) {
	if max <= 0 || len(s) <= max {
		return s, nil
	}
	if l.Strict {
		return "", newParseError(TooLarge, "%s is %d bytes, limit is %d", what, len(s), max)
	}
	return s[:max], nil
}

// headersFull reports whether n headers already fill the header table
func (l Limits) headersFull(n int) bool {
	return l.MaxHeaders > 0 && n >= l.MaxHeaders
}
