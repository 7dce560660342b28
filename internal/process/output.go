package process

import (
	"bytes"
)

// TruncatedMarker is appended to captured output that exceeded the capture limit.
const TruncatedMarker = "\n[output truncated]"

// LimitedBuffer is an io.Writer that keeps at most Max bytes and silently discards the rest.
// It never returns short writes so the process being captured is not affected by the limit.
type LimitedBuffer struct {
	Max int

	buf       bytes.Buffer
	truncated bool
}

// NewLimitedBuffer returns a new LimitedBuffer, a limit <= 0 means unlimited.
func NewLimitedBuffer(limit int) *LimitedBuffer {
	return &LimitedBuffer{Max: limit}
}

func (l *LimitedBuffer) Write(p []byte) (int, error) {
	if l.Max <= 0 {
		return l.buf.Write(p)
	}

	remaining := l.Max - l.buf.Len()
	if len(p) > remaining {
		l.truncated = true
		if remaining > 0 {
			_, _ = l.buf.Write(p[:remaining])
		}
		return len(p), nil
	}

	return l.buf.Write(p)
}

// Truncated returns true if any data was discarded.
func (l *LimitedBuffer) Truncated() bool { return l.truncated }

// String returns the captured data, with TruncatedMarker when data was discarded.
func (l *LimitedBuffer) String() string {
	if l.truncated {
		return l.buf.String() + TruncatedMarker
	}
	return l.buf.String()
}
