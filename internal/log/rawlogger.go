package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// RawLogger records raw sample frames exchanged with feeders.
type RawLogger interface {
	Log(in bool, data []byte)
}

type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewRaw creates a RawLogger writing to w. A nil writer yields a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

// Log writes one line per frame: timestamp, direction, length and hex dump.
// in=true means feeder->daemon.
func (r *rawLogger) Log(in bool, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	dir := "out"
	if in {
		dir = "in"
	}

	const hexdigits = "0123456789abcdef"
	var hex strings.Builder
	hex.Grow(len(data) * 3)
	for i, b := range data {
		if i > 0 {
			hex.WriteByte(' ')
		}
		hex.WriteByte(hexdigits[b>>4])
		hex.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %-3s frame %d bytes: %s\n",
		r.now().Format("2006/01/02 15:04:05.000"), dir, len(data), hex.String())

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
