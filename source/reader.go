package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nexusgame/hydra/internal/log"
)

// ReadFrames decodes frames from r into store until r reports EOF or ctx is
// done. A clean EOF on a frame boundary returns nil. raw may be nil.
func ReadFrames(ctx context.Context, r io.Reader, store *Store, raw log.RawLogger) error {
	buf := make([]byte, FrameSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if raw != nil {
			raw.Log(true, buf)
		}
		var f Frame
		if err := f.UnmarshalBinary(buf); err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}
		store.PutFrame(f)
	}
}
