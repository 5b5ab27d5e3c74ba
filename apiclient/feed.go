package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/nexusgame/hydra/source"
)

// FeedStream pushes sample frames into the daemon's store.
type FeedStream struct {
	conn net.Conn

	mu     sync.Mutex
	closed bool
}

// OpenFeed opens the feed stream route. Every frame written afterwards
// replaces the latest sample of its slot on the daemon.
func (c *Client) OpenFeed(ctx context.Context) (*FeedStream, error) {
	if c.transport.mock != nil {
		return nil, errors.New("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	_ = conn.SetWriteDeadline(time.Time{})
	if _, err := conn.Write([]byte("feed\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &FeedStream{conn: conn}, nil
}

// WriteFrame sends one frame.
func (s *FeedStream) WriteFrame(f source.Frame) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	_, err = s.conn.Write(data)
	return err
}

// Close ends the stream.
func (s *FeedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
