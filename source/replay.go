package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/nexusgame/hydra/hydra"
)

const (
	defaultReplayRate = 60
	// one frame per nanosecond, the finest ticker resolution
	maxReplayRate = int(time.Second)
)

// ErrInvalidRate is returned for recordings whose rate cannot be paced.
var ErrInvalidRate = errors.New("invalid replay rate")

// Recording is a captured session of raw frames played back at a fixed rate.
//
//	rate: 60
//	frames:
//	  - slot: left
//	    trigger: 0.95
//	    position: [2, 4, 6]
//	    rotation: [0, 0, 0, 1]   # x y z w
//	    stick: [0, 0]
type Recording struct {
	Rate    int              `yaml:"rate"`
	Samples []RecordedSample `yaml:"frames"`
}

// RecordedSample is one frame of a Recording.
type RecordedSample struct {
	Slot     string     `yaml:"slot"`
	Trigger  float64    `yaml:"trigger"`
	Position [3]float64 `yaml:"position"`
	Rotation [4]float64 `yaml:"rotation"`
	Stick    [2]float64 `yaml:"stick"`
}

// LoadRecording reads and validates a YAML recording.
func LoadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	return ParseRecording(data)
}

// ParseRecording decodes and validates a YAML recording.
func ParseRecording(data []byte) (*Recording, error) {
	var rec Recording
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode recording: %w", err)
	}
	if rec.Rate <= 0 {
		rec.Rate = defaultReplayRate
	}
	if rec.Rate > maxReplayRate {
		return nil, fmt.Errorf("%w: %d frames/s exceeds %d", ErrInvalidRate, rec.Rate, maxReplayRate)
	}
	for i, f := range rec.Samples {
		if _, err := hydra.ParseSlot(f.Slot); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return &rec, nil
}

// Frames converts the recording into wire frames.
func (r *Recording) Frames() []Frame {
	out := make([]Frame, 0, len(r.Samples))
	for _, f := range r.Samples {
		slot, err := hydra.ParseSlot(f.Slot)
		if err != nil {
			continue
		}
		out = append(out, Frame{
			Slot: slot,
			Sample: hydra.Sample{
				Trigger:  f.Trigger,
				Position: mgl64.Vec3(f.Position),
				Rotation: mgl64.Quat{W: f.Rotation[3], V: mgl64.Vec3{f.Rotation[0], f.Rotation[1], f.Rotation[2]}},
				StickX:   f.Stick[0],
				StickY:   f.Stick[1],
			},
		})
	}
	return out
}

// Interval is the delay between frames.
func (r *Recording) Interval() time.Duration {
	rate := r.Rate
	if rate <= 0 {
		rate = defaultReplayRate
	}
	if rate > maxReplayRate {
		rate = maxReplayRate
	}
	return time.Second / time.Duration(rate)
}

// Play hands every frame to emit at the recording rate. With loop set it
// starts over until ctx is done.
func (r *Recording) Play(ctx context.Context, loop bool, emit func(Frame) error) error {
	frames := r.Frames()
	if len(frames) == 0 {
		return nil
	}
	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	for {
		for _, f := range frames {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			if err := emit(f); err != nil {
				return err
			}
		}
		if !loop {
			return nil
		}
	}
}

// PlayInto plays the recording straight into store.
func (r *Recording) PlayInto(ctx context.Context, store *Store, loop bool) error {
	return r.Play(ctx, loop, func(f Frame) error {
		store.PutFrame(f)
		return nil
	})
}
