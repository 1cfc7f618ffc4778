package monitor

import (
	"context"
	"io"
	"time"

	"github.com/deskwatch/deskwatch/pkg/engine"
)

// ScriptedSource plays back a fixed sequence of frames at a steady
// tick. It stands in for a camera pipeline in demos and tests; frames
// with a zero Timestamp are stamped at emission time.
type ScriptedSource struct {
	frames   []engine.Frame
	interval time.Duration
	next     int
}

// NewScriptedSource creates a source that emits the given frames in
// order, one per interval, then returns io.EOF.
func NewScriptedSource(frames []engine.Frame, interval time.Duration) *ScriptedSource {
	return &ScriptedSource{frames: frames, interval: interval}
}

// Next returns the next scripted frame.
func (s *ScriptedSource) Next(ctx context.Context) (engine.Frame, error) {
	if s.next >= len(s.frames) {
		return engine.Frame{}, io.EOF
	}

	if s.interval > 0 {
		timer := time.NewTimer(s.interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return engine.Frame{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return engine.Frame{}, err
	}

	frame := s.frames[s.next]
	s.next++
	if frame.Timestamp.IsZero() {
		frame.Timestamp = time.Now()
	}
	return frame, nil
}
