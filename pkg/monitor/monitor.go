// Package monitor runs the per-subject frame loop: it pulls raw frames
// from a signal source, feeds them through the derivation engine, and
// hands committed events to the transport. The loop owns the engine,
// so frames are processed strictly in arrival order.
package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/deskwatch/deskwatch/pkg/activity"
	"github.com/deskwatch/deskwatch/pkg/engine"
)

// FrameSource supplies raw detection frames. Next blocks until a frame
// is available, the source ends (io.EOF), or ctx is done. Detection
// internals live behind this boundary; the monitor never sees pixels.
type FrameSource interface {
	Next(ctx context.Context) (engine.Frame, error)
}

// Sink accepts committed events for delivery. transport.Transport
// satisfies this; tests substitute their own.
type Sink interface {
	Enqueue(ev activity.Event) error
}

// Runner drives one subject's monitoring session.
type Runner struct {
	subjectID int64
	eng       *engine.Engine
	src       FrameSource
	sink      Sink
}

// NewRunner creates a runner for one subject.
func NewRunner(subjectID int64, eng *engine.Engine, src FrameSource, sink Sink) *Runner {
	return &Runner{
		subjectID: subjectID,
		eng:       eng,
		src:       src,
		sink:      sink,
	}
}

// Run processes frames until the source ends or ctx is cancelled, then
// flushes accumulated usage as a final best-effort report. A failing
// sink never stops the loop or touches engine state.
func (r *Runner) Run(ctx context.Context) error {
	defer r.flush()

	for {
		frame, err := r.src.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			slog.Info("frame source ended", "subject", r.subjectID)
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return ctx.Err()
		case err != nil:
			// A bad frame is no evidence, not a failure.
			slog.Warn("frame source error", "err", err, "subject", r.subjectID)
			continue
		}

		for _, ev := range r.eng.ProcessFrame(r.subjectID, frame) {
			if err := r.sink.Enqueue(ev); err != nil {
				slog.Warn("failed to enqueue event",
					"err", err, "subject", r.subjectID, "event_type", ev.Type)
			}
		}
	}
}

func (r *Runner) flush() {
	for _, ev := range r.eng.Flush(r.subjectID, time.Now()) {
		if err := r.sink.Enqueue(ev); err != nil {
			slog.Warn("failed to enqueue final event",
				"err", err, "subject", r.subjectID, "event_type", ev.Type)
		}
	}
}
