// Package engine converts noisy per-frame detections into committed
// activity events. It is pure state-transition logic: no I/O, no clock
// reads. Frame timestamps drive all timing decisions, which keeps the
// engine deterministic under test.
package engine

import (
	"image"
	"strings"
	"time"

	"github.com/deskwatch/deskwatch/pkg/activity"
)

// Detection is one object detection from the frame signal source.
type Detection struct {
	Label      string
	Confidence float64 // 0-1
	Box        image.Rectangle
}

// Frame is the per-frame raw signal. An empty Affect or empty
// Detections slice means "no evidence this frame", never an error.
type Frame struct {
	MotionMagnitude int // changed-pixel count vs previous frame
	Detections      []Detection
	Affect          string // dominant affect label, empty if unanalyzed
	Timestamp       time.Time
}

// subjectState is the per-subject debounce state. It lives only for
// the monitoring session; a restart deems the subject absent and
// restarts usage accumulation at zero.
type subjectState struct {
	present         bool
	deviceActive    bool
	deviceSpanStart time.Time
	accumulated     time.Duration // closed-span usage not yet reported
	lastReport      time.Time
}

// Engine derives activity events from frame signals, one state
// instance per subject. Frames for one subject must arrive in order
// from a single goroutine; distinct Engine instances are independent,
// so one engine per camera works without shared state.
type Engine struct {
	cfg      Config
	subjects map[int64]*subjectState
}

// New creates an Engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		subjects: make(map[int64]*subjectState),
	}
}

// ProcessFrame advances the subject's state with one frame and returns
// the events committed by that transition, in commit order. Malformed
// or absent collaborator signals never fail; they are neutral evidence.
func (e *Engine) ProcessFrame(subjectID int64, f Frame) []activity.Event {
	st, ok := e.subjects[subjectID]
	if !ok {
		st = &subjectState{lastReport: f.Timestamp}
		e.subjects[subjectID] = st
	}

	var events []activity.Event
	events = append(events, e.processAffect(subjectID, st, f)...)
	events = append(events, e.processDevice(subjectID, st, f)...)
	events = append(events, e.processPresence(subjectID, st, f)...)
	return events
}

// processAffect emits one affect event for every frame that carries a
// label. No debouncing: a continuous affect stream, not transitions.
func (e *Engine) processAffect(subjectID int64, _ *subjectState, f Frame) []activity.Event {
	if f.Affect == "" {
		return nil
	}
	return []activity.Event{{
		EmployeeID: subjectID,
		Type:       activity.Affect,
		OccurredAt: f.Timestamp,
		Details:    f.Affect,
	}}
}

// processDevice tracks device-use spans and coalesces short spans into
// a single report so the transport is not flooded with sub-second
// events, while long continuous usage still surfaces promptly.
func (e *Engine) processDevice(subjectID int64, st *subjectState, f Frame) []activity.Event {
	active := false
	for _, d := range f.Detections {
		if strings.EqualFold(d.Label, e.cfg.DeviceLabel) && d.Confidence > e.cfg.MinConfidence {
			active = true
			break
		}
	}

	switch {
	case active && !st.deviceActive:
		st.deviceActive = true
		st.deviceSpanStart = f.Timestamp

	case !active && st.deviceActive:
		elapsed := f.Timestamp.Sub(st.deviceSpanStart)
		st.accumulated += elapsed
		st.deviceActive = false
		st.deviceSpanStart = time.Time{}

		if f.Timestamp.Sub(st.lastReport) > e.cfg.ReportInterval || elapsed > e.cfg.LongUsage {
			return []activity.Event{e.commitUsage(subjectID, st, f.Timestamp, "Detected device usage")}
		}
	}
	return nil
}

// processPresence edge-triggers on the motion signal crossing the
// threshold. No confirmation window: borderline motion can flicker.
func (e *Engine) processPresence(subjectID int64, st *subjectState, f Frame) []activity.Event {
	above := f.MotionMagnitude > e.cfg.MotionThreshold
	if above == st.present {
		return nil
	}
	st.present = above

	typ := activity.PresenceLeave
	detail := "Employee left the frame"
	if above {
		typ = activity.PresenceEnter
		detail = "Employee entered the frame"
	}
	return []activity.Event{{
		EmployeeID: subjectID,
		Type:       typ,
		OccurredAt: f.Timestamp,
		Details:    detail,
	}}
}

// commitUsage drains the accumulator into a device_usage event and
// resets the reporting clock.
func (e *Engine) commitUsage(subjectID int64, st *subjectState, now time.Time, detail string) activity.Event {
	ev := activity.Event{
		EmployeeID: subjectID,
		Type:       activity.DeviceUsage,
		OccurredAt: now,
		Duration:   st.accumulated.Seconds(),
		Details:    detail,
	}
	st.accumulated = 0
	st.lastReport = now
	return ev
}

// Flush ends the subject's session: an open span is closed into the
// accumulator, and any accumulated usage is committed regardless of
// the reporting cadence. Best-effort final report before shutdown.
func (e *Engine) Flush(subjectID int64, now time.Time) []activity.Event {
	st, ok := e.subjects[subjectID]
	if !ok {
		return nil
	}

	if st.deviceActive {
		st.accumulated += now.Sub(st.deviceSpanStart)
		st.deviceActive = false
		st.deviceSpanStart = time.Time{}
	}
	if st.accumulated <= 0 {
		return nil
	}
	return []activity.Event{e.commitUsage(subjectID, st, now, "Final device usage report")}
}

// FlushAll flushes every tracked subject.
func (e *Engine) FlushAll(now time.Time) []activity.Event {
	var events []activity.Event
	for id := range e.subjects {
		events = append(events, e.Flush(id, now)...)
	}
	return events
}

// Present reports the last committed presence value for a subject.
func (e *Engine) Present(subjectID int64) bool {
	st, ok := e.subjects[subjectID]
	return ok && st.present
}
