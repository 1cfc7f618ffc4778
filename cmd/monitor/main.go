// monitor: desk activity agent.
// Feeds frame signals through the derivation engine and ships
// committed events to deskwatchd. Without camera hardware attached it
// runs a scripted simulation so the full pipeline can be exercised
// end to end.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/deskwatch/deskwatch/internal/config"
	"github.com/deskwatch/deskwatch/internal/log"
	"github.com/deskwatch/deskwatch/pkg/engine"
	"github.com/deskwatch/deskwatch/pkg/monitor"
	"github.com/deskwatch/deskwatch/pkg/transport"
)

var (
	backend  = flag.String("backend", config.DefaultBackendURL, "ingestion service base URL")
	employee = flag.Int64("employee", 1, "monitored employee id")
	interval = flag.Duration("interval", 500*time.Millisecond, "simulated frame interval")
)

func main() {
	flag.Parse()
	log.Init(config.LogLevel())

	backendURL := config.BackendURL(*backend)
	employeeID := config.EmployeeID(*employee)
	frameInterval := config.Duration("FRAME_INTERVAL", *interval)

	tr := transport.New(transport.DefaultConfig(backendURL))
	tr.Start()
	defer tr.Close()

	eng := engine.New(engine.DefaultConfig())
	src := monitor.NewScriptedSource(simulationScript(), frameInterval)
	runner := monitor.NewRunner(employeeID, eng, src, tr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("monitor started",
		"employee_id", employeeID,
		"backend", backendURL,
		"interval", frameInterval.String(),
	)
	if err := runner.Run(ctx); err != nil {
		log.Info("monitor stopped", "reason", err)
		return
	}
	log.Info("monitor finished")
}

// simulationScript models a short desk session: the subject arrives,
// shows a few affects, picks up a phone twice, and leaves.
func simulationScript() []engine.Frame {
	phone := func(conf float64) []engine.Detection {
		return []engine.Detection{{Label: "cell phone", Confidence: conf}}
	}

	return []engine.Frame{
		{MotionMagnitude: 80000, Affect: "neutral"},
		{MotionMagnitude: 75000, Affect: "neutral"},
		{MotionMagnitude: 70000, Affect: "happy", Detections: phone(0.85)},
		{MotionMagnitude: 72000, Affect: "happy", Detections: phone(0.91)},
		{MotionMagnitude: 68000, Affect: "neutral"},
		{MotionMagnitude: 71000, Detections: phone(0.42)}, // below confidence, ignored
		{MotionMagnitude: 69000, Affect: "surprised", Detections: phone(0.77)},
		{MotionMagnitude: 73000, Affect: "neutral"},
		{MotionMagnitude: 1200},
		{MotionMagnitude: 800},
	}
}
