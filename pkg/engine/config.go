package engine

import "time"

// Config holds all tunable parameters for event derivation.
type Config struct {
	// Presence
	MotionThreshold int // changed-pixel count above which motion means "present"

	// Device usage
	DeviceLabel   string  // detection label that counts as device use
	MinConfidence float64 // detections at or below this confidence are ignored

	// Reporting cadence
	ReportInterval time.Duration // commit accumulated usage at most this often
	LongUsage      time.Duration // spans longer than this commit immediately
}

// DefaultConfig returns the recommended configuration for a single
// desk-facing camera.
func DefaultConfig() Config {
	return Config{
		MotionThreshold: 50000,
		DeviceLabel:     "cell phone",
		MinConfidence:   0.5,
		ReportInterval:  60 * time.Second,
		LongUsage:       10 * time.Second,
	}
}
