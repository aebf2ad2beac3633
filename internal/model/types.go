// Package model defines shared data structures.
package model

import "time"

// StatsRecord captures one completed or cancelled typing session.
type StatsRecord struct {
	ID           string
	StartedAt    time.Time
	CompletedAt  time.Time
	WPM          int
	Accuracy     float64
	Typed        int
	Mistakes     int
	TargetLength int
	Completed    bool
	Source       string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Last    int
	Window  int
	History bool
}
