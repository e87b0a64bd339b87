//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package activity

import (
	"math"
	"time"
)

// Evening simulates a regional audience listening mostly after work.
// Night: 12AM - 6AM (10%)
// Morning: 6AM - 12PM (35%)
// Afternoon: 12PM - 5PM (55%)
// Evening peak: 5PM - 11PM (100%)
// Late night: 11PM - 12AM (60%)
// Weekend: 115% of weekday
type Evening struct {
	tz *time.Location
}

// NewEvening creates a new Evening profile.
func NewEvening(tz *time.Location) Profile {
	return &Evening{tz: tz}
}

func (p *Evening) Name() string {
	return "evening"
}

func (p *Evening) Description() string {
	return "Regional audience (evening peak)"
}

func (p *Evening) Peak() float64 {
	return 1.15
}

func (p *Evening) Level(t time.Time) float64 {
	t = t.In(p.tz)

	var base float64
	switch hour := t.Hour(); {
	case hour < 6:
		base = 0.10
	case hour < 12:
		base = 0.35
	case hour < 17:
		base = 0.55
	case hour < 23:
		base = 1.0
	default:
		base = 0.60
	}

	if isWeekend(t) {
		base *= 1.15
	}
	return base
}

// Commuter simulates listening on the way to and from work, with a
// quieter plateau during office hours and little activity at weekends.
type Commuter struct {
	tz *time.Location
}

// NewCommuter creates a new Commuter profile.
func NewCommuter(tz *time.Location) Profile {
	return &Commuter{tz: tz}
}

func (p *Commuter) Name() string {
	return "commuter"
}

func (p *Commuter) Description() string {
	return "Commuters (7-9AM and 5-7PM peaks, weekday focus)"
}

func (p *Commuter) Peak() float64 {
	return 1.0
}

func (p *Commuter) Level(t time.Time) float64 {
	t = t.In(p.tz)
	hour := t.Hour()

	if isWeekend(t) {
		if hour >= 10 && hour < 20 {
			return 0.30
		}
		return 0.05
	}

	switch {
	case hour >= 7 && hour < 9, hour >= 17 && hour < 19:
		return 1.0
	case hour >= 9 && hour < 17:
		return 0.40
	case hour >= 19 && hour < 23:
		return 0.25
	default:
		return 0.05
	}
}

// Global simulates a worldwide audience: evening peaks of the Americas,
// Europe and Asia overlap, so activity never drops below 40%.
type Global struct{}

// NewGlobal creates a new Global profile. Peaks are fixed in UTC.
func NewGlobal(_ *time.Location) Profile {
	return &Global{}
}

func (p *Global) Name() string {
	return "global"
}

func (p *Global) Description() string {
	return "Worldwide audience (24/7 with regional peaks)"
}

func (p *Global) Peak() float64 {
	return 1.0
}

func (p *Global) Level(t time.Time) float64 {
	hour := t.UTC().Hour()

	// Evening hours in UTC: Americas 22-03, Europe 16-21, Asia 08-13
	combined := math.Max(peakContribution(hour, 22, 3),
		math.Max(peakContribution(hour, 16, 21), peakContribution(hour, 8, 13)))

	return 0.40 + 0.60*combined
}

// Flat spreads activity evenly over the day.
type Flat struct{}

// NewFlat creates a new Flat profile.
func NewFlat(_ *time.Location) Profile {
	return &Flat{}
}

func (p *Flat) Name() string {
	return "flat"
}

func (p *Flat) Description() string {
	return "Uniform activity around the clock"
}

func (p *Flat) Peak() float64 {
	return 1.0
}

func (p *Flat) Level(time.Time) float64 {
	return 1.0
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// peakContribution returns 1 inside [start, end) with a two hour ramp on
// either side. Windows may wrap around midnight.
func peakContribution(hour, start, end int) float64 {
	inside := hour >= start && hour < end
	if start > end {
		inside = hour >= start || hour < end
	}
	if inside {
		return 1.0
	}

	switch {
	case hour == (start+23)%24 || hour == end%24:
		return 0.6
	case hour == (start+22)%24 || hour == (end+1)%24:
		return 0.3
	default:
		return 0.0
	}
}
