//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package activity implements listening activity profiles used to spread
// generated events over the day.
package activity

import (
	"fmt"
	"sort"
	"time"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "evening"

// Profile describes how listening activity varies over time.
type Profile interface {
	// Name returns the profile name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Level returns the relative activity at t, between 0 and Peak().
	Level(t time.Time) float64

	// Peak returns the highest level the profile can return.
	Peak() float64
}

var registry = make(map[string]func(tz *time.Location) Profile)

// Register adds a profile constructor to the registry.
func Register(name string, constructor func(tz *time.Location) Profile) {
	registry[name] = constructor
}

// Get retrieves a profile by name with the specified timezone. An empty
// timezone means UTC, matching the timestamps of the event log.
func Get(name, timezone string) (Profile, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}

	loc := time.UTC
	if timezone != "" && timezone != "UTC" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
	}

	return constructor(loc), nil
}

// List returns all registered profile names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample picks a millisecond offset within the day starting at day,
// distributed according to p. rnd must return uniform values in [0, 1).
func Sample(p Profile, day time.Time, rnd func() float64) int64 {
	const dayMillis = 24 * 60 * 60 * 1000
	peak := p.Peak()
	for i := 0; i < 1000; i++ {
		off := int64(rnd() * dayMillis)
		if rnd()*peak <= p.Level(day.Add(time.Duration(off)*time.Millisecond)) {
			return off
		}
	}
	return int64(rnd() * dayMillis)
}

func init() {
	Register("evening", NewEvening)
	Register("commuter", NewCommuter)
	Register("global", NewGlobal)
	Register("flat", NewFlat)
}
