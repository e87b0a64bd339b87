//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package transform

import (
	"time"

	"github.com/pgEdge/pgedge-etl/internal/dataset"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

// StartTime converts an epoch milliseconds timestamp to a UTC time with
// whole-second precision. Fractional seconds are truncated.
func StartTime(tsMillis int64) time.Time {
	return time.Unix(tsMillis/1000, 0).UTC()
}

// Weekday returns the ISO 8601 day number, 1 for Monday through 7 for
// Sunday.
func Weekday(t time.Time) int32 {
	wd := t.Weekday()
	if wd == time.Sunday {
		return 7
	}
	return int32(wd)
}

// TimeRowFor derives the calendar attributes of one timestamp.
func TimeRowFor(tsMillis int64) model.TimeRow {
	st := StartTime(tsMillis)
	_, week := st.ISOWeek()
	return model.TimeRow{
		StartTime: st,
		Hour:      int32(st.Hour()),
		Day:       int32(st.Day()),
		Week:      int32(week),
		Month:     int32(st.Month()),
		Year:      int32(st.Year()),
		Weekday:   Weekday(st),
	}
}

// DeriveTime builds the time dimension with one row per distinct
// start_time of the given play events.
func DeriveTime(plays *dataset.Table[model.EventRecord]) *dataset.Table[model.TimeRow] {
	derived := dataset.Project(plays, model.TableTime, func(e model.EventRecord) (model.TimeRow, bool) {
		if e.Ts == nil {
			return model.TimeRow{}, false
		}
		return TimeRowFor(*e.Ts), true
	})
	return dataset.DedupeBy(derived, func(r model.TimeRow) int64 {
		return r.StartTime.Unix()
	}, dataset.KeepFirst[model.TimeRow])
}
