package transform

import (
	"github.com/pgEdge/pgedge-etl/internal/dataset"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

// FilterPlays keeps song play events that carry a timestamp. It is the
// precondition of ExtractUsers, DeriveTime and Songplays.
func FilterPlays(events *dataset.Table[model.EventRecord]) *dataset.Table[model.EventRecord] {
	return dataset.Filter(events, func(e model.EventRecord) bool {
		return e.IsPlay() && e.Validate() == nil
	})
}

// ExtractUsers builds the users dimension from play events. A user's
// attributes, level included, come from their most recent play.
func ExtractUsers(plays *dataset.Table[model.EventRecord]) *dataset.Table[model.UserRow] {
	withKey := dataset.Filter(plays, func(e model.EventRecord) bool {
		return e.UserID.Valid
	})
	latest := dataset.DedupeBy(withKey, func(e model.EventRecord) string {
		return e.UserID.Value
	}, newerEvent)

	return dataset.Project(latest, model.TableUsers, func(e model.EventRecord) (model.UserRow, bool) {
		return model.UserRow{
			UserID:    e.UserID.Value,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Gender:    e.Gender,
			Level:     e.Level,
		}, true
	})
}

func newerEvent(candidate, current model.EventRecord) bool {
	ct, cur := tsOf(candidate), tsOf(current)
	if ct != cur {
		return ct > cur
	}
	return candidate.Seq > current.Seq
}

func tsOf(e model.EventRecord) int64 {
	if e.Ts == nil {
		return 0
	}
	return *e.Ts
}
