//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// PageNextSong is the page value of a song play event.
const PageNextSong = "NextSong"

// EventRecord is one action from the listening activity log.
type EventRecord struct {
	Page          *string  `json:"page"`
	Ts            *int64   `json:"ts"`
	UserID        Text     `json:"userId"`
	FirstName     *string  `json:"firstName"`
	LastName      *string  `json:"lastName"`
	Gender        *string  `json:"gender"`
	Level         *string  `json:"level"`
	SessionID     *int64   `json:"sessionId"`
	UserAgent     *string  `json:"userAgent"`
	Artist        *string  `json:"artist"`
	Song          *string  `json:"song"`
	Auth          *string  `json:"auth"`
	Location      *string  `json:"location"`
	ItemInSession *int64   `json:"itemInSession"`
	Length        *float64 `json:"length"`

	Seq int `json:"-"`
}

// SetSeq implements Sequenced.
func (r *EventRecord) SetSeq(seq int) { r.Seq = seq }

// IsPlay reports whether the event is a song play.
func (r *EventRecord) IsPlay() bool {
	return r.Page != nil && *r.Page == PageNextSong
}

// Validate reports events that cannot be placed in time.
func (r *EventRecord) Validate() error {
	if r.Ts == nil {
		return fmt.Errorf("%w: event %d has no ts", ErrMalformedRecord, r.Seq)
	}
	return nil
}

// Text is a JSON scalar read as text. Log producers emit some identifiers
// as strings and others as numbers; numbers keep their literal form. Null
// and the empty string are both invalid.
type Text struct {
	Value string
	Valid bool
}

// NewText returns a valid Text.
func NewText(s string) Text {
	return Text{Value: s, Valid: s != ""}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NewText(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = NewText(n.String())
		return nil
	default:
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(t.Value)}
	}
}

// MarshalJSON implements json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Ptr returns the value as a nullable string.
func (t Text) Ptr() *string {
	if !t.Valid {
		return nil
	}
	v := t.Value
	return &v
}
