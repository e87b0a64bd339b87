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
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// KeyMatch selects how (artist, title) pairs are compared.
type KeyMatch string

const (
	// MatchNormalized compares NFC-normalized, trimmed, whitespace-collapsed
	// and case-folded values.
	MatchNormalized KeyMatch = "normalized"
	// MatchExact compares the raw byte values.
	MatchExact KeyMatch = "exact"
)

// ParseKeyMatch validates a key match name.
func ParseKeyMatch(s string) (KeyMatch, error) {
	switch KeyMatch(s) {
	case MatchNormalized, MatchExact:
		return KeyMatch(s), nil
	default:
		return "", fmt.Errorf("unknown key match %q (valid: normalized, exact)", s)
	}
}

// songKey is the correlation key between an event and a catalog record.
type songKey struct {
	artist string
	title  string
}

// keyFunc builds a songKey from nullable parts. Missing parts never match.
type keyFunc func(artist, title *string) (songKey, bool)

func newKeyFunc(m KeyMatch) keyFunc {
	normalize := func(s string) string { return s }
	if m != MatchExact {
		folder := cases.Fold()
		normalize = func(s string) string {
			return NormalizeKey(folder, s)
		}
	}
	return func(artist, title *string) (songKey, bool) {
		if artist == nil || title == nil {
			return songKey{}, false
		}
		k := songKey{artist: normalize(*artist), title: normalize(*title)}
		if k.artist == "" || k.title == "" {
			return songKey{}, false
		}
		return k, true
	}
}

// NormalizeKey canonicalizes a join key value: Unicode NFC, surrounding
// whitespace removed, inner whitespace runs collapsed to one space, and
// full case folding.
func NormalizeKey(folder cases.Caser, s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return folder.String(s)
}
