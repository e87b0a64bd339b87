//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic song catalog and event log data.
package datagen

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

const idCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// FirstName generates a random first name.
func (f *Faker) FirstName() string {
	return f.faker.FirstName()
}

// LastName generates a random last name.
func (f *Faker) LastName() string {
	return f.faker.LastName()
}

// Gender returns M or F.
func (f *Faker) Gender() string {
	if f.faker.Gender() == "female" {
		return "F"
	}
	return "M"
}

// Location generates a "City, ST" style location.
func (f *Faker) Location() string {
	return f.faker.City() + ", " + f.faker.StateAbr()
}

// UserAgent generates a browser user agent string.
func (f *Faker) UserAgent() string {
	return f.faker.UserAgent()
}

// SongTitle generates a song title.
func (f *Faker) SongTitle() string {
	return f.faker.SongName()
}

// ArtistName generates an artist name.
func (f *Faker) ArtistName() string {
	return f.faker.SongArtist()
}

// Latitude generates a latitude.
func (f *Faker) Latitude() float64 {
	return f.faker.Latitude()
}

// Longitude generates a longitude.
func (f *Faker) Longitude() float64 {
	return f.faker.Longitude()
}

// ID generates an identifier in the style of the catalog: a two letter
// prefix followed by n upper case letters and digits.
func (f *Faker) ID(prefix string, n int) string {
	var b strings.Builder
	b.Grow(len(prefix) + n)
	b.WriteString(prefix)
	for i := 0; i < n; i++ {
		b.WriteByte(idCharset[f.Int(0, len(idCharset)-1)])
	}
	return b.String()
}

// Int generates a random integer in [min, max].
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 in [min, max].
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Unit generates a random float64 in [0, 1).
func (f *Faker) Unit() float64 {
	return f.faker.Float64()
}

// Chance returns true with probability p.
func (f *Faker) Chance(p float64) bool {
	return f.Float64(0, 1) < p
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}
