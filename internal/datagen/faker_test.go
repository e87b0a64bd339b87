//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"strings"
	"testing"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.ID("TR", 16)
		v2 := f2.ID("TR", 16)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %s != %s", v1, v2)
		}
	}
}

func TestFakerNames(t *testing.T) {
	f := NewFaker()
	if f.FirstName() == "" {
		t.Error("FirstName returned empty string")
	}
	if f.LastName() == "" {
		t.Error("LastName returned empty string")
	}
	if f.SongTitle() == "" {
		t.Error("SongTitle returned empty string")
	}
	if f.ArtistName() == "" {
		t.Error("ArtistName returned empty string")
	}
	if f.UserAgent() == "" {
		t.Error("UserAgent returned empty string")
	}
}

func TestFakerGender(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 50; i++ {
		g := f.Gender()
		if g != "M" && g != "F" {
			t.Fatalf("Gender returned %q, expected M or F", g)
		}
	}
}

func TestFakerLocation(t *testing.T) {
	f := NewFaker()
	loc := f.Location()
	parts := strings.Split(loc, ", ")
	if len(parts) != 2 || len(parts[1]) != 2 {
		t.Errorf("Location should look like 'City, ST', got %q", loc)
	}
}

func TestFakerCoordinates(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 50; i++ {
		if lat := f.Latitude(); lat < -90 || lat > 90 {
			t.Errorf("Latitude out of range: %f", lat)
		}
		if lon := f.Longitude(); lon < -180 || lon > 180 {
			t.Errorf("Longitude out of range: %f", lon)
		}
	}
}

func TestFakerID(t *testing.T) {
	f := NewFaker()
	id := f.ID("SO", 16)
	if len(id) != 18 {
		t.Errorf("Expected length 18, got %d (%s)", len(id), id)
	}
	if !strings.HasPrefix(id, "SO") {
		t.Errorf("Expected prefix SO, got %s", id)
	}
	for _, c := range id[2:] {
		if !strings.ContainsRune(idCharset, c) {
			t.Errorf("Unexpected character %q in %s", c, id)
		}
	}
}

func TestFakerInt(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Int(10, 20)
		if v < 10 || v > 20 {
			t.Errorf("Int out of range: %d", v)
		}
	}
}

func TestFakerFloat64(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Float64(120.0, 400.0)
		if v < 120.0 || v > 400.0 {
			t.Errorf("Float64 out of range: %f", v)
		}
	}
}

func TestFakerUnit(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Unit()
		if v < 0 || v >= 1 {
			t.Errorf("Unit() = %f, expected value in [0, 1)", v)
		}
	}
}

func TestFakerChance(t *testing.T) {
	f := NewFakerWithSeed(7)
	for i := 0; i < 20; i++ {
		if f.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !f.Chance(1.01) {
			t.Fatal("Chance(1.01) returned false")
		}
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 100; i++ {
		chosen := Choose(f, items)
		found := false
		for _, item := range items {
			if item == chosen {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in slice: %s", chosen)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string

	chosen := Choose(f, items)
	if chosen != "" {
		t.Errorf("Choose on empty slice should return zero value, got: %s", chosen)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}
	weights := []int{1, 2, 7} // c should be chosen ~70% of the time

	counts := make(map[string]int)
	iterations := 1000

	for i := 0; i < iterations; i++ {
		chosen := ChooseWeighted(f, items, weights)
		counts[chosen]++
	}

	// c should be most common
	if counts["c"] < counts["a"] || counts["c"] < counts["b"] {
		t.Errorf("Weighted choice distribution unexpected: %v", counts)
	}
}

func TestChooseWeightedEmpty(t *testing.T) {
	f := NewFaker()
	var items []string
	var weights []int

	chosen := ChooseWeighted(f, items, weights)
	if chosen != "" {
		t.Errorf("ChooseWeighted on empty slices should return zero value, got: %s", chosen)
	}
}

func BenchmarkFakerID(b *testing.B) {
	f := NewFaker()
	for i := 0; i < b.N; i++ {
		_ = f.ID("TR", 16)
	}
}

func BenchmarkChooseWeighted(b *testing.B) {
	f := NewFaker()
	items := []string{"NextSong", "Home", "Logout"}
	weights := []int{80, 15, 5}
	for i := 0; i < b.N; i++ {
		_ = ChooseWeighted(f, items, weights)
	}
}
