package fixtures

import (
	"reflect"
	"testing"
	"time"
)

func TestFixtureJSONTags(t *testing.T) {
	type fieldCheck struct {
		name string
		tag  string
	}

	fixtureType := reflect.TypeOf(Fixture{})
	fields := []fieldCheck{
		{"ID", "id"},
		{"Provider", "provider"},
		{"Kickoff", "kickoff"},
		{"Status", "status"},
		{"League", "league"},
		{"Home", "home"},
		{"Away", "away"},
		{"Score", "score"},
		{"UpdatedAt", "updatedAt,omitempty"},
	}

	for _, fc := range fields {
		field, ok := fixtureType.FieldByName(fc.name)
		if !ok {
			t.Fatalf("missing field %s", fc.name)
		}
		if jsonTag := field.Tag.Get("json"); jsonTag != fc.tag {
			t.Fatalf("field %s expected json tag %s, got %s", fc.name, fc.tag, jsonTag)
		}
	}
}

func TestLocalDateUsesLocation(t *testing.T) {
	f := Fixture{Kickoff: time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)}
	if got := f.LocalDate(nil); got != "2025-06-15" {
		t.Fatalf("expected 2025-06-15, got %s", got)
	}
	tokyo := time.FixedZone("JST", 9*3600)
	if got := f.LocalDate(tokyo); got != "2025-06-16" {
		t.Fatalf("expected 2025-06-16, got %s", got)
	}
}

func TestIntPtr(t *testing.T) {
	p := IntPtr(3)
	if p == nil || *p != 3 {
		t.Fatalf("expected pointer to 3, got %v", p)
	}
}
