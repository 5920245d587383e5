package types

import (
	"errors"
	"testing"
	"time"
)

func TestDocInt(t *testing.T) {
	d := Doc{
		"int":    int64(70),
		"float":  float64(80.9),
		"text":   "100",
		"suffix": "15kg",
		"empty":  "",
		"bad":    "heavy",
		"bool":   true,
	}
	cases := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"int", 70, false},
		{"float", 80, false},
		{"text", 100, false},
		{"suffix", 15, false},
		{"empty", 0, false},
		{"missing", 0, false},
		{"bad", 0, true},
		{"bool", 0, true},
	}
	for _, tc := range cases {
		got, err := d.Int(tc.key)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("Int(%q) err = %v, want ErrInvalidDocument", tc.key, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("Int(%q) = %d, %v; want %d", tc.key, got, err, tc.want)
		}
	}
}

func TestDocTime(t *testing.T) {
	ts := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	d := Doc{"native": ts, "millis": ts.UnixMilli(), "bad": "yesterday"}

	for _, key := range []string{"native", "millis"} {
		got, err := d.Time(key)
		if err != nil || !got.Equal(ts) {
			t.Errorf("Time(%q) = %v, %v", key, got, err)
		}
	}
	if _, err := d.Time("bad"); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Time(bad) err = %v", err)
	}
}

func TestDocPoint(t *testing.T) {
	d := Doc{
		"array":    []any{16.0439, 120.3331},
		"mapShort": map[string]any{"lat": 14.5, "lng": int64(121)},
		"mapLong":  map[string]any{"latitude": 1.5, "longitude": 2.5},
		"short":    []any{1.0},
		"text":     "16,120",
	}
	if p, err := d.Point("array"); err != nil || p != (Point{Lat: 16.0439, Lng: 120.3331}) {
		t.Errorf("array = %v, %v", p, err)
	}
	if p, err := d.Point("mapShort"); err != nil || p != (Point{Lat: 14.5, Lng: 121}) {
		t.Errorf("mapShort = %v, %v", p, err)
	}
	if p, err := d.Point("mapLong"); err != nil || p != (Point{Lat: 1.5, Lng: 2.5}) {
		t.Errorf("mapLong = %v, %v", p, err)
	}
	for _, key := range []string{"short", "text"} {
		if _, err := d.Point(key); !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("Point(%q) err = %v", key, err)
		}
	}
}

func TestDocOptionalID(t *testing.T) {
	d := Doc{"set": "driver-1", "empty": "", "null": nil}
	if id, err := d.OptionalID("set"); err != nil || id == nil || *id != "driver-1" {
		t.Errorf("set = %v, %v", id, err)
	}
	for _, key := range []string{"empty", "null", "missing"} {
		if id, err := d.OptionalID(key); err != nil || id != nil {
			t.Errorf("OptionalID(%q) = %v, %v", key, id, err)
		}
	}
}
