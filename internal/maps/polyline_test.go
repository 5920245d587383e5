package maps

import (
	"errors"
	"math"
	"testing"

	gmaps "googlemaps.github.io/maps"
)

func TestDecode_KnownPolyline(t *testing.T) {
	// Reference example from the polyline algorithm documentation.
	got, err := Decode("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []LatLng{
		{38.5, -120.2},
		{40.7, -120.95},
		{43.252, -126.453},
	}
	assertPath(t, got, want)
}

func TestDecode_Empty(t *testing.T) {
	got, err := Decode("")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil path, got %#v", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"truncated continuation chunk", "_p~iF~ps|"},
		{"missing longitude", "_p~iF"},
		{"character below alphabet", "_p~iF ps|U"},
		{"endless continuation", "~~~~~~~~~~~~~~~"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.in)
			if !errors.Is(err, ErrMalformedEncoding) {
				t.Fatalf("Decode(%q) err = %v, want ErrMalformedEncoding", tc.in, err)
			}
		})
	}
}

// TestDecode_RoundTripWithReferenceEncoder checks decode(encode(seq)) == seq where the
// encoding is produced by the Google Maps client library.
func TestDecode_RoundTripWithReferenceEncoder(t *testing.T) {
	seqs := [][]gmaps.LatLng{
		{{Lat: 16.0439, Lng: 120.3331}},
		{{Lat: 14.5995, Lng: 120.9842}, {Lat: 14.6091, Lng: 121.0223}, {Lat: 14.5547, Lng: 121.0244}},
		{{Lat: -33.8688, Lng: 151.2093}, {Lat: 0, Lng: 0}, {Lat: 89.99999, Lng: -179.99999}},
	}
	for _, seq := range seqs {
		encoded := gmaps.Encode(seq)
		got, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q): %v", encoded, err)
		}
		want := make([]LatLng, len(seq))
		for i, p := range seq {
			want[i] = LatLng{Latitude: p.Lat, Longitude: p.Lng}
		}
		assertPath(t, got, want)
	}
}

func TestEncode_MatchesReferenceEncoder(t *testing.T) {
	path := []LatLng{{38.5, -120.2}, {40.7, -120.95}, {43.252, -126.453}}
	if got := Encode(path); got != "_p~iF~ps|U_ulLnnqC_mqNvxq`@" {
		t.Fatalf("Encode = %q", got)
	}
	back, err := Decode(Encode(path))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertPath(t, back, path)
}

func assertPath(t *testing.T, got, want []LatLng) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if math.Abs(got[i].Latitude-want[i].Latitude) > 1e-6 || math.Abs(got[i].Longitude-want[i].Longitude) > 1e-6 {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}
