package maps

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformedEncoding is returned when an encoded polyline ends mid-value or
// contains characters outside the polyline alphabet.
var ErrMalformedEncoding = errors.New("malformed polyline encoding")

const polylinePrecision = 1e5

// LatLng is a decoded route vertex.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Decode reconstructs the coordinate sequence of an encoded polyline by
// accumulating zig-zag varint deltas in order. An empty string decodes to an
// empty, non-nil slice.
func Decode(encoded string) ([]LatLng, error) {
	path := make([]LatLng, 0, len(encoded)/4)
	var lat, lng int64
	for i := 0; i < len(encoded); {
		dlat, next, err := decodeValue(encoded, i)
		if err != nil {
			return nil, err
		}
		dlng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next
		lat += dlat
		lng += dlng
		path = append(path, LatLng{
			Latitude:  float64(lat) / polylinePrecision,
			Longitude: float64(lng) / polylinePrecision,
		})
	}
	return path, nil
}

// decodeValue reads one signed value starting at offset i and returns it with
// the offset of the following chunk.
func decodeValue(s string, i int) (int64, int, error) {
	var result int64
	var shift uint
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("%w: truncated value at offset %d", ErrMalformedEncoding, i)
		}
		c := s[i]
		if c < 63 || c > 126 {
			return 0, i, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedEncoding, c, i)
		}
		if shift > 60 {
			return 0, i, fmt.Errorf("%w: value overflow at offset %d", ErrMalformedEncoding, i)
		}
		b := int64(c) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// Encode is the inverse of Decode at 1e5 precision.
func Encode(path []LatLng) string {
	var b strings.Builder
	var prevLat, prevLng int64
	for _, p := range path {
		lat := int64(math.Round(p.Latitude * polylinePrecision))
		lng := int64(math.Round(p.Longitude * polylinePrecision))
		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}

func encodeValue(b *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		b.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	b.WriteByte(byte(u + 63))
}
