package types

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Doc is an untyped stored document (Firestore Data()) read field by field.
// Every accessor treats a missing or null field as the zero value and reports
// ErrInvalidDocument for a value of the wrong shape.
type Doc map[string]any

func (d Doc) String(key string) (string, error) {
	switch v := d[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", d.invalid(key, v)
	}
}

func (d Doc) Bool(key string) (bool, error) {
	switch v := d[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, d.invalid(key, v)
	}
}

// Int accepts integers, floats (truncated) and numeric strings with leading-integer
// semantics, since form input was historically saved as text ("70", "80kg").
func (d Doc) Int(key string) (int, error) {
	switch v := d[key].(type) {
	case nil:
		return 0, nil
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, d.invalid(key, v)
		}
		return int(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		n, ok := LeadingInt(v)
		if !ok {
			return 0, d.invalid(key, v)
		}
		return int(n), nil
	default:
		return 0, d.invalid(key, v)
	}
}

// Time accepts a native timestamp or epoch milliseconds.
func (d Doc) Time(key string) (time.Time, error) {
	switch v := d[key].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case int64:
		return time.UnixMilli(v), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	default:
		return time.Time{}, d.invalid(key, v)
	}
}

// Point accepts a [lat, lng] array or a {lat, lng} / {latitude, longitude} map.
func (d Doc) Point(key string) (Point, error) {
	switch v := d[key].(type) {
	case nil:
		return Point{}, nil
	case []any:
		if len(v) != 2 {
			return Point{}, d.invalid(key, v)
		}
		lat, ok1 := toFloat(v[0])
		lng, ok2 := toFloat(v[1])
		if !ok1 || !ok2 {
			return Point{}, d.invalid(key, v)
		}
		return Point{Lat: lat, Lng: lng}, nil
	case map[string]any:
		for _, names := range [][2]string{{"lat", "lng"}, {"latitude", "longitude"}} {
			lat, ok1 := toFloat(v[names[0]])
			lng, ok2 := toFloat(v[names[1]])
			if ok1 && ok2 {
				return Point{Lat: lat, Lng: lng}, nil
			}
		}
		return Point{}, d.invalid(key, v)
	default:
		return Point{}, d.invalid(key, v)
	}
}

// OptionalID returns nil for a missing, null or empty id.
func (d Doc) OptionalID(key string) (*ID, error) {
	s, err := d.String(key)
	if err != nil || s == "" {
		return nil, err
	}
	id := ID(s)
	return &id, nil
}

func (d Doc) invalid(key string, v any) error {
	return fmt.Errorf("%w: field %q has unexpected value %v (%T)", ErrInvalidDocument, key, v, v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
