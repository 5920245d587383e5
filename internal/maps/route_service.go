package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"kargo/internal/types"
)

// ErrNoRoute is returned when the mapping service has no element or route for the request.
var ErrNoRoute = errors.New("no route found")

// TravelEstimate is one distance-matrix element.
type TravelEstimate struct {
	DurationSeconds float64
	DistanceMeters  float64
	DurationText    string
	DistanceText    string
}

// Route is a driving route decoded from the overview polyline.
type Route struct {
	Encoded string
	Path    []LatLng
}

// mapsClient is the subset of *maps.Client used here; tests substitute a fake.
type mapsClient interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client mapsClient
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// DistanceMatrix returns driving duration and distance between two free-form locations
// (addresses or "lat,lng"). It returns ErrNoRoute when the matrix has no usable element.
func (s *RouteService) DistanceMatrix(ctx context.Context, origin, destination string) (TravelEstimate, error) {
	resp, err := s.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return TravelEstimate{}, types.Network("maps distance matrix", err)
	}
	if resp == nil || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return TravelEstimate{}, ErrNoRoute
	}
	el := resp.Rows[0].Elements[0]
	if el == nil || (el.Status != "" && el.Status != "OK") {
		return TravelEstimate{}, ErrNoRoute
	}
	return TravelEstimate{
		DurationSeconds: el.Duration.Seconds(),
		DistanceMeters:  float64(el.Distance.Meters),
		DurationText:    humanDuration(el.Duration),
		DistanceText:    el.Distance.HumanReadable,
	}, nil
}

// Directions fetches the driving route between two points and decodes its overview polyline.
func (s *RouteService) Directions(ctx context.Context, origin, destination types.Point) (Route, error) {
	routes, _, err := s.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      FormatPoint(origin),
		Destination: FormatPoint(destination),
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		return Route{}, types.Network("maps directions", err)
	}
	if len(routes) == 0 {
		return Route{}, ErrNoRoute
	}
	encoded := routes[0].OverviewPolyline.Points
	path, err := Decode(encoded)
	if err != nil {
		return Route{}, err
	}
	return Route{Encoded: encoded, Path: path}, nil
}

// ReverseGeocode returns the first formatted address for a point, or "" when none matches.
func (s *RouteService) ReverseGeocode(ctx context.Context, p types.Point) (string, error) {
	results, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return "", types.Network("maps reverse geocode", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}

// FormatPoint renders a point the way the Maps web services accept it: "lat,lng".
func FormatPoint(p types.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// humanDuration mirrors the distance matrix "text" field ("1 min", "25 mins", "1 hour 5 mins"),
// which the Go client drops when it parses durations.
func humanDuration(d time.Duration) string {
	mins := int((d + 30*time.Second) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	hours, mins := mins/60, mins%60
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case hours == 0:
		return plural(mins, "min")
	case mins == 0:
		return plural(hours, "hour")
	default:
		return plural(hours, "hour") + " " + plural(mins, "min")
	}
}
