// README: Shared identifiers and coordinates.
package types

// ID is an opaque document identifier (Firestore document id, auth uid).
type ID string

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
