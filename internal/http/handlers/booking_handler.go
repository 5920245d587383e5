// README: Booking handlers: driver lists, lifecycle transitions and routes.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kargo/internal/maps"
	"kargo/internal/modules/booking"
	"kargo/internal/types"
)

// Router is the directions part of the mapping service.
type Router interface {
	Directions(ctx context.Context, origin, destination types.Point) (maps.Route, error)
}

type BookingHandler struct {
	bookings *booking.Service
	router   Router
}

func NewBookingHandler(bookings *booking.Service, router Router) *BookingHandler {
	return &BookingHandler{bookings: bookings, router: router}
}

func (h *BookingHandler) Mine(c *gin.Context) {
	list, err := h.bookings.Mine(c.Request.Context(), callerID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": nonNil(list)})
}

func (h *BookingHandler) Current(c *gin.Context) {
	b, err := h.bookings.Current(c.Request.Context(), callerID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

// Get returns a booking the caller may see: an open one or one assigned to them.
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if b.State() != booking.StateUnclaimed && !b.AssignedTo(callerID(c)) {
		writeDomainError(c, fmt.Errorf("booking %s: %w", id, types.ErrPermission))
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Claim(c *gin.Context) {
	h.transition(c, h.bookings.Claim)
}

func (h *BookingHandler) Pickup(c *gin.Context) {
	h.transition(c, h.bookings.ConfirmPickup)
}

func (h *BookingHandler) Dropoff(c *gin.Context) {
	h.transition(c, h.bookings.ConfirmDropoff)
}

func (h *BookingHandler) transition(c *gin.Context, fn func(context.Context, types.ID, types.ID) (*booking.Booking, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := fn(c.Request.Context(), id, callerID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"booking": b, "state": b.State()})
}

type routeResponse struct {
	Destination types.Point   `json:"destination"`
	DistanceKm  float64       `json:"distanceKm"`
	Polyline    string        `json:"polyline"`
	Path        []maps.LatLng `json:"path"`
}

// Route returns driving directions from the driver's position (?lat=&lng=) to the
// booking's next stop.
func (h *BookingHandler) Route(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	origin, ok := queryPoint(c)
	if !ok {
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if !b.AssignedTo(callerID(c)) {
		writeDomainError(c, fmt.Errorf("booking %s: %w", id, booking.ErrNotAssigned))
		return
	}
	dest := booking.RouteDestination(b)
	if h.router == nil {
		writeDomainError(c, fmt.Errorf("directions: %w", types.ErrNotConfigured))
		return
	}
	resp := routeResponse{Destination: dest, DistanceKm: maps.DistanceKm(origin, dest)}
	route, err := h.router.Directions(c.Request.Context(), origin, dest)
	switch {
	case errors.Is(err, maps.ErrNoRoute):
		resp.Path = maps.StraightPath(origin, dest)
	case err != nil:
		writeDomainError(c, err)
		return
	default:
		resp.Polyline, resp.Path = route.Encoded, route.Path
	}
	writeJSON(c, http.StatusOK, resp)
}

func nonNil(list []booking.Booking) []booking.Booking {
	if list == nil {
		return []booking.Booking{}
	}
	return list
}
