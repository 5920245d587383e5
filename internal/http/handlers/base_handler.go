// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kargo/internal/http/middleware"
	"kargo/internal/maps"
	"kargo/internal/modules/booking"
	"kargo/internal/modules/income"
	"kargo/internal/modules/profile"
	"kargo/internal/types"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// isValidID accepts Firestore-style document ids and auth uids.
func isValidID(v string) bool {
	if v == "" || len(v) > 128 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinel errors onto HTTP statuses.
func writeDomainError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrPermission), errors.Is(err, booking.ErrNotAssigned):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, profile.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrAlreadyClaimed), errors.Is(err, booking.ErrInvalidState):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, income.ErrPriceParse), errors.Is(err, maps.ErrMalformedEncoding),
		errors.Is(err, types.ErrInvalidDocument):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, new(*http.MaxBytesError)):
		writeError(c, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, types.ErrNotConfigured):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, types.ErrNetwork):
		writeJSON(c, http.StatusBadGateway, errorResponse{Error: "upstream unavailable", Retryable: true})
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// callerID returns the authenticated driver uid; Auth guarantees it is set.
func callerID(c *gin.Context) types.ID {
	return types.ID(middleware.CallerUID(c))
}

// pathID reads and validates a path parameter, writing 400 when it is unusable.
func pathID(c *gin.Context, name string) (types.ID, bool) {
	id := c.Param(name)
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return types.ID(id), true
}

// queryPoint parses ?lat=&lng= query parameters.
func queryPoint(c *gin.Context) (types.Point, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeError(c, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
