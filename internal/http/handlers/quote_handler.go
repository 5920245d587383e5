// README: Fare quotes and reverse geocoding for the driver client.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kargo/internal/modules/pricing"
	"kargo/internal/types"
)

// Geocoder is the reverse-geocoding part of the mapping service.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, p types.Point) (string, error)
}

type QuoteHandler struct {
	pricing  *pricing.Service
	geocoder Geocoder
}

func NewQuoteHandler(pricingSvc *pricing.Service, geocoder Geocoder) *QuoteHandler {
	return &QuoteHandler{pricing: pricingSvc, geocoder: geocoder}
}

// quoteRequest carries either two free-form locations or raw trip measures.
type quoteRequest struct {
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	DurationSeconds *float64 `json:"durationSeconds"`
	DistanceMeters  *float64 `json:"distanceMeters"`
}

type quoteResponse struct {
	Amount float64 `json:"amount"`
	Price  string  `json:"price"`
}

func (h *QuoteHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DurationSeconds != nil || req.DistanceMeters != nil {
		var secs, meters float64
		if req.DurationSeconds != nil {
			secs = *req.DurationSeconds
		}
		if req.DistanceMeters != nil {
			meters = *req.DistanceMeters
		}
		price, err := h.pricing.Quote(secs, meters)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, quoteResponse{Amount: price.Amount, Price: price.String()})
		return
	}
	info, err := h.pricing.RideInfo(c.Request.Context(), req.Origin, req.Destination)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, info)
}

func (h *QuoteHandler) ReverseGeocode(c *gin.Context) {
	p, ok := queryPoint(c)
	if !ok {
		return
	}
	if h.geocoder == nil {
		writeDomainError(c, fmt.Errorf("geocoding: %w", types.ErrNotConfigured))
		return
	}
	addr, err := h.geocoder.ReverseGeocode(c.Request.Context(), p)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"address": addr, "point": p})
}
