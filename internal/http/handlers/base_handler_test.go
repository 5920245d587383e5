package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"kargo/internal/maps"
	"kargo/internal/modules/booking"
	"kargo/internal/modules/income"
	"kargo/internal/modules/profile"
	"kargo/internal/types"
)

func TestWriteDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("quote: %w", types.ErrInvalidInput), http.StatusBadRequest},
		{types.ErrPermission, http.StatusForbidden},
		{fmt.Errorf("pickup: %w", booking.ErrNotAssigned), http.StatusForbidden},
		{booking.ErrNotFound, http.StatusNotFound},
		{profile.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("upload: %w", &http.MaxBytesError{Limit: 5}), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("directions: %w", types.ErrNotConfigured), http.StatusServiceUnavailable},
		{booking.ErrAlreadyClaimed, http.StatusConflict},
		{fmt.Errorf("claimed -> dropped_off: %w", booking.ErrInvalidState), http.StatusConflict},
		{income.ErrPriceParse, http.StatusUnprocessableEntity},
		{maps.ErrMalformedEncoding, http.StatusUnprocessableEntity},
		{types.ErrInvalidDocument, http.StatusUnprocessableEntity},
		{types.Network("firestore get", errors.New("unavailable")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeDomainError(c, tt.err)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"b1", true},
		{"Xk2_9-aZ", true},
		{"bad id", false},
		{"../etc", false},
	}
	for _, tt := range tests {
		if got := isValidID(tt.in); got != tt.want {
			t.Errorf("isValidID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
