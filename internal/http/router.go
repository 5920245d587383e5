// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kargo/internal/http/handlers"
	"kargo/internal/http/middleware"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger), middleware.Logging(deps.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier), middleware.Timeout(deps.RequestTimeout))

	feedHandler := handlers.NewFeedHandler(deps.Feed, deps.Logger)
	api.GET("/bookings/feed", feedHandler.List)
	api.GET("/bookings/feed/stream", feedHandler.Stream)

	bookingHandler := handlers.NewBookingHandler(deps.Bookings, deps.Maps)
	api.GET("/bookings/mine", bookingHandler.Mine)
	api.GET("/bookings/current", bookingHandler.Current)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/claim", bookingHandler.Claim)
	api.POST("/bookings/:id/pickup", bookingHandler.Pickup)
	api.POST("/bookings/:id/dropoff", bookingHandler.Dropoff)
	api.GET("/bookings/:id/route", bookingHandler.Route)

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing, deps.Maps)
	api.POST("/quotes", quoteHandler.Quote)
	api.GET("/geocode/reverse", quoteHandler.ReverseGeocode)

	incomeHandler := handlers.NewIncomeHandler(deps.Income)
	api.GET("/income", incomeHandler.Report)

	profileHandler := handlers.NewProfileHandler(deps.Profiles)
	api.GET("/drivers/me", profileHandler.Me)
	api.PUT("/drivers/me", profileHandler.UpdateMe)
	api.PUT("/drivers/me/picture", profileHandler.UploadPicture)
	api.GET("/riders/:id", profileHandler.Rider)

	return r
}
