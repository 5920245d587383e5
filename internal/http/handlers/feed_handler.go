// README: Feed handlers: one-shot eligible feed and a websocket stream of feed snapshots.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"kargo/internal/modules/booking"
	"kargo/internal/modules/feed"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingEvery    = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Mobile clients do not send a browser Origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

type FeedHandler struct {
	feed   *feed.Service
	logger *slog.Logger
}

func NewFeedHandler(feedSvc *feed.Service, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{feed: feedSvc, logger: logger}
}

func (h *FeedHandler) List(c *gin.Context) {
	list, err := h.feed.Feed(c.Request.Context(), callerID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": nonNil(list)})
}

type feedMessage struct {
	Type     string            `json:"type"`
	Bookings []booking.Booking `json:"bookings"`
}

// Stream upgrades to a websocket and pushes {"type":"feed","bookings":[...]} whenever the
// driver's feed may have changed. The stream ends when the client goes away.
func (h *FeedHandler) Stream(c *gin.Context) {
	driverID := callerID(c)
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before upgrading so profile and store errors still get a JSON status.
	snapshots, err := h.feed.Stream(ctx, driverID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "driver_id", driverID, "error", err)
		return
	}
	defer conn.Close()
	h.logger.Info("feed stream connected", "driver_id", driverID)

	var writeMu sync.Mutex
	write := func(fn func() error) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return fn()
	}

	// Reader: only control frames are expected; any read error means the client left.
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn("feed stream closed unexpectedly", "driver_id", driverID, "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case list, ok := <-snapshots:
			if !ok {
				_ = write(func() error {
					return conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"))
				})
				h.logger.Info("feed stream ended", "driver_id", driverID)
				return
			}
			msg := feedMessage{Type: "feed", Bookings: nonNil(list)}
			if err := write(func() error { return conn.WriteJSON(msg) }); err != nil {
				h.logger.Warn("feed stream write failed", "driver_id", driverID, "error", err)
				return
			}
		case <-ticker.C:
			err := write(func() error {
				return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
			})
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
