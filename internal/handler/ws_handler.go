package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizdesk/testplayer/internal/service"
)

// CountdownFrame is the 1 Hz push sent over the attempt stream. The terminal
// frame carries terminal=true and is the last one written before the close.
type CountdownFrame struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	Attempted        int  `json:"attempted"`
	Terminal         bool `json:"terminal"`
}

// WSHandler streams attempt countdown state over WebSocket, so clients render
// the clock without polling the REST state endpoint every second.
type WSHandler struct {
	attempts *service.AttemptService
	upgrader websocket.Upgrader
	log      zerolog.Logger

	// pushInterval matches the countdown tick; tests shrink it.
	pushInterval time.Duration
}

// NewWSHandler creates a WSHandler restricted to the allowed origins.
// An empty origin list allows same-host connections only.
func NewWSHandler(attempts *service.AttemptService, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		attempts:     attempts,
		upgrader:     buildUpgrader(allowedOrigins),
		log:          log.With().Str("component", "ws_handler").Logger(),
		pushInterval: time.Second,
	}
}

// Stream godoc
// GET /ws/v1/attempts/:test_id/stream?token=...
// Pushes one CountdownFrame per second until the attempt turns terminal or
// disappears, then closes.
func (h *WSHandler) Stream(c *gin.Context) {
	testID, ok := parseTestID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// Drain the read side so client close frames surface promptly.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	for {
		state, err := h.attempts.State(testID)
		if err != nil {
			// Attempt reaped or never existed; nothing left to stream.
			h.writeClose(conn, websocket.CloseNormalClosure, "attempt gone")
			return
		}

		frame := CountdownFrame{
			RemainingSeconds: state.Remaining,
			Attempted:        state.Attempted,
			Terminal:         state.Terminal,
		}
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
		if frame.Terminal {
			h.writeClose(conn, websocket.CloseNormalClosure, "attempt completed")
			return
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (h *WSHandler) writeClose(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			if u.Host == r.Host {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}
