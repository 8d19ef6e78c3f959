package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are checked by the CORS layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterStreamRoutes serves /api/stream, a websocket that receives the
// current snapshot on connect and then one message per snapshot
func RegisterStreamRoutes(r *gin.Engine, dash Dashboard, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "stream")

	r.GET("/api/stream", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		snaps, cancel := dash.Subscribe()
		defer cancel()

		// reader: handles pongs and notices the client going away
		done := make(chan struct{})
		go func() {
			defer close(done)
			conn.SetReadLimit(512)
			conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(dash.Snapshot()); err != nil {
			return
		}
		log.Debug("stream client connected", "remote", c.ClientIP())

		for {
			select {
			case <-done:
				log.Debug("stream client gone", "remote", c.ClientIP())
				return
			case <-c.Request.Context().Done():
				return
			case snap, ok := <-snaps:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(snap); err != nil {
					log.Debug("stream write failed", "error", err)
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	})
}
