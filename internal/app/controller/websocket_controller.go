package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
	ws "github.com/rhinoeg/rhino-backend/internal/websocket"
)

// WebSocketController upgrades authenticated requests to the order event feed
type WebSocketController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketController accepts handshakes from allowedOrigins; "*" allows
// any origin and requests without an Origin header are always accepted.
func NewWebSocketController(hub *ws.Hub, allowedOrigins []string) *WebSocketController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WebSocketController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// OrderEvents streams the user's order events
// GET /api/v1/ws/orders
func (ctrl *WebSocketController) OrderEvents(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
