package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/arena/internal/domain"
)

// maxWSPayload bounds a single WebSocket frame.
const maxWSPayload = 4 * 1024 * 1024

// wsConn serializes writes to one WebSocket connection. gorilla/websocket
// allows only one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return c.conn.WriteJSON(v)
}

// handleWebSocket upgrades the connection and serves chat frames on it.
// Each frame is a chatRequest; the server acknowledges it, runs the
// loop, and sends the result as a chatResponse frame. The connection ID
// scopes the default session, so a reconnecting client starts fresh
// unless it names its own chatId.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxWSPayload)
	connID := uuid.New().String()
	wc := &wsConn{conn: conn}

	s.log.Debug().Str("connId", connID).Str("remote", r.RemoteAddr).Msg("websocket connected")

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("connId", connID).Msg("websocket closed")
			} else {
				s.log.Warn().Err(err).Str("connId", connID).Msg("websocket read error")
			}
			return
		}

		if req.Message == "" {
			wc.writeJSON(map[string]string{
				"id":    req.ID,
				"type":  "error",
				"error": "message is required",
			})
			continue
		}

		wc.writeJSON(map[string]string{"id": req.ID, "type": "ack"})

		key := domain.SessionKey{Surface: "gateway", ChatID: req.ChatID}
		if key.ChatID == "" {
			key.ClientID = connID
			key.ChatID = "ws"
		}

		ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
		result, err := s.loop.Run(ctx, key, domain.Input{Text: req.Message})
		cancel()

		if err != nil {
			s.log.Error().Err(err).Str("connId", connID).Msg("websocket chat failed")
			wc.writeJSON(map[string]string{
				"id":    req.ID,
				"type":  "error",
				"error": err.Error(),
			})
			continue
		}

		resp := chatResponseFrom(result)
		resp.ID = req.ID
		resp.Type = "response"
		if err := wc.writeJSON(resp); err != nil {
			s.log.Warn().Err(err).Str("connId", connID).Msg("websocket write failed")
			return
		}
	}
}
