package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveMessage is a command sent by a WebSocket client.
type LiveMessage struct {
	Action  string `json:"action"` // "set", "mode", "reset", "end"
	Field   string `json:"field,omitempty"`
	Value   any    `json:"value,omitempty"`
	UseSums *bool  `json:"use_sums,omitempty"`
}

// LiveResponse is sent after every command. Outcomes published for the
// session by other clients arrive as Type "update" with the encoded outcome.
type LiveResponse struct {
	Type string `json:"type"` // "state", "update", "error"
	*heartaxis.Result
	Update  json.RawMessage `json:"update,omitempty"`
	Message string          `json:"message,omitempty"`
}

// liveWriteWait bounds a single write to a WebSocket client.
const liveWriteWait = 10 * time.Second

// liveConn serializes writes: gorilla allows one concurrent writer.
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return c.conn.WriteJSON(v)
}

func (c *liveConn) close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(liveWriteWait))
}

// LiveSession handles GET /sessions/{id}/live. The session is started (or
// restored) on connect in the mode given by use_sums. Each command is
// answered with the new state, and outcomes published for the session by
// any client are forwarded as updates.
func (s *Server) LiveSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	useSums, ok := useSumsQuery(w, r)
	if !ok {
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("live: websocket upgrade error", "err", err)
		return
	}
	defer ws.Close()
	conn := &liveConn{conn: ws}

	ctx := r.Context()
	res, err := s.svc.Start(ctx, sessionID, useSums)
	if err != nil {
		if werr := conn.writeJSON(LiveResponse{Type: "error", Message: err.Error()}); werr != nil {
			s.logger.Warn("live: write failed", "session_id", sessionID, "err", werr)
		}
		return
	}
	if err := conn.writeJSON(LiveResponse{Type: "state", Result: res}); err != nil {
		s.logger.Warn("live: write failed", "session_id", sessionID, "err", err)
		return
	}

	updates, unsubscribe := s.streams.Subscribe(sessionID)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for msg := range updates {
			if err := conn.writeJSON(LiveResponse{Type: "update", Update: msg}); err != nil {
				s.logger.Debug("live: update not delivered", "session_id", sessionID, "err", err)
			}
		}
	}()
	defer func() {
		unsubscribe()
		<-forwarded
	}()

	for {
		var msg LiveMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("live: websocket error", "session_id", sessionID, "err", err)
			}
			return
		}

		resp := LiveResponse{Type: "state"}
		resp.Result, err = s.apply(r, sessionID, msg)
		if err != nil {
			resp = LiveResponse{Type: "error", Message: err.Error()}
		}
		if err := conn.writeJSON(resp); err != nil {
			s.logger.Warn("live: write failed", "session_id", sessionID, "err", err)
			return
		}
		if msg.Action == "end" && err == nil {
			if err := conn.close("session ended"); err != nil {
				s.logger.Warn("live: close failed", "session_id", sessionID, "err", err)
			}
			return
		}
	}
}

func (s *Server) apply(r *http.Request, sessionID string, msg LiveMessage) (*heartaxis.Result, error) {
	ctx := r.Context()
	switch msg.Action {
	case "set":
		field, err := domain.ParseField(msg.Field)
		if err != nil {
			return nil, err
		}
		v, err := decodeReading(field, msg.Value)
		if err != nil {
			return nil, err
		}
		return s.svc.Edit(ctx, sessionID, field, v)
	case "mode":
		if msg.UseSums == nil {
			return nil, fmt.Errorf("use_sums is required")
		}
		return s.svc.SwitchMode(ctx, sessionID, *msg.UseSums)
	case "reset":
		return s.svc.Reset(ctx, sessionID)
	case "end":
		return s.svc.End(ctx, sessionID)
	default:
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
}
