package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/duelforge/duel-server-go/internal/config"
	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ClientMessage is a command frame sent by the browser. Commands always act
// for the human side.
type ClientMessage struct {
	Type       string `json:"type"`
	CardID     string `json:"card_id,omitempty"`
	DefenderID string `json:"defender_id,omitempty"`
}

// ServerMessage is a frame sent to the browser.
type ServerMessage struct {
	Type   string          `json:"type"`
	Event  *rules.Event    `json:"event,omitempty"`
	Result *game.Result    `json:"result,omitempty"`
	Match  *game.MatchView `json:"match,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WebSocketServer plays one match per connection.
type WebSocketServer struct {
	engine   *game.Engine
	cfg      config.WebSocketConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketServer creates the websocket adapter.
func NewWebSocketServer(engine *game.Engine, cfg config.WebSocketConfig, logger *zap.Logger) *WebSocketServer {
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 4096
	}
	return &WebSocketServer{
		engine: engine,
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP handler serving the websocket endpoint.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	return mux
}

// StartWebSocketServer serves until ctx is cancelled.
func StartWebSocketServer(ctx context.Context, cfg config.WebSocketConfig, engine *game.Engine, logger *zap.Logger) error {
	ws := NewWebSocketServer(engine, cfg, logger)
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting WebSocket server",
		zap.String("address", cfg.Address),
		zap.String("path", ws.cfg.Path),
		zap.Duration("pacing", cfg.Pacing),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type outgoing struct {
	data  []byte
	delay time.Duration
}

// wsClient is one connection and the match it owns.
type wsClient struct {
	server    *WebSocketServer
	conn      *websocket.Conn
	matchID   string
	send      chan outgoing
	done      chan struct{}
	closeOnce sync.Once
}

func (s *WebSocketServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	query := r.URL.Query()
	view, res, err := s.engine.NewGame(game.GameOptions{
		Seed:      query.Get("seed"),
		HumanName: query.Get("name"),
	})
	if err != nil {
		s.logger.Error("failed to start websocket match", zap.Error(err))
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(ServerMessage{Type: "error", Error: err.Error()})
		_ = conn.Close()
		return
	}
	s.logger.Info("websocket match started",
		zap.String("match_id", view.ID),
		zap.String("remote", r.RemoteAddr),
	)

	c := &wsClient{
		server:  s,
		conn:    conn,
		matchID: view.ID,
		send:    make(chan outgoing, 256),
		done:    make(chan struct{}),
	}
	go c.writePump()

	c.sendEvents(res.Events)
	c.sendMessage(ServerMessage{Type: "state", Match: view}, 0)
	c.readPump(r.Context())
}

func (c *wsClient) readPump(ctx context.Context) {
	defer c.close()
	c.conn.SetReadLimit(c.server.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Debug("websocket read failed",
					zap.String("match_id", c.matchID),
					zap.Error(err),
				)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendMessage(ServerMessage{Type: "error", Error: "malformed message"}, 0)
			continue
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *wsClient) handleMessage(ctx context.Context, msg ClientMessage) {
	if msg.Type == "state" {
		c.sendState()
		return
	}

	cmd := game.Command{
		Type:       game.CommandType(msg.Type),
		Side:       rules.SideHuman,
		CardID:     msg.CardID,
		DefenderID: msg.DefenderID,
	}
	res, err := c.server.engine.Execute(ctx, c.matchID, cmd)
	if err != nil {
		c.sendMessage(ServerMessage{Type: "error", Error: err.Error()}, 0)
		return
	}

	c.sendMessage(ServerMessage{Type: "result", Result: &game.Result{Accepted: res.Accepted, Reason: res.Reason}}, 0)
	c.sendEvents(res.Events)
	c.sendState()
}

// sendEvents queues one frame per event. Opponent events are spaced by the
// configured pacing so the browser can animate them.
func (c *wsClient) sendEvents(events []rules.Event) {
	for i := range events {
		var delay time.Duration
		if events[i].Side == rules.SideOpponent {
			delay = c.server.cfg.Pacing
		}
		c.sendMessage(ServerMessage{Type: "event", Event: &events[i]}, delay)
	}
}

func (c *wsClient) sendState() {
	view, err := c.server.engine.View(c.matchID, rules.SideHuman)
	if err != nil {
		c.sendMessage(ServerMessage{Type: "error", Error: err.Error()}, 0)
		return
	}
	c.sendMessage(ServerMessage{Type: "state", Match: view}, 0)
}

func (c *wsClient) sendMessage(msg ServerMessage, delay time.Duration) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.logger.Error("failed to encode websocket frame", zap.Error(err))
		return
	}
	select {
	case c.send <- outgoing{data: data, delay: delay}:
	case <-c.done:
	default:
		go c.close()
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			if msg.delay > 0 {
				select {
				case <-time.After(msg.delay):
				case <-c.done:
					return
				}
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
		if err := c.server.engine.EndGame(c.matchID); err != nil {
			c.server.logger.Debug("websocket match already removed",
				zap.String("match_id", c.matchID),
				zap.Error(err),
			)
			return
		}
		c.server.logger.Info("websocket match closed", zap.String("match_id", c.matchID))
	})
}
