package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dungeonaut-arena/internal/logging"
)

const writeTimeout = 10 * time.Second

// Server owns the HTTP listener and hands every accepted websocket
// connection off to the dispatcher.
type Server struct {
	cfg        Config
	dispatcher *Dispatcher
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer wires the websocket front end to a running dispatcher.
func NewServer(cfg Config, d *Dispatcher) *Server {
	s := &Server{
		cfg:        cfg,
		dispatcher: d,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients are desktop terminals, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/", s.handleHealth)
	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: mux,
	}
	return s
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	logging.Info("server listening", logging.Fields{"address": s.cfg.ListenAddress})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("dungeonaut arena\n"))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", logging.Fields{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		return
	}

	player := s.dispatcher.Connect()
	logging.Info("client connected", logging.Fields{
		"playerId": player.ID,
		"remote":   conn.RemoteAddr().String(),
	})

	go s.writePump(conn, player)
	s.readPump(conn, player)
}

// readPump reads frames off the socket and posts them to the dispatcher.
// It runs on the connection's accept goroutine and returns on the first
// read error, which covers both closes and idle timeouts.
func (s *Server) readPump(conn *websocket.Conn, player *Player) {
	defer s.dispatcher.Disconnect(player)

	for {
		if s.cfg.ClientTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.cfg.ClientTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Warn("client read error", logging.Fields{
					"playerId": player.ID,
					"error":    err.Error(),
				})
			}
			return
		}
		s.dispatcher.Post(player, data)
	}
}

// writePump drains the player's outbound queue onto the socket. The
// dispatcher closes Send when the player is removed, which ends the loop
// and tears down the connection.
func (s *Server) writePump(conn *websocket.Conn, player *Player) {
	defer conn.Close()

	for data := range player.Send {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.Warn("client write error", logging.Fields{
				"playerId": player.ID,
				"error":    err.Error(),
			})
			return
		}
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}
