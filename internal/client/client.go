package client

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dungeonaut-arena/internal/logging"
	"dungeonaut-arena/internal/models"
	"dungeonaut-arena/internal/network"
)

const (
	DefaultServerURL = "ws://localhost:8080/ws"

	heartbeatInterval    = 30 * time.Second
	maxReconnectAttempts = 5
	reconnectBaseDelay   = time.Second
	maxReconnectDelay    = 30 * time.Second
	writeTimeout         = 10 * time.Second
)

var ErrNotConnected = errors.New("client: not connected")

// Client owns the websocket link to the arena server. Inbound frames are
// delivered on Frames in arrival order; the channel is closed once the
// connection is gone for good (explicit Close or reconnect exhaustion).
type Client struct {
	url string

	// PlayerID and Username reflect the latest connected frame. Both
	// change if a reconnect lands on a fresh server-side player.
	PlayerID string
	Username string

	Frames chan []byte

	mu        sync.Mutex // guards conn across writers and reconnects
	conn      *websocket.Conn
	closed    chan struct{}
	closeOnce sync.Once
}

func NewClient(serverURL string) *Client {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Client{
		url:    serverURL,
		Frames: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

// Connect dials the server and completes the connected handshake, then
// starts the read loop and heartbeat.
func (c *Client) Connect() error {
	if err := c.dial(); err != nil {
		return err
	}
	go c.readLoop()
	go c.heartbeat()
	return nil
}

// dial establishes the socket and consumes the initial connected frame.
func (c *Client) dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(writeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return err
	}
	conn.SetReadDeadline(time.Time{})

	var hello network.Connected
	if err := network.Decode(data, &hello); err != nil || hello.Type != network.MsgTypeConnected {
		conn.Close()
		return errors.New("client: unexpected handshake frame")
	}

	c.mu.Lock()
	c.conn = conn
	c.PlayerID = hello.PlayerID
	c.Username = hello.Username
	c.mu.Unlock()

	logging.Info("connected to server", logging.Fields{
		"playerId": hello.PlayerID,
		"username": hello.Username,
	})
	return nil
}

// Close tears the connection down and ends the read loop.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}

func (c *Client) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// readLoop pumps inbound frames onto Frames, reconnecting with backoff
// when the socket drops.
func (c *Client) readLoop() {
	defer close(c.Frames)

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return
			}
			logging.Warn("connection lost", logging.Fields{"error": err.Error()})
			if err := c.reconnect(); err != nil {
				logging.Error("reconnect failed", err, nil)
				return
			}
			continue
		}

		select {
		case c.Frames <- data:
		case <-c.closed:
			return
		}
	}
}

// reconnect retries the dial with exponential backoff. A reconnect lands
// on a brand-new server-side player, so any match in flight is already
// forfeited; the fresh connected frame is forwarded so callers can reset.
func (c *Client) reconnect() error {
	username := c.Username

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		delay := reconnectBaseDelay << (attempt - 1)
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
		logging.Info("reconnecting", logging.Fields{"attempt": attempt, "delay": delay.String()})

		select {
		case <-time.After(delay):
		case <-c.closed:
			return errors.New("client: closed during reconnect")
		}

		if err := c.dial(); err != nil {
			logging.Warn("reconnect attempt failed", logging.Fields{
				"attempt": attempt, "error": err.Error(),
			})
			continue
		}

		if username != "" {
			if err := c.SetUsername(username); err != nil {
				logging.Warn("restore username", logging.Fields{"error": err.Error()})
			}
		}
		// Let the caller observe the reset.
		hello, _ := network.Encode(network.Connected{
			Type: network.MsgTypeConnected, PlayerID: c.PlayerID, Username: c.Username,
		})
		select {
		case c.Frames <- hello:
		default:
		}
		return nil
	}
	return errors.New("client: reconnect attempts exhausted")
}

// heartbeat keeps the server's idle timer from firing while the player
// sits in menus. Write errors are left to the read loop to notice.
func (c *Client) heartbeat() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.send(network.Ping{Type: network.MsgTypePing})
		case <-c.closed:
			return
		}
	}
}

func (c *Client) send(v any) error {
	data, err := network.Encode(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) SetUsername(name string) error {
	c.Username = name
	return c.send(network.SetUsername{Type: network.MsgTypeSetUsername, Username: name})
}

func (c *Client) JoinQueue(queueType models.QueueType) error {
	return c.send(network.JoinQueue{Type: network.MsgTypeJoinQueue, QueueType: queueType})
}

func (c *Client) LeaveQueue() error {
	return c.send(network.LeaveQueue{Type: network.MsgTypeLeaveQueue})
}

func (c *Client) SubmitBuild(matchID string, build models.Build) error {
	return c.send(network.SubmitBuild{Type: network.MsgTypeSubmitBuild, MatchID: matchID, Build: build})
}

func (c *Client) SubmitAction(matchID, actionID string) error {
	return c.send(network.SubmitAction{Type: network.MsgTypeSubmitAction, MatchID: matchID, Action: actionID})
}

func (c *Client) EndMatch(report network.EndMatch) error {
	report.Type = network.MsgTypeEndMatch
	return c.send(report)
}

func (c *Client) RequestLeaderboard() error {
	return c.send(network.GetLeaderboard{Type: network.MsgTypeGetLeaderboard})
}

func (c *Client) RequestStats() error {
	return c.send(network.GetStats{Type: network.MsgTypeGetStats})
}
