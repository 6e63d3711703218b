package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matteo/veloclub/internal/app/countsync"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Watch frames are tiny.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development, in production you should restrict this
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is a middleman between one websocket connection and the hub. It
// implements the subscriber side of the count session.
type Client struct {
	hub *Hub

	// The WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// User ID of the client
	userID int64

	// Per-connection watch state with the live subscription cap
	session *countsync.Session

	closeOnce sync.Once

	logger zerolog.Logger
}

// Subscribe implements countsync.Subscriber
func (c *Client) Subscribe(eventID int64) {
	c.hub.subscribe(eventID, c)
}

// Unsubscribe implements countsync.Subscriber
func (c *Client) Unsubscribe(eventID int64) {
	c.hub.unsubscribe(eventID, c)
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump consumes watch frames from the connection, updates the session's
// visible set and answers with a count snapshot.
func (c *Client) readPump() {
	defer func() {
		c.session.Close()
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Int64("userID", c.userID).Msg("Count feed closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Int64("userID", c.userID).Msg("Unexpected count feed close")
			}
			break
		}

		var watch WatchMessage
		if err := json.Unmarshal(message, &watch); err != nil || watch.Type != "watch" {
			c.logger.Debug().Int64("userID", c.userID).Str("message", string(message)).Msg("Ignoring malformed watch frame")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		counts, err := c.session.SetVisible(ctx, watch.EventIDs)
		cancel()
		if err != nil {
			c.logger.Error().Err(err).Int64("userID", c.userID).Msg("Failed to resolve count snapshot")
			continue
		}

		data, err := json.Marshal(SnapshotMessage{Type: "counts", Counts: counts})
		if err != nil {
			c.logger.Error().Err(err).Msg("Failed to marshal count snapshot")
			continue
		}

		select {
		case c.send <- data:
		default:
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
