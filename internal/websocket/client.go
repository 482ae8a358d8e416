// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// The feed is server to client. Inbound data frames are read only to
	// keep control frames flowing, then discarded.
	maxInboundSize = 512

	sendBufferSize = 64
)

// clientIDCounter orders clients for broadcasts.
var clientIDCounter atomic.Uint64

// Client is one live feed subscriber.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient creates a client with the next id.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}
}

// ID returns the client id.
func (c *Client) ID() uint64 {
	return c.id
}

// Start runs the client until the peer goes away or the hub drops it.
func (c *Client) Start() {
	go c.feed()
	go c.watch()
}

// watch keeps the read side alive for pong and close frames and unregisters
// the client once the peer disconnects or stops answering pings.
func (c *Client) watch() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.stopped:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				logging.Debug().Err(err).Uint64("client", c.id).Msg("Live feed client disconnected")
			}
			return
		}
	}
}

// feed writes queued hub messages and keepalive pings. A closed send channel
// means the hub dropped the client or is shutting down.
func (c *Client) feed() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				closing := websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed")
				_ = c.conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(writeWait))
				return
			}
			if err := c.write(message); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Warn().Err(err).Uint64("client", c.id).Msg("Failed to write live feed message")
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(message Message) error {
	payload, err := MarshalMessage(message)
	if err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
