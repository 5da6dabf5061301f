package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mehrbod2002/coinboard/internal/updater"
	"github.com/rs/zerolog/log"
)

const sendBuffer = 64

// ChartMessage carries one updater view to the browser.
type ChartMessage struct {
	Type string `json:"type"`
	updater.View
}

// Client is one websocket connection. It owns a single chart updater, so
// every connection follows at most one coin at a time.
type Client struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Updater *updater.Updater

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Render queues a view for the write pump. A full buffer drops the view;
// the next one carries the whole state anyway.
func (c *Client) Render(v updater.View) {
	c.enqueue(ChartMessage{Type: "chart", View: v})
}

func (c *Client) enqueue(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("client", c.ID).Msg("could not encode message")
		return
	}
	select {
	case <-c.done:
	case c.Send <- b:
	default:
		log.Warn().Str("client", c.ID).Msg("client buffer full, skipping message")
	}
}

// Close stops the updater and the connection. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Updater != nil {
			c.Updater.Deactivate()
		}
		c.Conn.Close()
	})
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}
