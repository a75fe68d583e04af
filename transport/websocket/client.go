package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var (
	errClientClosed   = errors.New("client closed")
	errSendBufferFull = errors.New("send buffer full")
)

// client is one WebSocket connection; it speaks for the session it connected to.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	// sessionID and detach are owned by the read loop.
	sessionID string
	detach    func()
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),

		detach: func() {},
	}
}

func (that *client) Say(_ context.Context, text string) error {
	return that.push(actionSay, Payload{Text: text})
}

func (that *client) push(action string, payload Payload) error {
	data, err := marshalMessage(action, payload)
	if err != nil {
		return err
	}

	select {
	case <-that.done:
		return errClientClosed
	default:
	}

	select {
	case that.send <- data:
		return nil
	case <-that.done:
		return errClientClosed
	default:
		return errSendBufferFull
	}
}

func (that *client) close() {
	that.once.Do(func() {
		close(that.done)
	})
}

// writePump - writes queued messages and keeps the connection alive with pings.
func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case message := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-that.done:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})

			return
		}
	}
}
