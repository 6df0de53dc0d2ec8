package server

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minaorangina/kings/engine"
	"github.com/minaorangina/kings/game"
	"github.com/minaorangina/kings/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Rejections queued for a connection before further ones are dropped.
	errorBacklog = 8
)

// spectator is the seat of a connection without a credential
const spectator = -1

// streamConn joins a websocket to a game subscription. Only writePump
// writes to the connection.
type streamConn struct {
	conn *websocket.Conn
	game *engine.GameEngine
	sub  *engine.Subscription
	seat int

	errs chan protocol.Event
	done chan struct{}
	log  *zap.Logger
}

func newStreamConn(conn *websocket.Conn, ge *engine.GameEngine, seat int, log *zap.Logger) *streamConn {
	return &streamConn{
		conn: conn,
		game: ge,
		sub:  ge.Subscribe(),
		seat: seat,
		errs: make(chan protocol.Event, errorBacklog),
		done: make(chan struct{}),
		log:  log,
	}
}

// readPump submits inbound text frames as actions for the connection's
// seat until the peer goes away
func (c *streamConn) readPump() {
	defer func() {
		close(c.done)
		c.sub.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		if err := c.submit(string(msg)); err != nil {
			c.reject(err)
		}
	}
}

func (c *streamConn) submit(msg string) error {
	if c.seat == spectator {
		return ErrAuthRequired
	}

	action, err := game.ParseAction(msg)
	if err != nil {
		return err
	}

	_, err = c.game.SubmitAction(c.seat, action)
	if err != nil {
		return err
	}

	c.log.Debug("action submitted", zap.Stringer("action", action))
	return nil
}

func (c *streamConn) reject(err error) {
	select {
	case c.errs <- protocol.NewError(err):
	default:
		c.log.Warn("dropped rejection", zap.Error(err))
	}
}

// writePump forwards game events and rejections to the peer
func (c *streamConn) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.sub.Events():
			if !ok {
				// The game closed the subscription.
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(ev); err != nil {
				return
			}

		case ev := <-c.errs:
			if err := c.write(ev); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *streamConn) write(ev protocol.Event) error {
	msg, err := ev.Encode(c.seat)
	if err != nil {
		c.log.Error("could not encode event", zap.Stringer("event", ev.Command), zap.Error(err))
		return nil
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = c.conn.WriteMessage(websocket.TextMessage, []byte(msg))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.log.Debug("websocket write failed", zap.Error(err))
	}
	return err
}
