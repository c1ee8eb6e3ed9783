package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/transport/api"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBufferSize = 8
)

// Client is one WebSocket connection with its debounce state.
type Client struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	suggest  Suggester
	debounce time.Duration
	logger   *zap.Logger

	send chan []byte

	mu         sync.Mutex
	pending    *casecontext.Context
	pendingGen uint64
	timer      *time.Timer

	// generation invalidates in-flight cycles: bumped on every submission,
	// checked again at delivery (last-write-wins).
	generation atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, hub *Hub, suggest Suggester, debounce time.Duration, logger *zap.Logger) *Client {
	return &Client{
		id:       id,
		conn:     conn,
		hub:      hub,
		suggest:  suggest,
		debounce: debounce,
		logger:   logger.With(zap.String("client_id", id)),
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// submit records a context edit. The suggestion cycle starts once the
// debounce window passes without a newer submission; any in-flight cycle's
// output is invalidated immediately.
func (c *Client) submit(cc *casecontext.Context) {
	gen := c.generation.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = cc
	c.pendingGen = gen
	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, c.fire)
	} else {
		c.timer.Reset(c.debounce)
	}
}

// fire runs in the debounce timer goroutine. The generation is captured
// together with the pending context so a submission racing the timer cannot
// deliver the old context's results under the new generation.
func (c *Client) fire() {
	c.mu.Lock()
	cc := c.pending
	gen := c.pendingGen
	c.pending = nil
	c.mu.Unlock()

	if cc == nil {
		return
	}
	c.runCycle(cc, gen)
}

// runCycle executes one suggestion cycle and delivers its output unless a
// newer submission superseded it.
func (c *Client) runCycle(cc *casecontext.Context, gen uint64) {
	ctx := context.Background()

	results, err := c.suggest.Suggest(ctx, cc)

	if c.generation.Load() != gen {
		c.logger.Debug("discarding stale suggestion cycle",
			zap.String("case_id", cc.CaseID),
		)
		return
	}

	now := time.Now().UnixMilli()
	var payload any
	if err != nil {
		c.logger.Warn("suggestion cycle failed", zap.Error(err))
		payload = api.ErrorMessage{
			Type:      api.MessageTypeError,
			Error:     clientErrorMessage(err),
			Timestamp: now,
		}
	} else {
		data := api.ResultsToAPI(results)
		payload = api.SuggestionsMessage{
			Type:      api.MessageTypeSuggestions,
			Data:      data,
			Count:     len(data),
			Timestamp: now,
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal ws message", zap.Error(err))
		return
	}
	c.deliver(raw)
}

// deliver hands a message to the write pump. A full buffer means the client
// cannot keep up; the message is dropped.
func (c *Client) deliver(raw []byte) {
	select {
	case <-c.done:
	case c.send <- raw:
	default:
		c.logger.Warn("dropping ws message, send buffer full")
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// readPump consumes inbound context submissions. Blocks until the
// connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read error", zap.Error(err))
			}
			return
		}

		var sub api.ContextSubmission
		if err := json.Unmarshal(raw, &sub); err != nil {
			c.sendErrorNow("invalid message format")
			continue
		}

		cc := sub.Context
		c.submit(&cc)
	}
}

// writePump is the single writer for the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case raw := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendErrorNow bypasses the debounce for protocol-level errors.
func (c *Client) sendErrorNow(msg string) {
	raw, err := json.Marshal(api.ErrorMessage{
		Type:      api.MessageTypeError,
		Error:     msg,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	c.deliver(raw)
}

// clientErrorMessage maps known errors to their sentinel text, hiding
// internals for everything else.
func clientErrorMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidContext,
		domain.ErrEmptyQuery,
		domain.ErrEmbeddingUnavailable,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}
