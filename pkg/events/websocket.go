package events

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/stratoshell/stratoshell/pkg/logger"
)

var (
	DialMaxElapsedTime = 30 * time.Second
	WriteTimeout       = 10 * time.Second
)

// WebSocketSink writes each event as a JSON text message.
type WebSocketSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

// DialWebSocketSink connects to url, retrying with exponential backoff until
// DialMaxElapsedTime passes or ctx is done. A handshake rejected with a 4xx
// status is not retried.
func DialWebSocketSink(ctx context.Context, url string) (*WebSocketSink, error) {
	l := logger.Get()

	var conn *websocket.Conn
	operation := func() error {
		c, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			if resp != nil && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
				return backoff.Permanent(fmt.Errorf("event bus rejected handshake with status %d: %w", resp.StatusCode, err))
			}
			l.Debugf("Dialing event bus %s failed, retrying: %v", url, err)
			return err
		}
		conn = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = DialMaxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("failed to connect to event bus %s: %w", url, err)
	}

	l.Infof("Connected to event bus %s", url)
	return NewWebSocketSink(conn), nil
}

func (s *WebSocketSink) Publish(ev StreamEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := s.conn.WriteJSON(ev); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Close sends a normal closure frame and closes the connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}
