package sshutils

import (
	"net"
	"sync"
	"time"
)

// idleTimeoutConn pushes the connection deadline forward on every read and
// write, so the connection fails only after timeout without traffic. A zero
// timeout disables the idle deadline.
//
// While a limit is set, no deadline is pushed past it. The dialer uses this
// to bound the SSH handshake.
type idleTimeoutConn struct {
	net.Conn
	timeout time.Duration

	mu    sync.Mutex
	limit time.Time
}

func newIdleTimeoutConn(conn net.Conn, timeout time.Duration) *idleTimeoutConn {
	return &idleTimeoutConn{Conn: conn, timeout: timeout}
}

// refresh sets the next deadline. The lock keeps a read or write from
// restoring a deadline computed before limitUntil changed the limit.
func (c *idleTimeoutConn) refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if !c.limit.IsZero() && (deadline.IsZero() || c.limit.Before(deadline)) {
		deadline = c.limit
	}
	return c.Conn.SetDeadline(deadline)
}

// limitUntil caps every deadline at t. A zero t removes the cap. The new
// deadline also applies to reads and writes already in flight.
func (c *idleTimeoutConn) limitUntil(t time.Time) error {
	c.mu.Lock()
	c.limit = t
	c.mu.Unlock()
	return c.refresh()
}

func (c *idleTimeoutConn) Read(b []byte) (int, error) {
	if err := c.refresh(); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *idleTimeoutConn) Write(b []byte) (int, error) {
	if err := c.refresh(); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
