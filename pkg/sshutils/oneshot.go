package sshutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/stratoshell/stratoshell/pkg/events"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
)

// Executor runs single commands, each on its own connection.
type Executor struct {
	dialer      SSHDialer
	publisher   events.Publisher
	IdleTimeout time.Duration
}

func NewExecutor(dialer SSHDialer, publisher events.Publisher) *Executor {
	if dialer == nil {
		dialer = NewSSHDial(SSHDialTimeout)
	}
	if publisher == nil {
		publisher = events.Discard
	}
	return &Executor{dialer: dialer, publisher: publisher, IdleTimeout: ExecIdleTimeout}
}

// Exec runs req.Command under a pty and waits for it to finish. Output is
// captured and also published as events with req.EventID as the session id.
//
// A non-zero exit status is reported in the result, not as an error.
// Teardown of the channel and connection always runs; its failures are
// logged and never replace the command's result.
func (e *Executor) Exec(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}
	l := logger.FromContext(ctx).With(zap.String("event_id", req.EventID))

	addr := joinHostPort(req.Host, req.Port)
	client, err := e.dialer.Dial(ctx, addr, passwordClientConfig(req.Username, req.Password), e.IdleTimeout)
	if err != nil {
		return nil, wrapDialError(err, req.Username, addr)
	}
	defer closeQuietly(l, "connection", client)

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open session on %s@%s: %w", req.Username, addr, err)
	}
	defer closeQuietly(l, "channel", session)

	if err := requestPty(session, ssh.TerminalModes{ssh.ECHO: 0}); err != nil {
		return nil, fmt.Errorf("failed to request pty: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin: %w", err)
	}
	defer closeQuietly(l, "stdin", stdin)

	stdout, err := session.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr: %w", err)
	}

	l.DebugWithFields("Running command", zap.String("host", req.Host), zap.String("user", req.Username))
	if err := session.Start(req.Command); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	c := &collector{id: req.EventID, publisher: e.publisher, log: l}
	var g errgroup.Group
	g.Go(func() error { return c.pump(stdout, events.KindStdout) })
	g.Go(func() error { return c.pump(stderr, events.KindStderr) })
	streamErr := g.Wait()

	result := &ExecResult{}
	status, waitErr := exitStatus(session.Wait())
	result.Stdout, result.Stderr = c.text()
	result.ExitStatus = status
	c.emit(events.KindMeta, exitSummaryFor(status))

	if streamErr != nil {
		return result, fmt.Errorf("failed to read command output: %w", streamErr)
	}
	if waitErr != nil {
		return result, fmt.Errorf("command did not complete: %w", waitErr)
	}
	return result, nil
}

// exitStatus extracts the numeric status from Wait. A missing status is not
// an error; any other failure is.
func exitStatus(err error) (*int, error) {
	if err == nil {
		zero := 0
		return &zero, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitStatus()
		return &code, nil
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return nil, nil
	}
	return nil, err
}

func exitSummaryFor(status *int) string {
	if status == nil {
		return "exit status unavailable"
	}
	return fmt.Sprintf("exit status %d", *status)
}

// collector accumulates decoded output per stream while publishing it.
type collector struct {
	id        string
	publisher events.Publisher
	log       *logger.Logger

	mu     sync.Mutex
	stdout strings.Builder
	stderr strings.Builder
}

func (c *collector) pump(r io.Reader, kind events.Kind) error {
	var dec utf8Decoder
	buf := make([]byte, readBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.add(kind, dec.Decode(buf[:n]))
		}
		if err != nil {
			c.add(kind, dec.Flush())
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (c *collector) add(kind events.Kind, text string) {
	if text == "" {
		return
	}
	c.mu.Lock()
	if kind == events.KindStderr {
		c.stderr.WriteString(text)
	} else {
		c.stdout.WriteString(text)
	}
	c.mu.Unlock()
	c.emit(kind, text)
}

func (c *collector) emit(kind events.Kind, text string) {
	if err := c.publisher.Publish(events.New(c.id, kind, text)); err != nil {
		c.log.WarnWithFields("failed to publish exec event", zap.Error(err))
	}
}

func (c *collector) text() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stdout.String(), c.stderr.String()
}
