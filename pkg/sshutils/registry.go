package sshutils

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/stratoshell/stratoshell/pkg/events"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
)

type sessionEntry struct {
	info    ConnectionInfo
	client  SSHClienter
	session SSHSessioner
	stdin   io.WriteCloser
	reader  *readerTask
	log     *logger.Logger
}

// Registry owns the persistent interactive sessions, keyed by session id.
//
// An operation removes the entry from the map for its duration and puts it
// back only on success, so two operations never touch the same session at
// once. A second caller on a busy session gets ErrNoSession.
type Registry struct {
	dialer      SSHDialer
	publisher   events.Publisher
	IdleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewRegistry(dialer SSHDialer, publisher events.Publisher) *Registry {
	if dialer == nil {
		dialer = NewSSHDial(SSHDialTimeout)
	}
	if publisher == nil {
		publisher = events.Discard
	}
	return &Registry{
		dialer:      dialer,
		publisher:   publisher,
		IdleTimeout: InteractiveIdleTimeout,
		sessions:    make(map[string]*sessionEntry),
	}
}

// Connect opens a shell for req.SessionID, replacing any session already
// registered under that id. ctx bounds the dial and handshake only. The
// session logs through logger.FromContext(ctx) for its whole life.
func (r *Registry) Connect(ctx context.Context, req ConnectRequest) (*ConnectionInfo, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}
	l := logger.FromContext(ctx).With(zap.String("session", req.SessionID))

	if old := r.remove(req.SessionID); old != nil {
		l.Info("Replacing existing session")
		r.destroy(old)
	}

	addr := joinHostPort(req.Host, req.Port)
	client, err := r.dialer.Dial(ctx, addr, passwordClientConfig(req.Username, req.Password), r.IdleTimeout)
	if err != nil {
		return nil, wrapDialError(err, req.Username, addr)
	}

	entry, stdout, stderr, err := openShell(client)
	if err != nil {
		closeQuietly(l, "connection", client)
		return nil, fmt.Errorf("failed to start shell on %s@%s: %w", req.Username, addr, err)
	}
	entry.log = l
	entry.info = ConnectionInfo{
		SessionID:   req.SessionID,
		Host:        req.Host,
		Port:        req.Port,
		Username:    req.Username,
		ConnectedAt: time.Now().UTC(),
	}
	entry.reader = startReader(req.SessionID, stdout, stderr, entry.session, r.publisher, l)

	r.mu.Lock()
	previous := r.sessions[req.SessionID]
	r.sessions[req.SessionID] = entry
	r.mu.Unlock()
	if previous != nil {
		l.Info("Evicting session inserted by a concurrent connect")
		r.destroy(previous)
	}

	l.InfoWithFields("SSH session connected",
		zap.String("host", req.Host),
		zap.Int("port", req.Port),
		zap.String("user", req.Username))
	info := entry.info
	return &info, nil
}

// openShell requests a pty and starts a login shell on a new channel.
func openShell(client SSHClienter) (*sessionEntry, io.Reader, io.Reader, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open session: %w", err)
	}

	fail := func(step string, err error) (*sessionEntry, io.Reader, io.Reader, error) {
		_ = session.Close()
		return nil, nil, nil, fmt.Errorf("failed to %s: %w", step, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := requestPty(session, modes); err != nil {
		return fail("request pty", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		return fail("open stdin", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		return fail("open stdout", err)
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		return fail("open stderr", err)
	}
	if err := session.Shell(); err != nil {
		return fail("start shell", err)
	}

	return &sessionEntry{client: client, session: session, stdin: stdin}, stdout, stderr, nil
}

// Disconnect closes the session and reports whether it was registered.
func (r *Registry) Disconnect(id string) bool {
	entry := r.remove(id)
	if entry == nil {
		return false
	}
	r.destroy(entry)
	entry.log.Info("SSH session disconnected")
	return true
}

// Exec writes command and a newline to the shell. Output arrives as events,
// so the returned result is always empty.
func (r *Registry) Exec(id, command string) (*ExecResult, error) {
	if err := validateCommand(command); err != nil {
		return nil, err
	}
	err := r.withSession(id, func(e *sessionEntry) error {
		if _, err := io.WriteString(e.stdin, command+"\n"); err != nil {
			return fmt.Errorf("failed to write command: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ExecResult{}, nil
}

// Resize clamps the size to the supported range and sends a window-change.
func (r *Registry) Resize(id string, cols, rows, pixelWidth, pixelHeight uint32) (WindowSize, error) {
	size := WindowSize{
		Cols:        clamp(cols, MinCols, MaxCols),
		Rows:        clamp(rows, MinRows, MaxRows),
		PixelWidth:  pixelWidth,
		PixelHeight: pixelHeight,
	}
	payload := ssh.Marshal(&windowChangeMsg{size.Cols, size.Rows, size.PixelWidth, size.PixelHeight})

	err := r.withSession(id, func(e *sessionEntry) error {
		if _, err := e.session.SendRequest(windowChangeRequest, false, payload); err != nil {
			return fmt.Errorf("failed to resize terminal: %w", err)
		}
		return nil
	})
	if err != nil {
		return WindowSize{}, err
	}
	return size, nil
}

// SendControl writes a single control character. Unknown names fail before
// the session is touched.
func (r *Registry) SendControl(id, name string) error {
	key, err := ParseControlKey(name)
	if err != nil {
		return err
	}
	return r.withSession(id, func(e *sessionEntry) error {
		if _, err := e.stdin.Write([]byte{key.Byte()}); err != nil {
			return fmt.Errorf("failed to send %s: %w", key, err)
		}
		return nil
	})
}

// Sessions lists the idle sessions ordered by id. Sessions in the middle
// of an operation are not listed.
func (r *Registry) Sessions() []ConnectionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ConnectionInfo, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// CloseAll disconnects every registered session concurrently.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for id, e := range r.sessions {
		entries = append(entries, e)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	var g errgroup.Group
	for _, e := range entries {
		g.Go(func() error {
			r.destroy(e)
			return nil
		})
	}
	_ = g.Wait()
}

// withSession runs op on the entry while it is out of the map. The entry is
// reinserted only when op succeeds; otherwise it is destroyed.
func (r *Registry) withSession(id string, op func(*sessionEntry) error) error {
	id, err := normalizeSessionID(id)
	if err != nil {
		return err
	}
	entry := r.remove(id)
	if entry == nil {
		return noSession(id)
	}

	if err := op(entry); err != nil {
		entry.log.WarnWithFields("SSH session operation failed, closing session", zap.Error(err))
		r.destroy(entry)
		return err
	}

	r.mu.Lock()
	newer := r.sessions[id]
	if newer == nil {
		r.sessions[id] = entry
	}
	r.mu.Unlock()
	if newer != nil {
		r.destroy(entry)
	}
	return nil
}

func (r *Registry) remove(id string) *sessionEntry {
	id, err := normalizeSessionID(id)
	if err != nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.sessions[id]
	delete(r.sessions, id)
	return entry
}

// destroy releases everything an entry owns. Failures are logged only.
func (r *Registry) destroy(e *sessionEntry) {
	closeQuietly(e.log, "stdin", e.stdin)
	if e.reader != nil {
		e.reader.abort()
	}
	closeQuietly(e.log, "channel", e.session)
	closeQuietly(e.log, "connection", e.client)
}

func closeQuietly(l *logger.Logger, what string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && err != io.EOF {
		l.DebugWithFields("close failed", zap.String("resource", what), zap.Error(err))
	}
}
