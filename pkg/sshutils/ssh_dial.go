package sshutils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHDial dials TCP, wraps the connection with an inactivity timeout and runs
// the SSH handshake over it. DialTimeout bounds the TCP dial and the
// handshake together, and cancelling ctx aborts either. DialCreator can be
// replaced in tests.
type SSHDial struct {
	DialTimeout time.Duration
	DialCreator func(ctx context.Context, addr string, config *ssh.ClientConfig, idleTimeout time.Duration) (SSHClienter, error)
}

func NewSSHDial(dialTimeout time.Duration) *SSHDial {
	d := &SSHDial{DialTimeout: dialTimeout}
	d.DialCreator = d.dialTCP
	return d
}

func (d *SSHDial) Dial(
	ctx context.Context,
	addr string,
	config *ssh.ClientConfig,
	idleTimeout time.Duration,
) (SSHClienter, error) {
	if d.DialCreator == nil {
		return d.dialTCP(ctx, addr, config, idleTimeout)
	}
	return d.DialCreator(ctx, addr, config, idleTimeout)
}

func (d *SSHDial) dialTCP(
	ctx context.Context,
	addr string,
	config *ssh.ClientConfig,
	idleTimeout time.Duration,
) (SSHClienter, error) {
	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = SSHDialTimeout
	}
	deadline := time.Now().Add(timeout)

	dialer := net.Dialer{Deadline: deadline}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	conn := newIdleTimeoutConn(raw, idleTimeout)
	if err := conn.limitUntil(deadline); err != nil {
		_ = raw.Close()
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = raw.Close() })

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	cancelled := !stop()
	if err != nil {
		_ = raw.Close()
		switch {
		case cancelled && ctx.Err() != nil:
			return nil, fmt.Errorf("ssh handshake aborted: %w", ctx.Err())
		case errors.Is(err, os.ErrDeadlineExceeded):
			return nil, fmt.Errorf("ssh handshake did not finish within %s: %w", timeout, err)
		}
		return nil, err
	}
	if cancelled {
		_ = sshConn.Close()
		return nil, fmt.Errorf("ssh handshake aborted: %w", ctx.Err())
	}
	if err := conn.limitUntil(time.Time{}); err != nil {
		_ = sshConn.Close()
		return nil, err
	}
	return &SSHClientWrapper{Client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// passwordClientConfig offers the password both as "password" auth and as
// the answer to every keyboard-interactive prompt.
func passwordClientConfig(username, password string) *ssh.ClientConfig {
	answer := func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range answers {
			answers[i] = password
		}
		return answers, nil
	}
	return &ssh.ClientConfig{
		User: username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(answer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // hosts are freshly provisioned; there is no known_hosts entry
	}
}
