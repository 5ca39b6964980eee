package sshutils

import (
	"context"
	"io"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHClienter is an authenticated SSH connection.
type SSHClienter interface {
	NewSession() (SSHSessioner, error)
	Close() error
}

// SSHSessioner is one session channel. *ssh.Session satisfies it through SSHSessionWrapper.
type SSHSessioner interface {
	SendRequest(name string, wantReply bool, payload []byte) (bool, error)
	StdinPipe() (io.WriteCloser, error)
	StdoutPipe() (io.Reader, error)
	StderrPipe() (io.Reader, error)
	Shell() error
	Start(cmd string) error
	Wait() error
	Close() error
}

// SSHDialer opens authenticated connections. idleTimeout bounds inactivity on
// the underlying TCP connection; ctx bounds only connection establishment.
type SSHDialer interface {
	Dial(ctx context.Context, addr string, config *ssh.ClientConfig, idleTimeout time.Duration) (SSHClienter, error)
}

var (
	_ SSHClienter  = &SSHClientWrapper{}
	_ SSHSessioner = &SSHSessionWrapper{}
	_ SSHDialer    = &SSHDial{}
)
