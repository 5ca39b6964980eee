package sshutils

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/ssh"
)

type MockSSHDialer struct {
	mock.Mock
}

func NewMockSSHDialer() *MockSSHDialer {
	return &MockSSHDialer{}
}

func (m *MockSSHDialer) Dial(
	ctx context.Context,
	addr string,
	config *ssh.ClientConfig,
	idleTimeout time.Duration,
) (SSHClienter, error) {
	args := m.Called(ctx, addr, config, idleTimeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(SSHClienter), args.Error(1)
}

type MockSSHClient struct {
	mock.Mock
	Session SSHSessioner
}

// NewMockSSHClient returns a client whose NewSession always yields session.
func NewMockSSHClient(session SSHSessioner) *MockSSHClient {
	return &MockSSHClient{Session: session}
}

func (m *MockSSHClient) NewSession() (SSHSessioner, error) {
	if m.Session != nil {
		return m.Session, nil
	}
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(SSHSessioner), args.Error(1)
}

func (m *MockSSHClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockWriteCloser struct {
	mock.Mock
}

func (m *MockWriteCloser) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockWriteCloser) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockSSHSession struct {
	mock.Mock
}

func NewMockSSHSession() *MockSSHSession {
	return &MockSSHSession{}
}

func (m *MockSSHSession) SendRequest(name string, wantReply bool, payload []byte) (bool, error) {
	args := m.Called(name, wantReply, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockSSHSession) StdinPipe() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSSHSession) StdoutPipe() (io.Reader, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.Reader), args.Error(1)
}

func (m *MockSSHSession) StderrPipe() (io.Reader, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.Reader), args.Error(1)
}

func (m *MockSSHSession) Shell() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSSHSession) Start(cmd string) error {
	args := m.Called(cmd)
	return args.Error(0)
}

func (m *MockSSHSession) Wait() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSSHSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

var (
	_ SSHDialer    = &MockSSHDialer{}
	_ SSHClienter  = &MockSSHClient{}
	_ SSHSessioner = &MockSSHSession{}
)
