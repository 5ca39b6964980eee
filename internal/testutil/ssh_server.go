package testutil

import (
	"bufio"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/ssh"
)

// PtyRequest is a recorded "pty-req".
type PtyRequest struct {
	Term   string
	Cols   uint32
	Rows   uint32
	Width  uint32
	Height uint32
}

// WindowChange is a recorded "window-change".
type WindowChange struct {
	Cols   uint32
	Rows   uint32
	Width  uint32
	Height uint32
}

// SSHServer is a password-authenticated SSH server on 127.0.0.1 with a tiny
// line-oriented shell. It understands:
//
//	echo TEXT   writes TEXT to stdout
//	err TEXT    writes TEXT to stderr
//	exit N      ends the session with status N
//
// Exec requests run the same commands separated by ';'. In a shell, 0x03
// prints "^C" and 0x04 ends the session with status 0.
type SSHServer struct {
	Host     string
	Port     int
	User     string
	Password string

	listener net.Listener
	config   *ssh.ServerConfig
	wg       sync.WaitGroup

	mu            sync.Mutex
	conns         map[net.Conn]struct{}
	ptyRequests   []PtyRequest
	windowChanges []WindowChange
	commands      []string
	closed        bool
}

// StartSSHServer starts a server that is closed when the test ends.
func StartSSHServer(t testing.TB, user, password string) *SSHServer {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatalf("failed to create host signer: %v", err)
	}

	s := &SSHServer{User: user, Password: password, conns: make(map[net.Conn]struct{})}
	s.config = &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if meta.User() == s.User && string(pass) == s.Password {
				return nil, nil
			}
			return nil, errors.New("password rejected")
		},
	}
	s.config.AddHostKey(signer)

	s.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := s.listener.Addr().(*net.TCPAddr)
	s.Host, s.Port = addr.IP.String(), addr.Port

	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *SSHServer) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *SSHServer) PtyRequests() []PtyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PtyRequest(nil), s.ptyRequests...)
}

func (s *SSHServer) WindowChanges() []WindowChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WindowChange(nil), s.windowChanges...)
}

// Commands returns every shell line and exec command received, in order.
func (s *SSHServer) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Close stops accepting and drops every open connection.
func (s *SSHServer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.listener.Close()
	s.wg.Wait()
}

func (s *SSHServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *SSHServer) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	_, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			continue
		}
		s.wg.Add(1)
		go s.handleSession(ch, chReqs)
	}
}

func (s *SSHServer) handleSession(ch ssh.Channel, reqs <-chan *ssh.Request) {
	defer s.wg.Done()
	for req := range reqs {
		switch req.Type {
		case "pty-req":
			var p struct {
				Term   string
				Cols   uint32
				Rows   uint32
				Width  uint32
				Height uint32
				Modes  string
			}
			if err := ssh.Unmarshal(req.Payload, &p); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			s.mu.Lock()
			s.ptyRequests = append(s.ptyRequests, PtyRequest{
				Term: p.Term, Cols: p.Cols, Rows: p.Rows, Width: p.Width, Height: p.Height,
			})
			s.mu.Unlock()
			_ = req.Reply(true, nil)
		case "window-change":
			var w WindowChange
			if err := ssh.Unmarshal(req.Payload, &w); err == nil {
				s.mu.Lock()
				s.windowChanges = append(s.windowChanges, w)
				s.mu.Unlock()
			}
			if req.WantReply {
				_ = req.Reply(true, nil)
			}
		case "shell":
			_ = req.Reply(true, nil)
			go s.runShell(ch)
		case "exec":
			var e struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &e); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			go s.runExec(ch, e.Command)
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func (s *SSHServer) runShell(ch ssh.Channel) {
	r := bufio.NewReader(ch)
	var line []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			ch.Close()
			return
		}
		switch b {
		case 0x03:
			line = line[:0]
			fmt.Fprint(ch, "^C\r\n")
		case 0x04:
			exit(ch, 0)
			return
		case 0x15:
			line = line[:0]
		case '\r':
		case '\n':
			cmd := string(line)
			line = line[:0]
			if status, done := s.interpret(ch, cmd); done {
				exit(ch, status)
				return
			}
		default:
			line = append(line, b)
		}
	}
}

func (s *SSHServer) runExec(ch ssh.Channel, command string) {
	for _, cmd := range strings.Split(command, ";") {
		if status, done := s.interpret(ch, cmd); done {
			exit(ch, status)
			return
		}
	}
	exit(ch, 0)
}

// interpret runs one command and reports whether it ended the session.
func (s *SSHServer) interpret(ch ssh.Channel, cmd string) (int, bool) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return 0, false
	}
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()

	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case "echo":
		fmt.Fprintf(ch, "%s\r\n", arg)
	case "err":
		fmt.Fprintf(ch.Stderr(), "%s\r\n", arg)
	case "exit":
		status, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			status = 0
		}
		return status, true
	default:
		fmt.Fprintf(ch.Stderr(), "%s: command not found\r\n", name)
	}
	return 0, false
}

func exit(ch ssh.Channel, status int) {
	payload := ssh.Marshal(struct{ Status uint32 }{uint32(status)})
	_, _ = ch.SendRequest("exit-status", false, payload)
	_ = ch.CloseWrite()
	_ = ch.Close()
}
