package sshutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConnectRequest opens a persistent interactive session under SessionID.
// Port 0 means 22.
type ConnectRequest struct {
	SessionID string
	Host      string
	Port      int
	Username  string
	Password  string
}

// ConnectionInfo describes an established session.
type ConnectionInfo struct {
	SessionID   string    `json:"sessionId"`
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Username    string    `json:"username"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// ExecRequest runs one command on a fresh connection. Output events carry
// EventID, generated when empty.
type ExecRequest struct {
	Host     string
	Port     int
	Username string
	Password string
	Command  string
	EventID  string
}

// ExecResult holds captured output. On persistent sessions the fields stay
// empty and ExitStatus nil because output is streamed as events.
type ExecResult struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitStatus *int   `json:"exitStatus,omitempty"`
}

// WindowSize is the terminal size actually applied after clamping.
type WindowSize struct {
	Cols        uint32 `json:"cols"`
	Rows        uint32 `json:"rows"`
	PixelWidth  uint32 `json:"pixelWidth"`
	PixelHeight uint32 `json:"pixelHeight"`
}

func normalizeSessionID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", invalid("session id")
	}
	return id, nil
}

func normalizeTarget(host string, port int, username, password string) (string, int, string, error) {
	host = strings.TrimSpace(host)
	username = strings.TrimSpace(username)
	switch {
	case host == "":
		return "", 0, "", invalid("host")
	case username == "":
		return "", 0, "", invalid("username")
	case password == "":
		return "", 0, "", invalid("password")
	}
	if port == 0 {
		port = DefaultSSHPort
	}
	if port < 1 || port > 65535 {
		return "", 0, "", fmt.Errorf("%w: port %d is out of range", ErrInvalidRequest, port)
	}
	return host, port, username, nil
}

func (r ConnectRequest) normalize() (ConnectRequest, error) {
	id, err := normalizeSessionID(r.SessionID)
	if err != nil {
		return r, err
	}
	host, port, username, err := normalizeTarget(r.Host, r.Port, r.Username, r.Password)
	if err != nil {
		return r, err
	}
	r.SessionID, r.Host, r.Port, r.Username = id, host, port, username
	return r, nil
}

func (r ExecRequest) normalize() (ExecRequest, error) {
	host, port, username, err := normalizeTarget(r.Host, r.Port, r.Username, r.Password)
	if err != nil {
		return r, err
	}
	if err := validateCommand(r.Command); err != nil {
		return r, err
	}
	r.Host, r.Port, r.Username = host, port, username
	r.EventID = strings.TrimSpace(r.EventID)
	if r.EventID == "" {
		r.EventID = "exec-" + uuid.NewString()
	}
	return r, nil
}

// validateCommand rejects blank commands. Valid commands are sent unchanged.
func validateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return invalid("command")
	}
	return nil
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
