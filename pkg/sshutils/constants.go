package sshutils

import "time"

var (
	// InteractiveIdleTimeout closes a shell connection after this long without traffic.
	InteractiveIdleTimeout = 30 * time.Minute
	// ExecIdleTimeout is longer so slow one-shot commands are not cut off.
	ExecIdleTimeout = 2 * time.Hour
	SSHDialTimeout  = 10 * time.Second
)

const (
	DefaultSSHPort = 22

	PTYTerm = "xterm"
	PTYCols = 220
	PTYRows = 64

	MinCols = 40
	MaxCols = 400
	MinRows = 10
	MaxRows = 180

	readBufferSize = 4096
)
