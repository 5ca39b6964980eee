//go:build !unix

package cmd

import (
	"os"
	"os/signal"

	"github.com/stratoshell/stratoshell/pkg/logger"
	"github.com/stratoshell/stratoshell/pkg/sshutils"
)

// forwardSignals sends Ctrl+C to the session on SIGINT.
func forwardSignals(shell *shellSession) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				if err := shell.control(sshutils.CtrlC); err != nil {
					logger.Get().Warnf("Failed to forward Ctrl+C: %v", err)
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
