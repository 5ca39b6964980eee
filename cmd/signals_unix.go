//go:build unix

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/stratoshell/stratoshell/pkg/logger"
	"github.com/stratoshell/stratoshell/pkg/sshutils"
	"golang.org/x/term"
)

// forwardSignals sends Ctrl+C to the session on SIGINT and follows local
// terminal resizes.
func forwardSignals(shell *shellSession) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGWINCH)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigCh:
				switch sig {
				case os.Interrupt:
					if err := shell.control(sshutils.CtrlC); err != nil {
						logger.Get().Warnf("Failed to forward Ctrl+C: %v", err)
					}
				case syscall.SIGWINCH:
					cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
					if err != nil {
						continue
					}
					if err := shell.resize(clampInt(cols), clampInt(rows)); err != nil {
						logger.Get().Warnf("Failed to resize terminal: %v", err)
					}
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
