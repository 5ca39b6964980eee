// Package display holds the small terminal niceties the CLI uses while it
// waits on the network.
package display

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"golang.org/x/term"
)

const spinnerDelay = 100 * time.Millisecond

// Spinner is a progress indicator that only animates on a terminal.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner starts a spinner with message on w. When w is not a terminal
// the spinner stays silent so piped output is not polluted.
func NewSpinner(w io.Writer, message string) *Spinner {
	if !IsTerminal(w) {
		return &Spinner{}
	}
	logger.Get().Debugf("Creating spinner: %s", message)

	s := spinner.New(spinner.CharSets[14], spinnerDelay, spinner.WithWriter(w))
	s.Prefix = message + " "
	_ = s.Color("green")
	s.Start()
	return &Spinner{s: s}
}

func (sp *Spinner) Stop() {
	if sp == nil || sp.s == nil {
		return
	}
	sp.s.Stop()
}

func (sp *Spinner) Active() bool {
	return sp != nil && sp.s != nil && sp.s.Active()
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
