package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stratoshell/stratoshell/pkg/display"
	"github.com/stratoshell/stratoshell/pkg/events"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"github.com/stratoshell/stratoshell/pkg/sshutils"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const keySSHPassword = "ssh.password"

type sshTargetFlags struct {
	host      string
	port      int
	user      string
	password  string
	eventsURL string
}

func (f *sshTargetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", "", "Server address")
	cmd.Flags().IntVar(&f.port, "port", sshutils.DefaultSSHPort, "SSH port")
	cmd.Flags().StringVar(&f.user, "user", "root", "Login user")
	cmd.Flags().StringVar(&f.password, "password", "",
		"Login password (falls back to "+envPrefix+"_SSH_PASSWORD, then a prompt)")
	cmd.Flags().StringVar(&f.eventsURL, "events-url", "", "Also stream session events to this websocket URL")
	_ = cmd.MarkFlagRequired("host")
}

// resolvePassword never logs the value it returns.
func (f *sshTargetFlags) resolvePassword(cmd *cobra.Command) (string, error) {
	if f.password != "" {
		return f.password, nil
	}
	if pw := viper.GetString(keySSHPassword); pw != "" {
		return pw, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("password is required, pass --password or set %s_SSH_PASSWORD", envPrefix)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s@%s's password: ", f.user, f.host)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// eventSink dials the websocket sink when a URL is configured. The returned
// close function is always safe to call.
func (f *sshTargetFlags) eventSink(ctx context.Context) (events.Publisher, func(), error) {
	url := f.eventsURL
	if url == "" {
		url = viper.GetString(keyEventsURL)
	}
	if url == "" {
		return nil, func() {}, nil
	}
	sink, err := events.DialWebSocketSink(ctx, url)
	if err != nil {
		return nil, func() {}, err
	}
	return sink, func() {
		if err := sink.Close(); err != nil {
			logger.Get().DebugWithFields("failed to close event sink", zap.Error(err))
		}
	}, nil
}

func newSSHCmd() *cobra.Command {
	sshCmd := &cobra.Command{Use: "ssh", Short: "Run commands and shells on servers"}
	sshCmd.AddCommand(newSSHExecCmd(), newSSHShellCmd())
	return sshCmd
}

func newSSHExecCmd() *cobra.Command {
	var (
		target  sshTargetFlags
		eventID string
	)
	execCmd := &cobra.Command{
		Use:   "exec --host HOST [flags] -- COMMAND",
		Short: "Run one command on a fresh connection and wait for it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			password, err := target.resolvePassword(cmd)
			if err != nil {
				return err
			}
			sink, closeSink, err := target.eventSink(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSink()

			executor := sshutils.NewExecutor(sshDialer(), sink)
			executor.IdleTimeout = viper.GetDuration(keyExecIdleTimeout)

			result, execErr := executor.Exec(cmd.Context(), sshutils.ExecRequest{
				Host:     target.host,
				Port:     target.port,
				Username: target.user,
				Password: password,
				Command:  strings.Join(args, " "),
				EventID:  eventID,
			})
			if result != nil {
				if format == formatTable {
					fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
					fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
				} else if err := render(cmd, result, nil, nil); err != nil {
					return err
				}
			}
			if execErr != nil {
				return execErr
			}
			if result.ExitStatus != nil && *result.ExitStatus != 0 {
				return fmt.Errorf("remote command exited with status %d", *result.ExitStatus)
			}
			return nil
		},
	}
	target.register(execCmd)
	execCmd.Flags().StringVar(&eventID, "event-id", "", "ID carried by the streamed events (generated when empty)")
	return execCmd
}

func newSSHShellCmd() *cobra.Command {
	var (
		target    sshTargetFlags
		sessionID string
	)
	shellCmd := &cobra.Command{
		Use:   "shell --host HOST [flags]",
		Short: "Open an interactive shell",
		Long: `Open an interactive shell. Each input line is sent to the remote shell.
Lines starting with ~ are local commands:

  ~ctrl c|d|u       send a control character
  ~resize COLS ROWS  resize the remote terminal
  ~quit             disconnect

Ctrl+C is forwarded to the remote shell.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := target.resolvePassword(cmd)
			if err != nil {
				return err
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			return runShell(cmd, target, sshutils.ConnectRequest{
				SessionID: sessionID,
				Host:      target.host,
				Port:      target.port,
				Username:  target.user,
				Password:  password,
			})
		},
	}
	target.register(shellCmd)
	shellCmd.Flags().StringVar(&sessionID, "session-id", "", "Session ID (generated when empty)")
	return shellCmd
}

func runShell(cmd *cobra.Command, target sshTargetFlags, req sshutils.ConnectRequest) error {
	ctx := cmd.Context()

	bus := events.NewBus(events.DefaultBusBuffer)
	defer bus.Close()

	sink, closeSink, err := target.eventSink(ctx)
	if err != nil {
		return err
	}
	defer closeSink()

	registry := sshutils.NewRegistry(sshDialer(), events.Multi(bus, sink))
	registry.IdleTimeout = viper.GetDuration(keyInteractiveIdleTimeout)
	defer registry.CloseAll()

	// The terminal must not lose output, so the reader waits on it. Deferred
	// after CloseAll so the reader is released before CloseAll stops it.
	sub, unsubscribe := bus.SubscribeBlocking()
	defer unsubscribe()

	var info *sshutils.ConnectionInfo
	err = withSpinner(cmd, "Connecting", func() (err error) {
		info, err = registry.Connect(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Connected to %s@%s:%d (session %s)\n",
		info.Username, info.Host, info.Port, info.SessionID)

	closed := make(chan struct{})
	go func() {
		seen := false
		for ev := range sub {
			if seen {
				continue
			}
			writeEvent(cmd.OutOrStdout(), cmd.ErrOrStderr(), ev)
			if ev.Kind == events.KindMeta && ev.Text == sshutils.ChannelClosedText {
				seen = true
				close(closed)
			}
		}
		if !seen {
			close(closed)
		}
	}()

	shell := newShellSession(registry, info.SessionID)
	if display.IsTerminal(cmd.OutOrStdout()) {
		if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			_ = shell.resize(clampInt(cols), clampInt(rows))
		}
	}
	stopSignals := forwardSignals(shell)
	defer stopSignals()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-closed:
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := shell.handleLine(line)
			var usage usageError
			switch {
			case err == nil:
			case errors.Is(err, errQuit):
				return nil
			case errors.As(err, &usage):
				fmt.Fprintln(cmd.ErrOrStderr(), usage.Error())
			default:
				return err
			}
		}
	}
}

func writeEvent(stdout, stderr io.Writer, ev events.StreamEvent) {
	switch ev.Kind {
	case events.KindStdout:
		fmt.Fprint(stdout, ev.Text)
	case events.KindStderr:
		fmt.Fprint(stderr, ev.Text)
	default:
		fmt.Fprintf(stderr, "[%s]\n", ev.Text)
	}
}

func clampInt(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
