package sshutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/stratoshell/stratoshell/pkg/events"
	"github.com/stratoshell/stratoshell/pkg/goroutine"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// ChannelClosedText is the text of the last meta event of an interactive session.
const ChannelClosedText = "channel closed"

const readerGoroutinePrefix = "ssh-reader:"


// readerTask forwards one interactive session's output as events until the
// channel ends or the task is aborted.
type readerTask struct {
	sessionID string
	publisher events.Publisher
	log       *logger.Logger
	cancel    context.CancelFunc
	done      chan struct{}

	mu      sync.Mutex
	aborted bool
}

func startReader(
	sessionID string,
	stdout, stderr io.Reader,
	waiter interface{ Wait() error },
	publisher events.Publisher,
	l *logger.Logger,
) *readerTask {
	ctx, cancel := context.WithCancel(context.Background())
	t := &readerTask{
		sessionID: sessionID,
		publisher: publisher,
		log:       l,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	goroutine.Go(readerGoroutinePrefix+sessionID, func() { t.run(ctx, stdout, stderr, waiter) })
	return t
}

func (t *readerTask) run(ctx context.Context, stdout, stderr io.Reader, waiter interface{ Wait() error }) {
	defer close(t.done)
	defer t.cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t.pump(ctx, stdout, events.KindStdout)
	}()
	go func() {
		defer wg.Done()
		t.pump(ctx, stderr, events.KindStderr)
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return
	}
	t.publish(events.KindMeta, exitSummary(waiter.Wait()))
	t.publish(events.KindMeta, ChannelClosedText)
}

func (t *readerTask) pump(ctx context.Context, r io.Reader, kind events.Kind) {
	var dec utf8Decoder
	buf := make([]byte, readBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if text := dec.Decode(buf[:n]); text != "" {
				t.publish(kind, text)
			}
		}
		if err != nil || ctx.Err() != nil {
			if rest := dec.Flush(); rest != "" {
				t.publish(kind, rest)
			}
			if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
				t.log.DebugWithFields("session stream ended",
					zap.String("stream", string(kind)),
					zap.Error(err))
			}
			return
		}
	}
}

// publish is a no-op once the task is aborted. Holding mu across Publish
// means abort returns only after any in-flight event has been delivered.
func (t *readerTask) publish(kind events.Kind, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.aborted {
		return
	}
	if err := t.publisher.Publish(events.New(t.sessionID, kind, text)); err != nil {
		t.log.WarnWithFields("failed to publish session event",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

// abort stops event publication immediately. The goroutines exit once the
// session's streams are closed.
func (t *readerTask) abort() {
	t.mu.Lock()
	t.aborted = true
	t.mu.Unlock()
	t.cancel()
}

func (t *readerTask) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// exitSummary renders the result of Wait as a meta event text.
func exitSummary(err error) string {
	if err == nil {
		return "exit status 0"
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		if sig := exitErr.Signal(); sig != "" {
			return fmt.Sprintf("terminated by signal %s", sig)
		}
		return fmt.Sprintf("exit status %d", exitErr.ExitStatus())
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return "exit status unavailable"
	}
	return fmt.Sprintf("session ended: %v", err)
}
