package cmd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stratoshell/stratoshell/internal/testutil"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"github.com/stratoshell/stratoshell/pkg/sshutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellLineUsageErrors(t *testing.T) {
	shell := newShellSession(nil, "id")

	assert.ErrorIs(t, shell.handleLine("~quit"), errQuit)
	assert.NoError(t, shell.handleLine("~"))
	assert.NoError(t, shell.handleLine("   "))

	for _, line := range []string{"~ctrl", "~ctrl z", "~resize ten 20", "~resize 80", "~bogus"} {
		var usage usageError
		assert.ErrorAs(t, shell.handleLine(line), &usage, line)
	}
}

func TestShellSessionSerializesCalls(t *testing.T) {
	logger.UseTestLogger(t)
	server := testutil.StartSSHServer(t, "root", "pw")
	registry := sshutils.NewRegistry(sshutils.NewSSHDial(5*time.Second), nil)
	defer registry.CloseAll()

	_, err := registry.Connect(context.Background(), sshutils.ConnectRequest{
		SessionID: "busy", Host: server.Host, Port: server.Port, Username: "root", Password: "pw",
	})
	require.NoError(t, err)

	shell := newShellSession(registry, "busy")
	errs := make(chan error, 60)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); errs <- shell.exec("echo x") }()
		go func() { defer wg.Done(); errs <- shell.resize(100, 30) }()
		go func() { defer wg.Done(); errs <- shell.control(sshutils.CtrlU) }()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, registry.Sessions(), 1)
}

func TestLoggerConfigFollowsSettings(t *testing.T) {
	viper.Reset()
	logger.InitLoggerOutputs()
	defer func() {
		verboseMode = false
		logger.InitLoggerOutputs()
	}()

	logger.GlobalEnableFileLogger = false
	verboseMode = false
	cfg := loggerConfig()
	assert.Empty(t, cfg.FilePath)
	assert.Equal(t, logger.InfoLogLevel, cfg.Level)

	logger.GlobalEnableFileLogger = true
	verboseMode = true
	cfg = loggerConfig()
	assert.Equal(t, logger.GlobalLogPath, cfg.FilePath)
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.EnableConsole)
}

func TestSeedLoggerTagsCommandContext(t *testing.T) {
	tl := logger.UseTestLogger(t)
	c := &cobra.Command{Use: "shell"}

	seedLogger(c, nil)
	logger.FromContext(c.Context()).Info("from the command")

	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "shell", entries[0].ContextMap()["command"])
}
