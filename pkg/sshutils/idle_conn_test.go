package sshutils

import (
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleTimeoutConnExpiresWithoutTraffic(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := newIdleTimeoutConn(client, 50*time.Millisecond)
	defer conn.Close()

	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrDeadlineExceeded))
}

func TestIdleTimeoutConnExtendsOnTraffic(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := newIdleTimeoutConn(client, 200*time.Millisecond)
	defer conn.Close()

	go func() {
		for i := 0; i < 4; i++ {
			time.Sleep(100 * time.Millisecond)
			_, _ = server.Write([]byte{'x'})
		}
	}()

	buf := make([]byte, 1)
	for i := 0; i < 4; i++ {
		_, err := conn.Read(buf)
		require.NoError(t, err)
	}
}

func TestIdleTimeoutConnDisabled(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := newIdleTimeoutConn(client, 0)
	defer conn.Close()

	go func() {
		time.Sleep(100 * time.Millisecond)
		_, _ = server.Write([]byte{'x'})
	}()

	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	require.NoError(t, err)
}

func TestIdleTimeoutConnLimitCapsDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := newIdleTimeoutConn(client, time.Hour)
	defer conn.Close()
	require.NoError(t, conn.limitUntil(time.Now().Add(50*time.Millisecond)))

	start := time.Now()
	_, err := conn.Read(make([]byte, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrDeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestIdleTimeoutConnLimitRemovedRestoresIdleDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := newIdleTimeoutConn(client, time.Hour)
	defer conn.Close()
	require.NoError(t, conn.limitUntil(time.Now().Add(50*time.Millisecond)))
	require.NoError(t, conn.limitUntil(time.Time{}))

	go func() {
		time.Sleep(150 * time.Millisecond)
		_, _ = server.Write([]byte{'x'})
	}()

	_, err := conn.Read(make([]byte, 1))
	require.NoError(t, err)
}
