package alert

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentRelay accepts connections but never sends the SMTP greeting,
// simulating a black-holed relay.
func silentRelay(t *testing.T) (host string, port int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	hold := make(chan struct{})
	t.Cleanup(func() { close(hold) })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				<-hold
				conn.Close()
			}()
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestSMTPMailer_ContextDeadlineUnblocksSilentRelay(t *testing.T) {
	host, port := silentRelay(t)
	m := &SMTPMailer{Host: host, Port: port, From: "alerts@firm.example"}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Send(ctx, "partner@firm.example", "subject", "body")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second,
		"a relay that never greets must not hold the caller")
}

func TestSMTPMailer_CancellationUnblocksSilentRelay(t *testing.T) {
	host, port := silentRelay(t)
	m := &SMTPMailer{Host: host, Port: port, From: "alerts@firm.example"}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := m.Send(ctx, "partner@firm.example", "subject", "body")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second,
		"cancelling the caller must abort the in-flight exchange")
}

func TestSMTPMailer_CancelledContextFailsFast(t *testing.T) {
	host, port := silentRelay(t)
	m := &SMTPMailer{Host: host, Port: port, From: "alerts@firm.example"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, "partner@firm.example", "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
}