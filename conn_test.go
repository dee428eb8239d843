package irc

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineSink accepts one connection and forwards every received line.
func lineSink(t *testing.T) (host string, port int, lines <-chan string, closer func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	received := make(chan string, 32)
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- conn

		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}

			received <- strings.TrimRight(line, "\r\n")
		}
	}()

	host, portStr, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, port, received, func() {
		_ = listener.Close()
		select {
		case conn := <-accepted:
			_ = conn.Close()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func TestFloodControlSpacing(t *testing.T) {
	host, port, lines, closer := lineSink(t)
	defer closer()

	conn := NewConn(Config{SendRate: 2}.WithDefaults(), logrus.WithField("test", "flood"))
	require.NoError(t, conn.Connect(host, port, false))
	defer conn.Close()

	start := time.Now()
	for i := 0; i < 4; i++ {
		conn.SendQueued(fmt.Sprintf("PRIVMSG #test :line %d", i))
	}

	for i := 0; i < 4; i++ {
		select {
		case line := <-lines:
			assert.Equal(t, fmt.Sprintf("PRIVMSG #test :line %d", i), line)
		case <-time.After(time.Second * 3):
			t.Fatalf("timed out waiting for line %d", i)
		}
	}

	// Burst of 2, then 2/s: four lines can't arrive in under a second.
	assert.GreaterOrEqual(t, time.Since(start), 800*time.Millisecond)
}

func TestFloodControlDisabled(t *testing.T) {
	host, port, lines, closer := lineSink(t)
	defer closer()

	conn := NewConn(Config{SendRate: 2}.WithDefaults(), logrus.WithField("test", "flood"))
	require.NoError(t, conn.Connect(host, port, false))
	defer conn.Close()

	conn.SetFloodControl(false)

	start := time.Now()
	for i := 0; i < 6; i++ {
		conn.SendQueued(fmt.Sprintf("NOTICE #test :line %d", i))
	}

	for i := 0; i < 6; i++ {
		select {
		case line := <-lines:
			assert.Equal(t, fmt.Sprintf("NOTICE #test :line %d", i), line)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for line %d", i)
		}
	}

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSendBypassesQueue(t *testing.T) {
	host, port, lines, closer := lineSink(t)
	defer closer()

	conn := NewConn(Config{SendRate: 1}.WithDefaults(), logrus.WithField("test", "direct"))
	require.NoError(t, conn.Connect(host, port, false))
	defer conn.Close()

	require.NoError(t, conn.Send("PONG :keepalive"))

	select {
	case line := <-lines:
		assert.Equal(t, "PONG :keepalive", line)
	case <-time.After(time.Second):
		t.Fatal("direct send did not arrive")
	}
}

func TestSendWithoutConnection(t *testing.T) {
	conn := NewConn(Config{}.WithDefaults(), logrus.WithField("test", "noconn"))

	assert.ErrorIs(t, conn.Send("PING :nope"), ErrNoConnection)
	assert.False(t, conn.Connected())

	// Queueing without a connection is a quiet no-op.
	conn.SendQueued("PRIVMSG #test :dropped")
}

func TestDisconnectedCallback(t *testing.T) {
	host, port, _, closer := lineSink(t)

	disconnected := make(chan error, 1)

	conn := NewConn(Config{}.WithDefaults(), logrus.WithField("test", "disconnect"))
	conn.Disconnected = func(err error) { disconnected <- err }

	require.NoError(t, conn.Connect(host, port, false))

	// Server goes away; the callback must fire with the read error.
	closer()

	select {
	case <-disconnected:
	case <-time.After(time.Second * 2):
		t.Fatal("Disconnected callback never fired")
	}

	assert.False(t, conn.Connected())
}
