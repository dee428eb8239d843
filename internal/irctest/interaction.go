// Package irctest has a scripted fake server for driving a client through
// full protocol exchanges in tests, plus assertion helpers.
package irctest

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// An Interaction is a scripted server session. Lines run in order: Server
// lines are written to the client, Client lines are expectations matched
// against what the client sends, Callback lines run arbitrary test code at
// that point in the script.
type Interaction struct {
	wg sync.WaitGroup

	// Strict fails the script on any unexpected client line instead of
	// skipping it. Registration traffic makes non-strict the usual mode.
	Strict  bool
	Lines   []InteractionLine
	Log     []string
	Failure *InteractionFailure

	addr string
}

// InteractionLine is one step of the script. Set exactly one field. A
// trailing `*` in Client makes it a prefix match.
type InteractionLine struct {
	Client   string
	Server   string
	Callback func() error
}

// InteractionFailure describes where and how the script broke down.
type InteractionFailure struct {
	Index  int
	Result string
	NetErr error
	CBErr  error
}

// Listen starts a listener for a single client and runs the script against
// it in a separate goroutine.
func (interaction *Interaction) Listen() (addr string, err error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	interaction.addr = listener.Addr().String()

	lines := make([]InteractionLine, len(interaction.Lines))
	copy(lines, interaction.Lines)

	interaction.wg.Add(1)
	go func() {
		defer interaction.wg.Done()
		defer listener.Close()

		conn, err := listener.Accept()
		if err != nil {
			interaction.Failure = &InteractionFailure{Index: -1, NetErr: err}
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)

		for i := 0; i < len(lines); i++ {
			line := lines[i]

			switch {
			case line.Server != "":
				{
					_ = conn.SetWriteDeadline(time.Now().Add(time.Second * 2))
					if _, err := conn.Write(append([]byte(line.Server), '\r', '\n')); err != nil {
						interaction.Failure = &InteractionFailure{Index: i, NetErr: err}
						return
					}
				}

			case line.Client != "":
				{
					_ = conn.SetReadDeadline(time.Now().Add(time.Second * 2))
					input, err := reader.ReadString('\n')
					if err != nil {
						interaction.Failure = &InteractionFailure{Index: i, NetErr: err}
						return
					}
					input = strings.TrimRight(input, "\r\n")

					interaction.Log = append(interaction.Log, input)

					match := line.Client
					success := match == input
					if strings.HasSuffix(match, "*") {
						success = strings.HasPrefix(input, match[:len(match)-1])
					}

					if !success {
						if !interaction.Strict {
							i--
							continue
						}

						interaction.Failure = &InteractionFailure{Index: i, Result: input}
						return
					}
				}

			case line.Callback != nil:
				{
					if err := line.Callback(); err != nil {
						interaction.Failure = &InteractionFailure{Index: i, CBErr: err}
						return
					}
				}
			}
		}
	}()

	return interaction.addr, nil
}

// Host returns the listening host for a Config.
func (interaction *Interaction) Host() string {
	host, _, _ := net.SplitHostPort(interaction.addr)
	return host
}

// Port returns the listening port for a Config.
func (interaction *Interaction) Port() int {
	_, portStr, _ := net.SplitHostPort(interaction.addr)
	port, _ := strconv.Atoi(portStr)
	return port
}

// Wait blocks until the script has run to completion or failure. Failure is
// safe to check afterwards.
func (interaction *Interaction) Wait() {
	interaction.wg.Wait()
}
