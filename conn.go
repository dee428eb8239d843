package irc

import (
	"bufio"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"
)

// ErrNoConnection is returned if you try to do something requiring a
// connection, but there is none.
var ErrNoConnection = errors.New("irc: no connection")

// A Conn owns the socket for one server connection: it frames the inbound
// byte stream into lines, paces outbound lines through a token bucket so a
// burst of sends doesn't get the client flood-kicked, and reports lines and
// disconnects through callbacks. One logical IRC line per Send, CRLF added
// on the wire; lines are never split or merged.
type Conn struct {
	mutex  sync.RWMutex
	socket net.Conn
	sends  chan string
	cancel context.CancelFunc

	limiter  *rate.Limiter
	flood    bool
	fallback *encoding.Decoder
	log      *logrus.Entry

	trusted    []string
	skipVerify bool
	serverName string

	// LineReceived is called from the read goroutine for each complete
	// inbound line, CR/LF stripped.
	LineReceived func(line string)

	// Disconnected is called exactly once per connection when the socket
	// goes away, with the read error that ended it (nil for local Close).
	Disconnected func(err error)

	// TrustDecision is consulted when TLS chain verification fails and the
	// certificate fingerprint isn't in the trusted list. It may block (it
	// runs on the connecting goroutine, not the event loop); returning true
	// lets the handshake proceed.
	TrustDecision func(cert *x509.Certificate) bool
}

// NewConn makes an unconnected transport from the config's rate, encoding
// and trust settings.
func NewConn(config Config, log *logrus.Entry) *Conn {
	conn := &Conn{
		limiter:    rate.NewLimiter(rate.Limit(config.SendRate), config.SendRate),
		flood:      !config.DisableFloodControl,
		trusted:    config.TrustedFingerprints,
		skipVerify: config.SkipTLSVerification,
		log:        log,
	}

	switch strings.ToLower(config.Encoding) {
	case "latin1", "iso-8859-1":
		conn.fallback = charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		conn.fallback = charmap.Windows1252.NewDecoder()
	}

	return conn
}

// SetFloodControl toggles outbound pacing. Disabling it dispatches queued
// lines immediately but keeps their order.
func (conn *Conn) SetFloodControl(enabled bool) {
	conn.mutex.Lock()
	conn.flood = enabled
	conn.mutex.Unlock()
}

// Connected returns true while a socket is open.
func (conn *Conn) Connected() bool {
	conn.mutex.RLock()
	defer conn.mutex.RUnlock()

	return conn.socket != nil
}

// Connect dials the server and starts the read and send goroutines. A
// previous connection must be closed first.
func (conn *Conn) Connect(host string, port int, useTLS bool) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var socket net.Conn
	var err error

	if useTLS {
		conn.serverName = host
		socket, err = tls.DialWithDialer(&net.Dialer{Timeout: 30 * time.Second}, "tcp", addr, &tls.Config{
			ServerName: host,

			// Verification happens in verifyCertificate so the trusted
			// fingerprint list and the trust prompt get their say.
			InsecureSkipVerify:    true,
			VerifyPeerCertificate: conn.verifyCertificate,
		})
	} else {
		socket, err = net.DialTimeout("tcp", addr, 30*time.Second)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sends := make(chan string, 64)

	conn.mutex.Lock()
	conn.socket = socket
	conn.sends = sends
	conn.cancel = cancel
	conn.mutex.Unlock()

	go conn.readLoop(socket)
	go conn.sendLoop(ctx, socket, sends)

	return nil
}

// Send writes one line directly to the socket, bypassing the queue. For
// registration and PONG replies, which must not wait behind queued JOINs.
func (conn *Conn) Send(line string) error {
	conn.mutex.RLock()
	socket := conn.socket
	conn.mutex.RUnlock()

	if socket == nil {
		return ErrNoConnection
	}

	if !strings.HasSuffix(line, "\r\n") {
		line += "\r\n"
	}

	_, err := socket.Write([]byte(line))
	if err != nil {
		conn.Close()
	}

	return err
}

// SendQueued enqueues a line behind the flood throttle. It always returns
// immediately; if the queue is full a goroutine is spawned to wait for room,
// so a pathological burst may reorder against other pathological bursts but
// ordinary traffic keeps its order. Failed sends are discarded quietly so a
// dead connection's backlog isn't thrown at the next one.
func (conn *Conn) SendQueued(line string) {
	conn.mutex.RLock()
	sends := conn.sends
	conn.mutex.RUnlock()

	if sends == nil {
		return
	}

	defer func() {
		// The send channel can close under us; losing the line to a dead
		// connection is the intended outcome.
		_ = recover()
	}()

	select {
	case sends <- line:
	default:
		go func() {
			defer func() { _ = recover() }()
			sends <- line
		}()
	}
}

// Close shuts the socket down and discards any queued-but-unsent lines.
// It's safe to call with no connection open, and safe to call twice.
func (conn *Conn) Close() {
	conn.mutex.Lock()
	socket := conn.socket
	cancel := conn.cancel
	conn.socket = nil
	conn.sends = nil
	conn.cancel = nil
	conn.mutex.Unlock()

	if cancel != nil {
		cancel()
	}
	if socket != nil {
		_ = socket.Close()
	}
}

func (conn *Conn) readLoop(socket net.Conn) {
	reader := bufio.NewReader(socket)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			conn.mutex.Lock()
			closedLocally := conn.socket == nil
			conn.mutex.Unlock()

			if !closedLocally {
				conn.Close()
			} else {
				err = nil
			}

			if conn.Disconnected != nil {
				conn.Disconnected(err)
			}

			return
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if conn.fallback != nil && !utf8.ValidString(line) {
			if decoded, err := conn.fallback.String(line); err == nil {
				line = decoded
			}
		}

		if conn.LineReceived != nil {
			conn.LineReceived(line)
		}
	}
}

func (conn *Conn) sendLoop(ctx context.Context, socket net.Conn, sends <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-sends:
			if !ok {
				return
			}

			conn.mutex.RLock()
			flood := conn.flood
			conn.mutex.RUnlock()

			if flood {
				if err := conn.limiter.Wait(ctx); err != nil {
					return
				}
			}

			if !strings.HasSuffix(line, "\r\n") {
				line += "\r\n"
			}

			if _, err := socket.Write([]byte(line)); err != nil {
				conn.log.WithError(err).Debug("send failed, closing connection")
				conn.Close()
				return
			}
		}
	}
}

// Fingerprint returns the hex SHA-256 digest of a certificate, the form
// used in Config.TrustedFingerprints.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

func (conn *Conn) verifyCertificate(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if conn.skipVerify || len(rawCerts) == 0 {
		return nil
	}

	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return err
		}
		certs = append(certs, cert)
	}
	leaf := certs[0]

	fingerprint := Fingerprint(leaf)
	for _, trusted := range conn.trusted {
		if strings.EqualFold(strings.ReplaceAll(trusted, ":", ""), fingerprint) {
			return nil
		}
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}

	_, err := leaf.Verify(x509.VerifyOptions{
		DNSName:       conn.serverName,
		Intermediates: intermediates,
	})
	if err == nil {
		return nil
	}

	if conn.TrustDecision != nil && conn.TrustDecision(leaf) {
		return nil
	}

	return err
}
