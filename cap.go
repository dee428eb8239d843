package irc

import (
	"encoding/base64"
	"strings"
)

// maxSASLChunk is the biggest AUTHENTICATE payload chunk the protocol
// allows per line.
const maxSASLChunk = 400

// handleCap handles CAP subcommands, both during registration and the
// cap-notify traffic after it.
func (client *Client) handleCap(event *Event) {
	capType := LookupCapType(event.Arg(1))
	tokens := strings.Fields(event.Text)
	if len(tokens) == 0 && event.Arg(2) != "*" {
		tokens = strings.Fields(event.Arg(2))
	}

	switch capType {
	case CapLS:
		{
			client.mutex.Lock()
			for _, token := range tokens {
				name, value := token, ""
				if i := strings.IndexByte(token, '='); i >= 0 {
					name, value = token[:i], token[i+1:]
				}

				client.capData[name] = value
			}
			negotiating := client.capNegotiating
			client.mutex.Unlock()

			// A `*` before the list means another LS line follows.
			if event.Arg(2) != "*" && negotiating {
				client.requestCaps()
			}
		}

	case CapACK:
		{
			client.mutex.Lock()
			for _, token := range tokens {
				if strings.HasPrefix(token, "-") {
					delete(client.capEnabled, token[1:])
					continue
				}

				client.capEnabled[token] = true
				client.capsRequested = removeToken(client.capsRequested, token)
			}
			negotiating := client.capNegotiating
			outstanding := len(client.capsRequested)
			saslAcked := client.capEnabled["sasl"]
			saslStarted := client.saslStarted
			client.mutex.Unlock()

			if negotiating {
				if saslAcked && !saslStarted && client.saslConfigured() {
					client.beginSASL()
				} else if outstanding == 0 && !client.saslInProgress() {
					client.finishCapNegotiation()
				}
			}
		}

	case CapNAK:
		{
			client.mutex.Lock()
			for _, token := range tokens {
				client.capsRequested = removeToken(client.capsRequested, token)
			}
			negotiating := client.capNegotiating
			outstanding := len(client.capsRequested)
			client.mutex.Unlock()

			if negotiating && outstanding == 0 && !client.saslInProgress() {
				client.finishCapNegotiation()
			}
		}

	case CapNew:
		{
			var request []string

			client.mutex.Lock()
			for _, token := range tokens {
				name, value := token, ""
				if i := strings.IndexByte(token, '='); i >= 0 {
					name, value = token[:i], token[i+1:]
				}

				client.capData[name] = value
				for _, supported := range supportedCaps {
					if supported == name && !client.capEnabled[name] {
						request = append(request, name)
					}
				}
			}
			client.capsRequested = append(client.capsRequested, request...)
			client.mutex.Unlock()

			if len(request) > 0 {
				client.Sendf("CAP REQ :%s", strings.Join(request, " "))
			}
		}

	case CapDel:
		{
			client.mutex.Lock()
			for _, token := range tokens {
				delete(client.capEnabled, token)
				delete(client.capData, token)
			}
			client.mutex.Unlock()
		}
	}
}

// requestCaps asks for the intersection of what the server offered and what
// the client supports.
func (client *Client) requestCaps() {
	var request []string

	client.mutex.Lock()
	for _, name := range supportedCaps {
		if name == "sasl" && !client.saslConfigured() {
			continue
		}

		if _, offered := client.capData[name]; offered && !client.capEnabled[name] {
			request = append(request, name)
		}
	}
	client.capsRequested = append(client.capsRequested, request...)
	client.mutex.Unlock()

	if len(request) == 0 {
		client.finishCapNegotiation()
		return
	}

	client.Sendf("CAP REQ :%s", strings.Join(request, " "))
}

// finishCapNegotiation sends CAP END exactly once per connection attempt
// and returns the state machine to plain registration.
func (client *Client) finishCapNegotiation() {
	client.mutex.Lock()
	if !client.capNegotiating {
		client.mutex.Unlock()
		return
	}

	client.capNegotiating = false
	if client.capTimer != nil {
		client.capTimer.Stop()
		client.capTimer = nil
	}
	if client.state == StateAuthenticating {
		client.state = StateRegistering
	}
	client.mutex.Unlock()

	client.Send("CAP END")
}

func (client *Client) saslConfigured() bool {
	return client.config.AuthPasswordRef != "" && client.secrets != nil
}

func (client *Client) saslInProgress() bool {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.saslStarted && !client.saslFinished
}

// beginSASL starts a PLAIN exchange. The server answers `AUTHENTICATE +`,
// which handleAuthenticate picks up.
func (client *Client) beginSASL() {
	mechanisms := ""

	client.mutex.Lock()
	client.saslStarted = true
	client.state = StateAuthenticating
	mechanisms = client.capData["sasl"]
	client.mutex.Unlock()

	// An advertised mechanism list without PLAIN means there's no point
	// even trying.
	if mechanisms != "" {
		found := false
		for _, mechanism := range strings.Split(mechanisms, ",") {
			if strings.EqualFold(mechanism, "PLAIN") {
				found = true
				break
			}
		}

		if !found {
			client.abortSASL("server does not support SASL PLAIN")
			return
		}
	}

	client.Send("AUTHENTICATE PLAIN")
}

// handleAuthenticate answers the server's AUTHENTICATE challenge with the
// base64 PLAIN payload, split into protocol-sized chunks.
func (client *Client) handleAuthenticate(event *Event) {
	challenge := event.Arg(0)
	if challenge == "" {
		challenge = event.Text
	}

	if challenge != "+" {
		// PLAIN has no server challenge beyond the initial go-ahead.
		return
	}

	password, ok := client.secrets.Secret(client.config.AuthPasswordRef)
	if !ok {
		client.abortSASL("credential source has no auth password")
		return
	}

	user := client.config.AuthUser
	if user == "" {
		user = client.config.Nick
	}

	payload := base64.StdEncoding.EncodeToString([]byte(user + "\x00" + user + "\x00" + password))

	for len(payload) > maxSASLChunk {
		client.Sendf("AUTHENTICATE %s", payload[:maxSASLChunk])
		payload = payload[maxSASLChunk:]
	}
	client.Sendf("AUTHENTICATE %s", payload)

	if len(payload) == maxSASLChunk {
		client.Send("AUTHENTICATE +")
	}
}

// handleSASLResult closes out the exchange on the 90x numerics.
func (client *Client) handleSASLResult(success bool, event *Event) {
	client.mutex.Lock()
	client.saslFinished = true
	negotiating := client.capNegotiating
	client.mutex.Unlock()

	if success {
		if negotiating {
			client.finishCapNegotiation()
		}
		return
	}

	errorEvent := NewErrorEvent("sasl", event.Text)
	client.EmitNonBlocking(errorEvent)

	if client.config.RequireSASL {
		client.mutex.Lock()
		client.suppressReconnect = true
		client.mutex.Unlock()

		client.Quit("SASL authentication failed")
		return
	}

	if negotiating {
		client.finishCapNegotiation()
	}
}

// abortSASL tells the server to stop the exchange and treats it as a
// failure.
func (client *Client) abortSASL(reason string) {
	client.Send("AUTHENTICATE *")

	event := NewErrorEvent("sasl", reason)
	client.handleSASLResult(false, &event)
}

func removeToken(tokens []string, token string) []string {
	for i := range tokens {
		if tokens[i] == token {
			return append(tokens[:i], tokens[i+1:]...)
		}
	}

	return tokens
}
