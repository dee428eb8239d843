package irc

import (
	"context"
	"crypto/rand"
	"crypto/x509"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	mathRand "math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/convoirc/irc/ircutil"
	"github.com/convoirc/irc/isupport"
	"github.com/convoirc/irc/list"
)

// supportedCaps are the IRCv3 capabilities this client knows how to honor.
// Negotiation requests the intersection of this list and what the server
// advertises.
var supportedCaps = []string{
	"server-time",
	"cap-notify",
	"multi-prefix",
	"userhost-in-names",
	"account-notify",
	"away-notify",
	"extended-join",
	"chghost",
	"account-tag",
	"sasl",
}

// ErrConversationAlreadyAdded is returned by Client.AddConversation if that
// conversation has already been added to the client.
var ErrConversationAlreadyAdded = errors.New("irc: conversation already added")

// ErrConversationConflict is returned by Client.AddConversation if there
// already exists a conversation matching the name and kind.
var ErrConversationConflict = errors.New("irc: conversation name and kind match existing conversation")

// ErrConversationNotFound is returned by Client.RemoveConversation if the
// conversation is not part of the client's list.
var ErrConversationNotFound = errors.New("irc: conversation not found")

// ErrConversationIsStatus is returned by Client.RemoveConversation for the
// status conversation, which cannot be removed.
var ErrConversationIsStatus = errors.New("irc: cannot remove status conversation")

// ErrDestroyed is returned by Connect after Destroy.
var ErrDestroyed = errors.New("irc: client destroyed")

const (
	keepaliveInterval = 120 * time.Second
	silenceDeadline   = 240 * time.Second
	capTimeout        = 10 * time.Second
	trustTimeout      = 2 * time.Minute
	reconnectBase     = 5 * time.Second
	reconnectCap      = 5 * time.Minute
)

// A Client is an IRC client. You need to use New to construct it.
type Client struct {
	id      string
	config  Config
	secrets SecretSource
	log     *logrus.Entry

	mutex  sync.RWMutex
	conn   *Conn
	state  ConnState
	ctx    context.Context
	cancel context.CancelFunc

	events chan *Event

	lastReceived time.Time
	pingSent     bool

	userDisconnect    bool
	suppressReconnect bool
	reconnectStopped  bool
	reconnectAttempts int
	reconnectTimer    *time.Timer
	scheduledTimers   map[*time.Timer]struct{}

	capEnabled     map[string]bool
	capData        map[string]string
	capsRequested  []string
	capNegotiating bool
	capTimer       *time.Timer

	saslStarted  bool
	saslFinished bool
	nickAttempts int

	trustPending chan bool

	nick     string
	user     string
	host     string
	isupport isupport.ISupport
	values   map[string]interface{}

	status          *Status
	conversations   []Conversation
	conversationIds map[Conversation]string

	whoisRecords map[string]*Whois
	whoRecords   map[string][]list.User
	listRecords  []ChannelListing

	handlerMutex sync.RWMutex
	handlers     []Handler
}

// New creates a new client. The context can be context.Background if you
// want to manually tear down clients upon quitting. The secrets source may
// be nil if the config references no passwords.
func New(ctx context.Context, config Config, secrets SecretSource) *Client {
	client := &Client{
		id:              generateClientID(),
		config:          config.WithDefaults(),
		secrets:         secrets,
		values:          make(map[string]interface{}),
		events:          make(chan *Event, 64),
		capEnabled:      make(map[string]bool),
		capData:         make(map[string]string),
		conversationIds: make(map[Conversation]string, 16),
		scheduledTimers: make(map[*time.Timer]struct{}),
		whoisRecords:    make(map[string]*Whois),
		whoRecords:      make(map[string][]list.User),
		status:          &Status{},
	}

	client.log = logrus.WithField("client", client.id)
	client.AddConversation(client.status)

	client.ctx, client.cancel = context.WithCancel(ctx)

	go client.handleEventLoop()

	return client
}

// Context gets the client's context. It's cancelled if the parent context
// used in New is, or Destroy is called.
func (client *Client) Context() context.Context {
	return client.ctx
}

// ID gets the unique identifier for the client, which could be used in data
// structures.
func (client *Client) ID() string {
	return client.id
}

// Config gets a copy of the client's configuration.
func (client *Client) Config() Config {
	return client.config
}

// Nick gets the nick of the client
func (client *Client) Nick() string {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.nick
}

// User gets the user/ident of the client
func (client *Client) User() string {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.user
}

// Host gets the hostname of the client
func (client *Client) Host() string {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.host
}

// State gets the connection lifecycle state.
func (client *Client) State() ConnState {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.state
}

// Ready returns true once registration has completed, until disconnect.
func (client *Client) Ready() bool {
	return client.State() == StateReady
}

// CapEnabled returns true if the named IRCv3 capability was acknowledged by
// the server on this connection.
func (client *Client) CapEnabled(name string) bool {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return name != "" && client.capEnabled[name]
}

// ISupport gets the client's ISupport. This is mutable, and changes to it
// *will* affect the client.
func (client *Client) ISupport() *isupport.ISupport {
	return &client.isupport
}

// AddHandler hooks a handler into this client's event loop.
func (client *Client) AddHandler(handler Handler) {
	client.handlerMutex.Lock()
	client.handlers = append(client.handlers, handler)
	client.handlerMutex.Unlock()
}

// Connect dials the configured server and starts the connection lifecycle.
// The state machine takes it from there; progress arrives as `client.*`
// events.
func (client *Client) Connect() (err error) {
	if client.Destroyed() {
		return ErrDestroyed
	}

	if client.Connected() {
		client.Disconnect()
	}

	client.isupport.Reset()

	client.mutex.Lock()
	client.state = StateConnecting
	client.userDisconnect = false
	client.suppressReconnect = false
	client.reconnectStopped = false
	client.nickAttempts = 0
	client.saslStarted = false
	client.saslFinished = false
	client.capNegotiating = false
	client.capsRequested = nil
	for key := range client.capEnabled {
		delete(client.capEnabled, key)
	}
	conn := NewConn(client.config, client.log)
	client.conn = conn
	client.mutex.Unlock()

	conn.LineReceived = func(line string) {
		event, err := ParsePacket(line)
		if err != nil {
			client.log.WithError(err).WithField("line", line).Debug("dropped malformed line")
			return
		}

		client.Emit(event)
	}
	conn.Disconnected = func(err error) {
		event := NewEvent("client", "disconnect")
		if err != nil {
			event.Text = err.Error()
		}

		client.EmitNonBlocking(event)
	}
	conn.TrustDecision = client.requestTrustDecision

	client.EmitSync(context.Background(), NewEvent("client", "connecting"))

	err = conn.Connect(client.config.Server, client.config.Port, client.config.TLS)
	if err != nil {
		client.mutex.Lock()
		client.state = StateDisconnected
		client.conn = nil
		client.mutex.Unlock()

		event := NewEvent("client", "disconnect")
		event.Text = err.Error()
		client.Emit(event)

		return err
	}

	client.Emit(NewEvent("client", "connect"))

	return nil
}

// Connected returns true if the client has a connection
func (client *Client) Connected() bool {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.conn != nil && client.conn.Connected()
}

// Disconnect tears the connection down on purpose: no QUIT message, no
// reconnection attempt. It returns ErrNoConnection if there is none.
func (client *Client) Disconnect() error {
	client.mutex.Lock()
	conn := client.conn
	client.userDisconnect = true
	if conn != nil {
		client.state = StateDisconnecting
	}
	client.mutex.Unlock()

	if conn == nil {
		return ErrNoConnection
	}

	conn.Close()
	return nil
}

// Quit sends QUIT with the message (or the configured one) and closes like
// Disconnect.
func (client *Client) Quit(message string) {
	if message == "" {
		message = client.config.QuitMessage
	}

	client.mutex.Lock()
	conn := client.conn
	client.userDisconnect = true
	if conn != nil {
		client.state = StateDisconnecting
	}
	client.mutex.Unlock()

	if conn == nil {
		return
	}

	if message != "" {
		_ = conn.Send("QUIT :" + message)
	} else {
		_ = conn.Send("QUIT")
	}

	conn.Close()
}

// StopReconnecting cancels a scheduled reconnection attempt and keeps
// further ones from being scheduled until the next explicit Connect.
func (client *Client) StopReconnecting() {
	client.mutex.Lock()
	defer client.mutex.Unlock()

	client.reconnectStopped = true
	client.reconnectAttempts = 0
	if client.reconnectTimer != nil {
		client.reconnectTimer.Stop()
		client.reconnectTimer = nil
	}
}

// Send sends a line straight to the server, ahead of the flood-control
// queue. A CRLF is added if not provided.
func (client *Client) Send(line string) error {
	client.mutex.RLock()
	conn := client.conn
	client.mutex.RUnlock()

	if conn == nil {
		return ErrNoConnection
	}

	err := conn.Send(line)
	if err != nil && err != ErrNoConnection {
		client.EmitNonBlocking(NewErrorEvent("network", err.Error()))
	}

	return err
}

// Sendf is Send with a fmt.Sprintf
func (client *Client) Sendf(format string, a ...interface{}) error {
	return client.Send(fmt.Sprintf(format, a...))
}

// SendQueued appends a message to the flood-controlled queue. It always
// returns immediately; failed sends are discarded quietly.
func (client *Client) SendQueued(line string) {
	client.mutex.RLock()
	conn := client.conn
	client.mutex.RUnlock()

	if conn != nil {
		conn.SendQueued(line)
	}
}

// SendQueuedf is SendQueued with a fmt.Sprintf
func (client *Client) SendQueuedf(format string, a ...interface{}) {
	client.SendQueued(fmt.Sprintf(format, a...))
}

// Emit sends an event through the client's event loop. It will return
// immediately unless the internal channel is filled up. The returned context
// can be used to wait for the event, or the client's destruction.
func (client *Client) Emit(event Event) context.Context {
	event.ctx, event.cancel = context.WithCancel(client.ctx)

	// The events channel closes on Destroy; a transport callback racing
	// that is dropped rather than crashing. The event context still ends,
	// through the client context.
	defer func() { _ = recover() }()

	client.events <- &event

	return event.ctx
}

// EmitNonBlocking is just like Emit, but it will spin off a goroutine if the
// channel is full. This lets it be called from other handlers without ever
// blocking. See Emit for what the returned context is for.
func (client *Client) EmitNonBlocking(event Event) context.Context {
	event.ctx, event.cancel = context.WithCancel(client.ctx)

	defer func() { _ = recover() }()

	select {
	case client.events <- &event:
	default:
		go func() {
			defer func() { _ = recover() }()
			client.events <- &event
		}()
	}

	return event.ctx
}

// EmitSync emits an event and waits for either its context to complete or
// the one passed to it (e.g. a request's context).
func (client *Client) EmitSync(ctx context.Context, event Event) (err error) {
	eventCtx := client.Emit(event)

	select {
	case <-eventCtx.Done():
		{
			if err := eventCtx.Err(); err != context.Canceled {
				return err
			}

			return nil
		}
	case <-ctx.Done():
		{
			return ctx.Err()
		}
	}
}

// EmitInput parses a line of user input and emits it pre-routed to the
// given conversation.
func (client *Client) EmitInput(line string, conversation Conversation) context.Context {
	event := ParseInput(line)

	if conversation != nil {
		event.conversations = append(event.conversations, conversation)
	}

	return client.Emit(event)
}

// Value gets a client value.
func (client *Client) Value(key string) (v interface{}, ok bool) {
	client.mutex.RLock()
	v, ok = client.values[key]
	client.mutex.RUnlock()

	return
}

// SetValue sets a client value.
func (client *Client) SetValue(key string, value interface{}) {
	client.mutex.Lock()
	client.values[key] = value
	client.mutex.Unlock()
}

// Destroy destroys the client, which will lead to a disconnect. Cancelling
// the parent context will do the same.
func (client *Client) Destroy() {
	client.Disconnect()
	client.cancel()
	close(client.events)
}

// Destroyed returns true if the client has been destroyed, either by
// Destroy or the parent context.
func (client *Client) Destroyed() bool {
	select {
	case <-client.ctx.Done():
		return true
	default:
		return false
	}
}

// Schedule runs a line of input against the conversation after the delay,
// unless cancelled first. All scheduled lines are cancelled when the
// connection goes away, so a stale timer can't poke a superseded connection.
func (client *Client) Schedule(delay time.Duration, line string, conversation Conversation) (cancel func()) {
	var timer *time.Timer

	timer = time.AfterFunc(delay, func() {
		client.mutex.Lock()
		_, live := client.scheduledTimers[timer]
		delete(client.scheduledTimers, timer)
		client.mutex.Unlock()

		if live && !client.Destroyed() {
			client.EmitInput(line, conversation)
		}
	})

	client.mutex.Lock()
	client.scheduledTimers[timer] = struct{}{}
	client.mutex.Unlock()

	return func() {
		client.mutex.Lock()
		delete(client.scheduledTimers, timer)
		client.mutex.Unlock()

		timer.Stop()
	}
}

func (client *Client) cancelScheduled() {
	client.mutex.Lock()
	for timer := range client.scheduledTimers {
		timer.Stop()
		delete(client.scheduledTimers, timer)
	}
	if client.capTimer != nil {
		client.capTimer.Stop()
		client.capTimer = nil
	}
	client.mutex.Unlock()
}

// Status gets the client's status conversation.
func (client *Client) Status() *Status {
	return client.status
}

// Conversation gets a conversation by kind and name, or nil.
func (client *Client) Conversation(kind string, name string) Conversation {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	for _, conversation := range client.conversations {
		if conversation.Kind() == kind && strings.EqualFold(conversation.Name(), name) {
			return conversation
		}
	}

	return nil
}

// Channel is a shorthand for getting a channel conversation and type
// asserting it.
func (client *Client) Channel(name string) *Channel {
	conversation := client.Conversation("channel", name)
	if conversation == nil {
		return nil
	}

	return conversation.(*Channel)
}

// Query is a shorthand for getting a query conversation and type asserting
// it.
func (client *Client) Query(name string) *Query {
	conversation := client.Conversation("query", name)
	if conversation == nil {
		return nil
	}

	return conversation.(*Query)
}

// Channels lists the client's channel conversations.
func (client *Client) Channels() []*Channel {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	result := make([]*Channel, 0, len(client.conversations))
	for _, conversation := range client.conversations {
		if channel, ok := conversation.(*Channel); ok {
			result = append(result, channel)
		}
	}

	return result
}

// Queries lists the client's query conversations.
func (client *Client) Queries() []*Query {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	result := make([]*Query, 0, len(client.conversations))
	for _, conversation := range client.conversations {
		if query, ok := conversation.(*Query); ok {
			result = append(result, query)
		}
	}

	return result
}

// AddConversation adds a conversation to the client, generating a unique ID
// for it.
func (client *Client) AddConversation(conversation Conversation) (id string, err error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()

	for i := range client.conversations {
		if conversation == client.conversations[i] {
			err = ErrConversationAlreadyAdded
			return
		} else if conversation.Kind() == client.conversations[i].Kind() && strings.EqualFold(conversation.Name(), client.conversations[i].Name()) {
			err = ErrConversationConflict
			return
		}
	}

	id = generateClientID()
	client.conversations = append(client.conversations, conversation)
	client.conversationIds[conversation] = id

	return
}

// RemoveConversation removes a conversation from the client.
func (client *Client) RemoveConversation(conversation Conversation) (id string, err error) {
	if conversation == client.status {
		return "", ErrConversationIsStatus
	}

	client.mutex.Lock()
	defer client.mutex.Unlock()

	for i := range client.conversations {
		if conversation == client.conversations[i] {
			id = client.conversationIds[conversation]

			client.conversations = append(client.conversations[:i], client.conversations[i+1:]...)
			delete(client.conversationIds, conversation)

			return
		}
	}

	err = ErrConversationNotFound
	return
}

// FindUser checks each channel to find user info about a user.
func (client *Client) FindUser(nick string) (u list.User, ok bool) {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	for _, conversation := range client.conversations {
		channel, ok := conversation.(*Channel)
		if !ok {
			continue
		}

		user, ok := channel.UserList().User(nick)
		if !ok {
			continue
		}

		return user, true
	}

	return list.User{}, false
}

// IsIgnored checks a hostmask against the configured ignore list.
func (client *Client) IsIgnored(hostmask string) bool {
	for _, pattern := range client.config.Ignores {
		if ircutil.MatchMask(pattern, hostmask) {
			return true
		}
	}

	return false
}

// ClientState makes a snapshot of the client and its conversations.
func (client *Client) ClientState() ClientState {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	caps := make([]string, 0, len(client.capEnabled))
	for name, enabled := range client.capEnabled {
		if enabled {
			caps = append(caps, name)
		}
	}

	conversations := make([]ConversationState, 0, len(client.conversations))
	for _, conversation := range client.conversations {
		conversations = append(conversations, conversation.State())
	}

	return ClientState{
		ID:            client.id,
		Nick:          client.nick,
		User:          client.user,
		Host:          client.host,
		State:         client.state.String(),
		ISupport:      client.isupport.State(),
		Caps:          caps,
		Conversations: conversations,
	}
}

func (client *Client) handleEventLoop() {
	ticker := time.NewTicker(time.Second * 30)

	for {
		select {
		case event, ok := <-client.events:
			{
				if !ok {
					goto end
				}

				client.handleEvent(event)
				emit(event, client)

				event.cancel()
			}
		case <-ticker.C:
			{
				event := NewEvent("hook", "tick")
				event.ctx, event.cancel = context.WithCancel(client.ctx)

				client.handleEvent(&event)
				emit(&event, client)

				event.cancel()
			}
		case <-client.ctx.Done():
			{
				goto end
			}
		}
	}

end:

	ticker.Stop()

	client.Disconnect()
	client.cancelScheduled()
	client.StopReconnecting()

	event := NewEvent("client", "destroy")
	event.ctx, event.cancel = context.WithCancel(client.ctx)

	client.handleEvent(&event)
	emit(&event, client)

	event.cancel()
}

// handleEvent is always first and gets to break a few rules.
func (client *Client) handleEvent(event *Event) {
	// IRCv3 `server-time`
	if timeTag, ok := event.Tags["time"]; ok {
		serverTime, err := time.Parse(time.RFC3339Nano, timeTag)
		if err == nil && serverTime.Year() > 2000 {
			event.Time = serverTime
		}
	}

	switch event.kind {
	case "packet", "ctcp", "ctcp-reply":
		{
			client.mutex.Lock()
			client.lastReceived = time.Now()
			client.pingSent = false
			client.mutex.Unlock()
		}
	}

	switch event.kind {
	case "client":
		client.handleClientEvent(event)

	case "hook":
		switch event.verb {
		case "tick":
			client.handleTick()
		case "cap_timeout":
			client.finishCapNegotiation()
		}

	case "packet":
		{
			if handler, ok := packetHandlers[event.typ]; ok {
				handler(client, event)
			} else if event.typ.IsError() {
				handleErrorNumeric(client, event)
			}

			if len(event.conversations) == 0 && !event.hidden && !event.killed {
				client.handleInConversation(client.status, event)
			}
		}

	case "ctcp", "ctcp-reply":
		client.handleCTCP(event)
	}
}

func (client *Client) handleClientEvent(event *Event) {
	switch event.verb {
	case "connect":
		client.beginRegistration()

	case "disconnect":
		client.handleDisconnected(event)
	}
}

// beginRegistration runs the Connecting -> Registering transition: CAP LS
// goes out first, then PASS (if configured), NICK and USER.
func (client *Client) beginRegistration() {
	client.mutex.Lock()
	client.state = StateRegistering
	client.capNegotiating = true
	client.lastReceived = time.Now()
	nick := client.config.Nick
	if client.nick != "" {
		nick = client.nick
	}
	client.mutex.Unlock()

	client.Send("CAP LS 302")

	if client.config.ServerPasswordRef != "" && client.secrets != nil {
		if password, ok := client.secrets.Secret(client.config.ServerPasswordRef); ok {
			client.Sendf("PASS :%s", password)
		}
	}

	client.Sendf("NICK %s", nick)
	client.Sendf("USER %s 8 * :%s", client.config.User, client.config.RealName)

	// Servers predating CAP never answer the LS; fall back to a plain
	// registration when nothing came of it in time.
	capTimer := time.AfterFunc(capTimeout, func() {
		client.EmitNonBlocking(NewEvent("hook", "cap_timeout"))
	})

	client.mutex.Lock()
	client.capTimer = capTimer
	client.mutex.Unlock()
}

func (client *Client) handleDisconnected(event *Event) {
	client.cancelScheduled()

	client.mutex.Lock()
	client.conn = nil
	client.state = StateDisconnected
	client.capNegotiating = false
	client.saslStarted = false
	client.saslFinished = false
	wasUser := client.userDisconnect
	suppressed := client.suppressReconnect || client.reconnectStopped
	client.mutex.Unlock()

	// Conversations survive for UI continuity, but their live state does
	// not: rosters empty out and channels are no longer joined.
	for _, channel := range client.Channels() {
		channel.setJoined(false)
		channel.userlist.Clear()
	}

	for nick := range client.whoisRecords {
		delete(client.whoisRecords, nick)
	}
	for target := range client.whoRecords {
		delete(client.whoRecords, target)
	}
	client.listRecords = nil

	if !wasUser && !suppressed && client.config.AutoReconnect && !client.Destroyed() {
		client.scheduleReconnect()
	}
}

func (client *Client) scheduleReconnect() {
	client.mutex.Lock()
	defer client.mutex.Unlock()

	if client.reconnectTimer != nil {
		// One attempt per disconnect; the previous timer is still pending.
		return
	}

	client.reconnectAttempts++
	delay := reconnectBase * time.Duration(1<<uint(client.reconnectAttempts-1))
	if delay > reconnectCap {
		delay = reconnectCap
	}

	client.log.WithField("delay", delay).Info("scheduling reconnect")

	client.reconnectTimer = time.AfterFunc(delay, func() {
		client.mutex.Lock()
		client.reconnectTimer = nil
		stopped := client.reconnectStopped
		client.mutex.Unlock()

		if stopped || client.Destroyed() {
			return
		}

		if err := client.Connect(); err != nil {
			client.log.WithError(err).Warn("reconnect attempt failed")
		}
	})
}

func (client *Client) handleTick() {
	client.mutex.RLock()
	state := client.state
	idle := time.Since(client.lastReceived)
	pingSent := client.pingSent
	conn := client.conn
	client.mutex.RUnlock()

	if conn == nil || state == StateDisconnected || state == StateConnecting {
		return
	}

	if idle > silenceDeadline {
		// A server that stopped talking is as gone as one that hung up.
		client.log.Warn("connection silent past deadline, closing")
		conn.Close()
		return
	}

	if idle > keepaliveInterval && !pingSent {
		client.mutex.Lock()
		client.pingSent = true
		client.mutex.Unlock()

		client.Sendf("PING :%x", mathRand.Int63())
	}
}

// fallbackNick returns the next nickname to try during registration after a
// collision: the configured alternatives in order, then the primary nick
// with an incrementing numeric suffix.
func (client *Client) fallbackNick() string {
	client.mutex.Lock()
	defer client.mutex.Unlock()

	client.nickAttempts++
	if client.nickAttempts <= len(client.config.Alternatives) {
		return client.config.Alternatives[client.nickAttempts-1]
	}

	return client.config.Nick + strconv.Itoa(client.nickAttempts-len(client.config.Alternatives))
}

// autojoin issues a JOIN for every configured auto-join channel, through
// the flood-controlled queue.
func (client *Client) autojoin() {
	for _, name := range client.config.AutoJoin {
		client.SendQueuedf("JOIN %s", name)
	}
}

// requestTrustDecision runs on the connecting goroutine while the TLS
// handshake is suspended. It surfaces the certificate to the handlers and
// waits for SetCertificateTrust, or gives up after a timeout.
func (client *Client) requestTrustDecision(cert *x509.Certificate) bool {
	decision := make(chan bool, 1)

	client.mutex.Lock()
	client.trustPending = decision
	client.mutex.Unlock()

	event := NewEvent("client", "trust_decision")
	event.Args = append(event.Args, Fingerprint(cert))
	event.Data = cert
	client.EmitNonBlocking(event)

	select {
	case accepted := <-decision:
		return accepted
	case <-time.After(trustTimeout):
		return false
	case <-client.ctx.Done():
		return false
	}
}

// SetCertificateTrust resolves a pending `client.trust_decision` event.
// Accepting lets the in-progress handshake proceed; it does not add the
// fingerprint to the configuration, that's the caller's call.
func (client *Client) SetCertificateTrust(accepted bool) {
	client.mutex.Lock()
	decision := client.trustPending
	client.trustPending = nil
	client.mutex.Unlock()

	if decision != nil {
		decision <- accepted
	}
}

func (client *Client) handleInConversations(nick string, event *Event) {
	client.mutex.RLock()
	conversations := make([]Conversation, len(client.conversations))
	copy(conversations, client.conversations)
	client.mutex.RUnlock()

	for _, conversation := range conversations {
		switch conversation := conversation.(type) {
		case *Channel:
			{
				if nick != "" {
					if _, ok := conversation.UserList().User(nick); !ok {
						continue
					}
				}

				client.handleInConversation(conversation, event)
			}
		case *Query:
			{
				if strings.EqualFold(conversation.Name(), nick) {
					client.handleInConversation(conversation, event)
				}
			}
		}
	}
}

func (client *Client) handleInConversation(conversation Conversation, event *Event) {
	if conversation == nil {
		return
	}

	for _, existing := range event.conversations {
		if existing == conversation {
			return
		}
	}

	conversation.Handle(event, client)
	event.conversations = append(event.conversations, conversation)
}

func generateClientID() string {
	bytes := make([]byte, 12)
	_, err := rand.Read(bytes)

	// Ugly fallback if crypto rand doesn't work.
	if err != nil {
		rng := mathRand.NewSource(time.Now().UnixNano())
		result := strconv.FormatInt(rng.Int63(), 16)
		for len(result) < 24 {
			result += strconv.FormatInt(rng.Int63(), 16)
		}

		return result[:24]
	}

	binary.BigEndian.PutUint32(bytes[4:], uint32(time.Now().Unix()))

	return hex.EncodeToString(bytes)
}
