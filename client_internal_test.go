package irc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoirc/irc/list"
)

func TestFallbackNick(t *testing.T) {
	client := New(context.Background(), Config{
		Nick:         "Alice",
		Alternatives: []string{"AliceAlt", "Alice_"},
	}, nil)
	defer client.Destroy()

	assert.Equal(t, "AliceAlt", client.fallbackNick())
	assert.Equal(t, "Alice_", client.fallbackNick())
	assert.Equal(t, "Alice1", client.fallbackNick())
	assert.Equal(t, "Alice2", client.fallbackNick())
}

func TestFallbackNickDefaults(t *testing.T) {
	client := New(context.Background(), Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	// WithDefaults fills in numbered alternatives.
	assert.Equal(t, "Alice1", client.fallbackNick())
	assert.Equal(t, "Alice2", client.fallbackNick())
}

func TestScheduleReconnect(t *testing.T) {
	client := New(context.Background(), Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	client.scheduleReconnect()

	client.mutex.RLock()
	timer := client.reconnectTimer
	attempts := client.reconnectAttempts
	client.mutex.RUnlock()

	require.NotNil(t, timer)
	assert.Equal(t, 1, attempts)

	// A second disconnect while a timer is pending doesn't stack another.
	client.scheduleReconnect()

	client.mutex.RLock()
	sameTimer := client.reconnectTimer
	attempts = client.reconnectAttempts
	client.mutex.RUnlock()

	assert.Equal(t, timer, sameTimer)
	assert.Equal(t, 1, attempts)

	client.StopReconnecting()

	client.mutex.RLock()
	timer = client.reconnectTimer
	stopped := client.reconnectStopped
	client.mutex.RUnlock()

	assert.Nil(t, timer)
	assert.True(t, stopped)

	// Stopped clients don't schedule new attempts either.
	client.mutex.RLock()
	allowed := !client.reconnectStopped && !client.userDisconnect && !client.suppressReconnect
	client.mutex.RUnlock()
	assert.False(t, allowed)
}

func TestWelcomeEndsCapNegotiation(t *testing.T) {
	client := New(context.Background(), Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	// A server that ignored CAP LS and registered us anyway: the timer is
	// still pending when 001 arrives.
	client.mutex.Lock()
	client.capNegotiating = true
	client.capTimer = time.AfterFunc(time.Hour, func() {})
	client.mutex.Unlock()

	event, err := ParsePacket(":test.server 001 Alice :Welcome to TestNet, Alice")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, client.EmitSync(ctx, event))

	client.mutex.RLock()
	negotiating := client.capNegotiating
	timer := client.capTimer
	client.mutex.RUnlock()

	// No flag left set and no timer left armed, so a late cap_timeout
	// can't send CAP END into a live session.
	assert.False(t, negotiating)
	assert.Nil(t, timer)
}

func TestIsIgnored(t *testing.T) {
	client := New(context.Background(), Config{
		Nick:    "Alice",
		Ignores: []string{"*!*@ignored.example.com", "Pest!*@*"},
	}, nil)
	defer client.Destroy()

	assert.True(t, client.IsIgnored("Troll!troll@ignored.example.com"))
	assert.True(t, client.IsIgnored("Pest!whatever@anywhere.net"))
	assert.False(t, client.IsIgnored("Dan!dan@example.com"))
}

func TestConversationManagement(t *testing.T) {
	client := New(context.Background(), Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	query := &Query{user: list.User{Nick: "Bob"}}
	id, err := client.AddConversation(query)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = client.AddConversation(query)
	assert.Equal(t, ErrConversationAlreadyAdded, err)

	// Same kind and name (case folded) collides even for another instance.
	_, err = client.AddConversation(&Query{user: list.User{Nick: "bob"}})
	assert.Equal(t, ErrConversationConflict, err)

	assert.Equal(t, query, client.Query("Bob"))

	_, err = client.RemoveConversation(client.status)
	assert.Equal(t, ErrConversationIsStatus, err)

	removedID, err := client.RemoveConversation(query)
	require.NoError(t, err)
	assert.Equal(t, id, removedID)

	_, err = client.RemoveConversation(query)
	assert.Equal(t, ErrConversationNotFound, err)

	assert.Nil(t, client.Query("Bob"))
}

func TestDestroyedConnectFails(t *testing.T) {
	client := New(context.Background(), Config{Nick: "Alice"}, nil)
	client.Destroy()

	// Destroy tears down through the event loop, so it lands asynchronously.
	assert.Eventually(t, client.Destroyed, time.Second, time.Millisecond*10)
	assert.Equal(t, ErrDestroyed, client.Connect())
}
