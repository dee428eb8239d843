package irc

import (
	"strings"
	"time"

	"github.com/convoirc/irc/ircutil"
	"github.com/convoirc/irc/list"
)

// SendMessage sends a PRIVMSG to the target, cutting it into multiple lines
// if it would overflow the relayed line length. Without `echo-message` the
// server never repeats our own messages back, so each line is echoed into
// the conversation locally.
func (client *Client) SendMessage(target, text string) {
	overhead := ircutil.MessageOverhead(client.Nick(), client.User(), client.Host(), target, false)

	for _, line := range ircutil.CutMessage(text, overhead) {
		client.SendQueuedf("PRIVMSG %s :%s", target, line)
		client.echo(target, EventPrivmsg, line)
	}
}

// SendAction sends a CTCP ACTION ("/me") to the target.
func (client *Client) SendAction(target, text string) {
	overhead := ircutil.MessageOverhead(client.Nick(), client.User(), client.Host(), target, true)

	for _, line := range ircutil.CutMessage(text, overhead) {
		client.SendQueuedf("PRIVMSG %s :\x01ACTION %s\x01", target, line)
		client.echo(target, EventAction, line)
	}
}

// SendNotice sends a NOTICE to the target, cut like SendMessage.
func (client *Client) SendNotice(target, text string) {
	overhead := ircutil.MessageOverhead(client.Nick(), client.User(), client.Host(), target, false)

	for _, line := range ircutil.CutMessage(text, overhead) {
		client.SendQueuedf("NOTICE %s :%s", target, line)
		client.echo(target, EventNotice, line)
	}
}

// SendCTCP sends a CTCP query to the target.
func (client *Client) SendCTCP(target, verb, text string) {
	if text != "" {
		client.SendQueuedf("PRIVMSG %s :\x01%s %s\x01", target, verb, text)
	} else {
		client.SendQueuedf("PRIVMSG %s :\x01%s\x01", target, verb)
	}
}

// SendCTCPReply answers a CTCP query. Replies go as NOTICE to avoid the
// query/reply loop two naive clients would otherwise get into.
func (client *Client) SendCTCPReply(target, verb, text string) {
	if text != "" {
		client.SendQueuedf("NOTICE %s :\x01%s %s\x01", target, verb, text)
	} else {
		client.SendQueuedf("NOTICE %s :\x01%s\x01", target, verb)
	}
}

// Join joins a channel. The conversation appears once the server confirms
// with the JOIN echo.
func (client *Client) Join(name, key string) {
	if key != "" {
		client.SendQueuedf("JOIN %s %s", name, key)
	} else {
		client.SendQueuedf("JOIN %s", name)
	}
}

// Part leaves a channel with the message, or the configured part message.
// The conversation sticks around, unjoined.
func (client *Client) Part(name, message string) {
	if message == "" {
		message = client.config.PartMessage
	}

	if message != "" {
		client.SendQueuedf("PART %s :%s", name, message)
	} else {
		client.SendQueuedf("PART %s", name)
	}
}

// Rejoin parts and rejoins a channel, keeping its key if one is recorded in
// the channel's mode set.
func (client *Client) Rejoin(name string) {
	key := ""
	if channel := client.Channel(name); channel != nil {
		key = channel.Modes()['k']
	}

	client.Part(name, "")
	client.Join(name, key)
}

// Kick removes a user from a channel, privileges permitting.
func (client *Client) Kick(channelName, nick, reason string) {
	if reason != "" {
		client.SendQueuedf("KICK %s %s :%s", channelName, nick, reason)
	} else {
		client.SendQueuedf("KICK %s %s", channelName, nick)
	}
}

// Ban sets a +b on the mask, or on a mask derived from the nick's host if
// the roster knows it.
func (client *Client) Ban(channelName, mask string) {
	client.SendQueuedf("MODE %s +b %s", channelName, client.banMask(channelName, mask))
}

// Unban removes a +b.
func (client *Client) Unban(channelName, mask string) {
	client.SendQueuedf("MODE %s -b %s", channelName, client.banMask(channelName, mask))
}

// KickBan is Ban followed by Kick.
func (client *Client) KickBan(channelName, nick, reason string) {
	client.Ban(channelName, nick)
	client.Kick(channelName, nick, reason)
}

// SetTopic changes a channel topic.
func (client *Client) SetTopic(channelName, topic string) {
	client.SendQueuedf("TOPIC %s :%s", channelName, topic)
}

// Mode sends a raw mode change for a channel or the client itself.
func (client *Client) Mode(target, modes string) {
	client.SendQueuedf("MODE %s %s", target, modes)
}

// ChangeNick asks the server for a new nickname. The local nick updates
// when the server confirms.
func (client *Client) ChangeNick(nick string) {
	client.SendQueuedf("NICK %s", nick)
}

// Whois requests user info; the accumulated result arrives as a
// `whois.done` event with a *Whois payload.
func (client *Client) Whois(nick string) {
	client.SendQueuedf("WHOIS %s", nick)
}

// Who requests a WHO listing for a channel or mask; the result arrives as a
// `who.done` event.
func (client *Client) Who(target string) {
	client.SendQueuedf("WHO %s", target)
}

// ListChannels requests the channel directory; the result arrives as a
// `list.done` event with a []ChannelListing payload.
func (client *Client) ListChannels() {
	client.SendQueued("LIST")
}

// Away marks the client away with the message, or back if it's empty.
func (client *Client) Away(message string) {
	if message != "" {
		client.SendQueuedf("AWAY :%s", message)
	} else {
		client.SendQueued("AWAY")
	}
}

// OpenQuery finds or creates the query conversation for a nick without
// sending anything.
func (client *Client) OpenQuery(nick string) *Query {
	if query := client.Query(nick); query != nil {
		return query
	}

	user, ok := client.FindUser(nick)
	if !ok {
		user = list.User{Nick: nick}
	}

	query := &Query{user: user}
	if _, err := client.AddConversation(query); err != nil {
		return nil
	}

	return query
}

// CloseConversation removes the conversation, parting the channel first if
// it's still joined.
func (client *Client) CloseConversation(conversation Conversation) error {
	if channel, ok := conversation.(*Channel); ok && channel.Joined() {
		client.Part(channel.Name(), "")
	}

	_, err := client.RemoveConversation(conversation)
	return err
}

// banMask turns a nick into `*!*@host` using the channel roster. Anything
// already mask-shaped passes through.
func (client *Client) banMask(channelName, nickOrMask string) string {
	if strings.ContainsAny(nickOrMask, "!@*") {
		return nickOrMask
	}

	if channel := client.Channel(channelName); channel != nil {
		if user, ok := channel.UserList().User(nickOrMask); ok && user.Host != "" {
			return "*!*@" + user.Host
		}
	}

	return nickOrMask + "!*@*"
}

// echo records an outbound message in the right conversation, opening a
// query when messaging someone new.
func (client *Client) echo(target string, kind EventType, text string) {
	self := list.User{Nick: client.Nick(), User: client.User(), Host: client.Host()}
	message := Message{Sender: &self, Text: text, Time: time.Now(), Kind: kind}

	if client.isupport.IsChannel(target) {
		if channel := client.Channel(target); channel != nil {
			channel.push(channel.enrichSender(message))
		}
		return
	}

	query := client.Query(target)
	if query == nil {
		query = &Query{user: list.User{Nick: target}}
		if _, err := client.AddConversation(query); err != nil {
			return
		}
	}

	query.push(message)
}
