package irc

import "time"

// A Whois accumulates the fields of a WHOIS response, which arrives as a
// handful of asynchronous numerics. The record is built up keyed by nick
// until RPL_ENDOFWHOIS closes it, then emitted as a `whois.done` event and
// forgotten.
type Whois struct {
	Nick              string    `json:"nick"`
	User              string    `json:"user"`
	Host              string    `json:"host"`
	RealName          string    `json:"realName"`
	Account           string    `json:"account,omitempty"`
	Server            string    `json:"server,omitempty"`
	ServerDescription string    `json:"serverDescription,omitempty"`
	Channels          []string  `json:"channels,omitempty"`
	Operator          bool      `json:"operator,omitempty"`
	Secure            bool      `json:"secure,omitempty"`
	Away              string    `json:"away,omitempty"`
	IdleSince         time.Time `json:"idleSince,omitempty"`
	SignedOn          time.Time `json:"signedOn,omitempty"`
}

// A ChannelListing is one row of a LIST response, accumulated until
// RPL_LISTEND closes the batch.
type ChannelListing struct {
	Name    string `json:"name"`
	Visible int    `json:"visible"`
	Topic   string `json:"topic"`
}
