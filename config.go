package irc

import (
	"strconv"
)

// A SecretSource resolves the opaque password references in a Config. The
// engine never holds the secrets themselves; a keychain-backed store, an
// environment lookup or a test stub all fit behind this.
type SecretSource interface {
	Secret(ref string) (secret string, ok bool)
}

// The Config for an IRC client. It is copied into the client on New and not
// mutated by the engine afterwards.
type Config struct {
	// Server is the address of the IRC server, without the port.
	Server string `json:"server" yaml:"server"`

	// Port to connect to. Defaults to 6667, or 6697 with TLS.
	Port int `json:"port" yaml:"port"`

	// TLS enables a secure connection.
	TLS bool `json:"tls" yaml:"tls"`

	// SkipTLSVerification disables certificate verification entirely. Do
	// not do this in production.
	SkipTLSVerification bool `json:"skipTlsVerification" yaml:"skip_tls_verification"`

	// TrustedFingerprints are hex SHA-256 certificate fingerprints accepted
	// even when chain verification fails (self-signed servers).
	TrustedFingerprints []string `json:"trustedFingerprints" yaml:"trusted_fingerprints"`

	// The nick that you go by. By default it's "IrcUser".
	Nick string `json:"nick" yaml:"nick"`

	// Alternatives are nicks to try if Nick is occupied, in order of
	// preference. By default it's your nick with numbers 1 through 9.
	Alternatives []string `json:"alternatives" yaml:"alternatives"`

	// User is sent along with all messages and commonly shown before the @
	// on join, quit, etc. Some servers tack on a ~ in front of it if you do
	// not have an ident server.
	User string `json:"user" yaml:"user"`

	// RealName is shown in WHOIS as your real name. By default "..."
	RealName string `json:"realName" yaml:"real_name"`

	// ServerPasswordRef names the PASS secret in the SecretSource. Empty
	// means the server needs no password.
	ServerPasswordRef string `json:"serverPasswordRef" yaml:"server_password_ref"`

	// AuthPasswordRef names the SASL secret in the SecretSource. Non-empty
	// makes the client request the `sasl` capability and authenticate
	// during registration.
	AuthPasswordRef string `json:"authPasswordRef" yaml:"auth_password_ref"`

	// AuthUser is the SASL account name. Defaults to Nick.
	AuthUser string `json:"authUser" yaml:"auth_user"`

	// RequireSASL aborts the connection when SASL fails instead of falling
	// back to unauthenticated registration.
	RequireSASL bool `json:"requireSasl" yaml:"require_sasl"`

	// AutoJoin channels are joined once registration completes.
	AutoJoin []string `json:"autoJoin" yaml:"auto_join"`

	// Ignores are hostmasks (wildcards allowed) whose messages are dropped.
	Ignores []string `json:"ignores" yaml:"ignores"`

	// ConnectCommands are raw lines sent right after registration.
	ConnectCommands []string `json:"connectCommands" yaml:"connect_commands"`

	// AutoReconnect schedules reconnection attempts with increasing backoff
	// after a disconnect the user didn't ask for.
	AutoReconnect bool `json:"autoReconnect" yaml:"auto_reconnect"`

	// SendRate is the number of queued lines sent per second. Defaults
	// to 2, the traditional safe rate.
	SendRate int `json:"sendRate" yaml:"send_rate"`

	// DisableFloodControl sends queued lines immediately, in order. For
	// bouncers and other trusted connections.
	DisableFloodControl bool `json:"disableFloodControl" yaml:"disable_flood_control"`

	// Encoding of inbound lines that aren't valid UTF-8: "latin1" or
	// "windows-1252". Empty keeps the bytes as-is.
	Encoding string `json:"encoding" yaml:"encoding"`

	// QuitMessage is sent with QUIT on a user-initiated disconnect.
	QuitMessage string `json:"quitMessage" yaml:"quit_message"`

	// PartMessage is the default message for /part and /leave.
	PartMessage string `json:"partMessage" yaml:"part_message"`
}

// WithDefaults returns the config with the default values filled in.
func (config Config) WithDefaults() Config {
	if config.Nick == "" {
		config.Nick = "IrcUser"
	}
	if config.User == "" {
		config.User = config.Nick
	}
	if config.RealName == "" {
		config.RealName = "..."
	}
	if config.AuthUser == "" {
		config.AuthUser = config.Nick
	}
	if config.Port <= 0 {
		if config.TLS {
			config.Port = 6697
		} else {
			config.Port = 6667
		}
	}
	if config.SendRate <= 0 {
		config.SendRate = 2
	}

	if len(config.Alternatives) == 0 {
		config.Alternatives = make([]string, 9)
		for i := 0; i < 9; i++ {
			config.Alternatives[i] = config.Nick + strconv.FormatInt(int64(i+1), 10)
		}
	}

	return config
}
