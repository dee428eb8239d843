package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/convoirc/irc"
)

const clientinfoReply = "ACTION CLIENTINFO PING TIME VERSION"

// CTCP answers the widely implemented CTCP queries (CLIENTINFO, VERSION,
// TIME and PING). DCC is out of scope. The VERSION reply can be overridden
// through the `ctcp.version.reply` client value.
func CTCP(event *irc.Event, client *irc.Client) {
	if event.Kind() != "ctcp" {
		return
	}

	switch strings.ToUpper(event.Verb()) {
	case "CLIENTINFO":
		{
			client.SendCTCPReply(event.Nick, "CLIENTINFO", clientinfoReply)
			event.Hide()
		}
	case "VERSION":
		{
			version := "convoirc v1.0"
			if v, ok := client.Value("ctcp.version.reply"); ok {
				if s, ok := v.(string); ok {
					version = s
				}
			}

			client.SendCTCPReply(event.Nick, "VERSION", version)
			event.Hide()
		}
	case "TIME":
		{
			client.SendCTCPReply(event.Nick, "TIME", time.Now().Local().Format(time.RFC1123))
			event.Hide()
		}
	case "PING":
		{
			// Echo the payload untouched so the sender can compute the
			// round trip.
			client.SendCTCPReply(event.Nick, "PING", event.Text)
			event.Hide()
		}
	}
}

func timestampToken() string {
	return strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 10)
}
