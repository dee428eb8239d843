// Command convoirc is a line-based IRC client for poking at servers and
// exercising the engine. Input lines go through the command dispatcher;
// events print as they arrive.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/convoirc/irc"
	"github.com/convoirc/irc/handlers"
)

var flagConfig = flag.String("config", "", "Path to a YAML config file")
var flagServer = flag.String("server", "", "Server address (overrides config)")
var flagPort = flag.Int("port", 0, "Server port (overrides config)")
var flagNick = flag.String("nick", "", "Nick (overrides config)")
var flagTLS = flag.Bool("tls", false, "Connect with TLS")
var flagDebug = flag.Bool("debug", false, "Log all events")

// envSecrets resolves password references against the environment, so the
// config file never contains a secret.
type envSecrets struct{}

func (envSecrets) Secret(ref string) (string, bool) {
	return os.LookupEnv(ref)
}

func main() {
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *flagDebug {
		logrus.SetLevel(logrus.DebugLevel)
		irc.EnableDebug()
	}

	config := irc.Config{}
	if *flagConfig != "" {
		data, err := os.ReadFile(*flagConfig)
		if err != nil {
			logrus.WithError(err).Fatal("could not read config file")
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			logrus.WithError(err).Fatal("could not parse config file")
		}
	}

	if *flagServer != "" {
		config.Server = *flagServer
	}
	if *flagPort != 0 {
		config.Port = *flagPort
	}
	if *flagNick != "" {
		config.Nick = *flagNick
	}
	if *flagTLS {
		config.TLS = true
	}

	if config.Server == "" {
		logrus.Fatal("no server configured; use -server or -config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := irc.New(ctx, config, envSecrets{})

	var current irc.Conversation = client.Status()

	// Registered before handlers.Input so /target and friends are claimed
	// here instead of being rejected as unknown commands.
	client.AddHandler(func(event *irc.Event, client *irc.Client) {
		switch event.Name() {
		case "input.target":
			{
				event.Kill()

				name, _ := splitFirstWord(strings.TrimSpace(event.Text))

				if conversation := client.Channel(name); conversation != nil {
					current = conversation
				} else if conversation := client.Query(name); conversation != nil {
					current = conversation
				} else {
					current = client.Status()
				}

				fmt.Printf("-- talking to %s\n", current.Name())
			}

		case "client.trust_decision":
			{
				fmt.Printf("-- untrusted certificate, fingerprint %s\n", event.Arg(0))
				fmt.Println("-- accept for this session? (/trust or /distrust)")
			}

		case "input.trust":
			event.Kill()
			client.SetCertificateTrust(true)

		case "input.distrust":
			event.Kill()
			client.SetCertificateTrust(false)

		case "client.disconnect":
			fmt.Println("-- disconnected", event.Text)

		case "client.ready":
			fmt.Println("-- registered as", client.Nick())

		case "error.input", "error.sasl", "error.registration", "error.network", "error.server":
			fmt.Println("!!", event.Text)

		case "whois.done":
			{
				if whois, ok := event.Data.(*irc.Whois); ok {
					fmt.Printf("-- whois %s: %s@%s (%s)\n", whois.Nick, whois.User, whois.Host, whois.RealName)
				}
			}

		default:
			{
				if event.Kind() == "packet" || event.Kind() == "ctcp" || event.Kind() == "ctcp-reply" {
					printPacket(event)
				}
			}
		}
	})

	client.AddHandler(handlers.Input)
	client.AddHandler(handlers.CTCP)

	// Connect blocks through the TLS handshake, and an untrusted
	// certificate suspends the handshake until /trust or /distrust comes
	// in. The stdin loop below has to be live for that, so the dial gets
	// its own goroutine.
	go func() {
		if err := client.Connect(); err != nil {
			logrus.WithError(err).Fatal("could not connect")
		}
	}()

	go func() {
		exitSignal := make(chan os.Signal, 1)
		signal.Notify(exitSignal, os.Interrupt, syscall.SIGTERM)
		<-exitSignal

		client.Quit("")
		cancel()
	}()

	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}

		client.EmitInput(strings.TrimRight(line, "\r\n"), current)
	}
}

func printPacket(event *irc.Event) {
	sender := event.Nick
	if prefixed := event.RenderTags["prefixedNick"]; prefixed != "" {
		sender = prefixed
	}
	if sender == "" {
		sender = "server"
	}

	fmt.Printf("[%s] <%s> %s %s\n", event.Verb(), sender, strings.Join(event.Args, " "), event.Text)
}

func splitFirstWord(s string) (first, rest string) {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:]
	}

	return s, ""
}
