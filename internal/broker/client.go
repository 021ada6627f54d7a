// Package broker connects to an MQTT broker, for ingesting frames published by
// cameras and for re-broadcasting composited canvases.
package broker

import (
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/logging"
)

var log = logging.DefaultLogger.WithTag("mqtt")

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// Client is the part of mqtt.Client used here.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

type Config struct {
	// Broker URL, e.g. "tcp://localhost:1883". A bare host:port means tcp.
	Broker   string
	ClientID string
	Username string
	Password string
}

// Connect dials the broker and returns a client that reconnects on its own.
func Connect(cfg Config) (mqtt.Client, error) {
	broker := cfg.Broker
	if !hasScheme(broker) {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		log.Info("Connected to %s as %s", broker, cfg.ClientID)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Warn("Connection to %s lost, reconnecting: %v", broker, err)
	}

	client := mqtt.NewClient(opts)
	log.Debug("Connecting to %s", broker)
	if err := wait(client.Connect(), connectTimeout); err != nil {
		return nil, errors.Wrapf(err, "mqtt connect %s", broker)
	}
	return client, nil
}

func hasScheme(s string) bool {
	return strings.Contains(s, "://")
}

var errTimeout = errors.New("timed out")

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return errTimeout
	}
	return token.Error()
}

// Subscribe registers handler for topic and waits for the broker to acknowledge.
func Subscribe(c Client, topic string, handler func(topic string, payload []byte)) error {
	token := c.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if err := wait(token, connectTimeout); err != nil {
		return errors.Wrapf(err, "subscribe %s", topic)
	}
	log.Debug("Subscribed to %s", topic)
	return nil
}

func Unsubscribe(c Client, topic string) error {
	return wait(c.Unsubscribe(topic), connectTimeout)
}
