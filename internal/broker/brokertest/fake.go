// Package brokertest provides an in-memory stand-in for an MQTT broker connection.
package brokertest

import (
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client delivers publications synchronously to matching subscriptions. It
// implements broker.Client.
type Client struct {
	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published []Message

	// Returned by every token when set.
	Err error
}

func NewClient() *Client {
	return &Client{handlers: make(map[string]mqtt.MessageHandler)}
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	var p []byte
	switch v := payload.(type) {
	case []byte:
		p = v
	case string:
		p = []byte(v)
	}
	msg := Message{topic: topic, payload: p, qos: qos}

	c.mu.Lock()
	if c.Err == nil {
		c.published = append(c.published, msg)
	}
	var matched []mqtt.MessageHandler
	for filter, h := range c.handlers {
		if Match(filter, topic) {
			matched = append(matched, h)
		}
	}
	err := c.Err
	c.mu.Unlock()

	if err == nil {
		for _, h := range matched {
			h(nil, &msg)
		}
	}
	return &token{err: err}
}

func (c *Client) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err == nil {
		c.handlers[topic] = callback
	}
	return &token{err: c.Err}
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.handlers, t)
	}
	return &token{err: c.Err}
}

// Subscribed reports whether a subscription for topic exists.
func (c *Client) Subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handlers[topic]
	return ok
}

// Published returns the messages published so far.
func (c *Client) Published() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.published...)
}

// Match reports whether topic matches an MQTT subscription filter.
func Match(filter, topic string) bool {
	fs, ts := strings.Split(filter, "/"), strings.Split(topic, "/")
	for i, f := range fs {
		if f == "#" {
			return true
		}
		if i >= len(ts) || (f != "+" && f != ts[i]) {
			return false
		}
	}
	return len(fs) == len(ts)
}

type Message struct {
	topic   string
	payload []byte
	qos     byte
}

func (m *Message) Duplicate() bool   { return false }
func (m *Message) Qos() byte         { return m.qos }
func (m *Message) Retained() bool    { return false }
func (m *Message) Topic() string     { return m.topic }
func (m *Message) MessageID() uint16 { return 0 }
func (m *Message) Payload() []byte   { return m.payload }
func (m *Message) Ack()              {}

type token struct {
	err error
}

func (t *token) Wait() bool                     { return true }
func (t *token) WaitTimeout(time.Duration) bool { return true }
func (t *token) Error() error                   { return t.err }

func (t *token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
