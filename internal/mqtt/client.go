// Package mqtt publishes graphs and events to an MQTT broker and accepts
// render requests from it.
package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/AaronLay10/schemagraph/internal/config"
)

// Client wraps the Paho MQTT client.
type Client struct {
	client paho.Client
	mu     sync.Mutex

	hookMu    sync.RWMutex
	onConnect func()
}

// BrokerURL returns the MQTT broker URL from env or default.
func BrokerURL() string {
	return config.Env("MQTT_URL", "tcp://localhost:1883")
}

// NewClient creates a new MQTT client but does not connect. Credentials
// come from MQTT_USERNAME and MQTT_PASSWORD (or MQTT_PASSWORD_FILE).
func NewClient(clientID string) (*Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(BrokerURL()).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	if user := config.Env("MQTT_USERNAME", ""); user != "" {
		password, err := config.ResolveSecret("MQTT_PASSWORD")
		if err != nil {
			return nil, err
		}
		opts.SetUsername(user).SetPassword(password)
	}

	c := &Client{}
	opts.SetOnConnectHandler(func(paho.Client) { c.connected() })
	c.client = paho.NewClient(opts)
	return c, nil
}

// OnConnect sets fn to run after every successful connect, including
// automatic reconnects. Paho runs it on its own goroutine.
func (c *Client) OnConnect(fn func()) {
	c.hookMu.Lock()
	c.onConnect = fn
	c.hookMu.Unlock()
}

func (c *Client) connected() {
	c.hookMu.RLock()
	fn := c.onConnect
	c.hookMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Connect attempts to connect to the broker.
// Returns an error if connection fails, but does not block indefinitely.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return &ConnectTimeoutError{}
	}
	return token.Error()
}

// Subscribe subscribes to a topic with the given handler.
func (c *Client) Subscribe(topic string, handler paho.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Subscribe(topic, 1, handler)
	if !token.WaitTimeout(10 * time.Second) {
		return &SubscribeTimeoutError{Topic: topic}
	}
	return token.Error()
}

// Publish sends payload at QoS 1 and waits for the broker to accept it.
func (c *Client) Publish(topic string, retained bool, payload []byte) error {
	token := c.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return &PublishTimeoutError{Topic: topic}
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.client.Disconnect(1000)
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// ConnectTimeoutError indicates connection timed out.
type ConnectTimeoutError struct{}

func (e *ConnectTimeoutError) Error() string {
	return "mqtt connect timeout"
}

// SubscribeTimeoutError indicates subscription timed out.
type SubscribeTimeoutError struct {
	Topic string
}

func (e *SubscribeTimeoutError) Error() string {
	return "mqtt subscribe timeout: " + e.Topic
}

// PublishTimeoutError indicates the broker did not acknowledge in time.
type PublishTimeoutError struct {
	Topic string
}

func (e *PublishTimeoutError) Error() string {
	return "mqtt publish timeout: " + e.Topic
}

// Start connects, logging rather than failing hard. Subscriptions belong
// in the OnConnect hook so they survive reconnects.
func (c *Client) Start(log *zap.Logger) bool {
	if err := c.Connect(); err != nil {
		log.Warn("mqtt connect failed", zap.String("broker", BrokerURL()), zap.Error(err))
		return false
	}

	log.Info("mqtt connected", zap.String("broker", BrokerURL()))
	return true
}
