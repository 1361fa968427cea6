package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt operation timed out")

// Options configures a broker connection.
type Options struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	Logger         *zap.Logger
}

// Client wraps a paho client with blocking, timeout-bounded calls.
type Client struct {
	client         paho.Client
	publishTimeout time.Duration
	logger         *zap.Logger
}

// NewClient connects to the broker and returns a ready client.
func NewClient(opts Options) (*Client, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("mqtt broker address is required")
	}
	opts = withDefaults(opts)

	client := paho.NewClient(buildClientOptions(opts))
	token := client.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", opts.Broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", opts.Broker, err)
	}
	opts.Logger.Info("mqtt connected", zap.String("broker", opts.Broker), zap.String("client_id", opts.ClientID))

	return &Client{client: client, publishTimeout: opts.PublishTimeout, logger: opts.Logger}, nil
}

// Publish sends payload at QoS 1 and waits for the broker acknowledgement.
func (c *Client) Publish(topic string, retained bool, payload []byte) error {
	token := c.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(c.publishTimeout) {
		return fmt.Errorf("publish to %s: %w", topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports the live connection state.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects, allowing in-flight work 250ms to drain.
func (c *Client) Close() {
	c.client.Disconnect(250)
}

func withDefaults(opts Options) Options {
	if opts.ClientID == "" {
		opts.ClientID = "cellbroadcast-api"
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func buildClientOptions(opts Options) *paho.ClientOptions {
	logger := opts.Logger
	co := paho.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		co.SetPassword(opts.Password)
	}
	co.SetAutoReconnect(true)
	co.SetCleanSession(true)
	co.SetConnectTimeout(opts.ConnectTimeout)
	co.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})
	co.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Info("mqtt reconnecting", zap.String("broker", opts.Broker))
	})
	return co
}
