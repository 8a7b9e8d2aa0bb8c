package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{"package": "mqtt"})

// Config identifies the broker and the client.
type Config struct {
	Endpoint  string
	Port      int
	CertPath  string
	KeyPath   string
	CAPath    string
	ClientID  string
	Topic     string
	KeepAlive time.Duration

	// RunID tags lifecycle messages.
	RunID string

	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// BrokerURL returns the ssl:// URL paho connects to.
func (c Config) BrokerURL() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("ssl://%s", net.JoinHostPort(c.Endpoint, fmt.Sprint(port)))
}

// LoadTLS builds a client TLS configuration from PEM files.
func LoadTLS(certPath, keyPath, caPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load client certificate: %w", err)
	}
	caPEM, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("read CA: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("no certificates found in %s", caPath)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// RealReporter publishes to an actual MQTT broker.
type RealReporter struct {
	cfg    Config
	client paho.Client

	// lookup resolves the endpoint before connecting.
	lookup func(ctx context.Context, host string) ([]string, error)
	// newClient is replaced in tests.
	newClient func(*paho.ClientOptions) paho.Client
	now       func() time.Time
}

// NewRealReporter creates a disconnected reporter. Nothing is read or dialled
// until Connect.
func NewRealReporter(cfg Config) *RealReporter {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.PublishTimeout == 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &RealReporter{
		cfg:       cfg,
		lookup:    net.DefaultResolver.LookupHost,
		newClient: paho.NewClient,
		now:       time.Now,
	}
}

// options builds the paho client options. Automatic reconnect is disabled:
// reconnects are driven by the control loop's timer.
func (r *RealReporter) options(tlsCfg *tls.Config) *paho.ClientOptions {
	will, _ := FormatStatus(StatusOffline, r.cfg.ClientID, r.cfg.RunID, time.Time{})
	return paho.NewClientOptions().
		AddBroker(r.cfg.BrokerURL()).
		SetClientID(r.cfg.ClientID).
		SetTLSConfig(tlsCfg).
		SetCleanSession(true).
		SetKeepAlive(r.cfg.KeepAlive).
		SetConnectTimeout(r.cfg.ConnectTimeout).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetBinaryWill(StatusTopic(r.cfg.Topic), will, 1, true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})
}

// Connect loads the TLS material, resolves the endpoint and opens a session.
// The certificate files are read on every attempt, so replaced credentials
// are picked up by the next reconnect. On success a retained "online"
// message is published on the status topic.
func (r *RealReporter) Connect() error {
	if r.client != nil {
		r.Disconnect()
	}

	tlsCfg, err := LoadTLS(r.cfg.CertPath, r.cfg.KeyPath, r.cfg.CAPath)
	if err != nil {
		return &ConnectError{Endpoint: r.cfg.Endpoint, Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ConnectTimeout)
	defer cancel()
	if _, err := r.lookup(ctx, r.cfg.Endpoint); err != nil {
		return &ConnectError{Endpoint: r.cfg.Endpoint, Err: fmt.Errorf("DNS lookup: %w", err)}
	}

	client := r.newClient(r.options(tlsCfg))
	token := client.Connect()
	if !token.WaitTimeout(r.cfg.ConnectTimeout) {
		client.Disconnect(0)
		return &ConnectError{Endpoint: r.cfg.Endpoint, Err: errors.New("connection timeout")}
	}
	if err := token.Error(); err != nil {
		return &ConnectError{Endpoint: r.cfg.Endpoint, Err: err}
	}
	r.client = client
	log.WithField("broker", r.cfg.BrokerURL()).Info("Connected to MQTT broker")

	if err := r.publishStatus(StatusOnline); err != nil {
		log.WithError(err).Warn("Failed to publish online status")
	}
	return nil
}

// IsConnected reports whether the session is open.
func (r *RealReporter) IsConnected() bool {
	return r.client != nil && r.client.IsConnectionOpen()
}

// Publish sends one payload at QoS 1, not retained.
func (r *RealReporter) Publish(p Payload) error {
	if !r.IsConnected() {
		return ErrNotConnected
	}
	payload, err := FormatPayload(p)
	if err != nil {
		return &PublishError{Topic: r.cfg.Topic, Err: fmt.Errorf("format payload: %w", err)}
	}
	return r.publish(r.cfg.Topic, payload, false)
}

// Disconnect publishes a retained "offline" status when the session is
// still open, then closes it.
func (r *RealReporter) Disconnect() {
	if r.client == nil {
		return
	}
	if r.client.IsConnectionOpen() {
		if err := r.publishStatus(StatusOffline); err != nil {
			log.WithError(err).Debug("Failed to publish offline status")
		}
	}
	r.client.Disconnect(250)
	r.client = nil
}

func (r *RealReporter) publishStatus(status string) error {
	payload, err := FormatStatus(status, r.cfg.ClientID, r.cfg.RunID, r.now())
	if err != nil {
		return err
	}
	return r.publish(StatusTopic(r.cfg.Topic), payload, true)
}

func (r *RealReporter) publish(topic string, payload []byte, retained bool) error {
	token := r.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(r.cfg.PublishTimeout) {
		return &PublishError{Topic: topic, Err: errors.New("publish timeout")}
	}
	if err := token.Error(); err != nil {
		return &PublishError{Topic: topic, Err: err}
	}
	return nil
}
