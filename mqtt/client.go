package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"time"

	"orchard-bridge/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client wraps the PAHO MQTT client and feeds inbound uplinks to the
// ingestion gateway. Reconnects are left to the PAHO client itself; there
// is no custom backoff on top of it.
type Client struct {
	client  mqtt.Client
	gateway *Gateway
	topic   string
	logger  *slog.Logger
}

// NewClient creates and connects a new MQTT client over mutual TLS.
func NewClient(cfg *config.Config, gateway *Gateway, logger *slog.Logger) (*Client, error) {
	tlsConfig, err := newTLSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetTLSConfig(tlsConfig).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	mqttClient := &Client{
		gateway: gateway,
		topic:   cfg.MQTTTopic,
		logger:  logger.With("component", "mqtt_client"),
	}

	opts.SetOnConnectHandler(mqttClient.onConnect)
	opts.SetConnectionLostHandler(mqttClient.onConnectionLost)
	client := mqtt.NewClient(opts)
	mqttClient.client = client

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return mqttClient, nil
}

// Disconnect gracefully disconnects the client.
func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("MQTT Client disconnected")
	}
}

func (c *Client) onConnect(client mqtt.Client) {
	c.logger.Info("Successfully connected to MQTT broker. Subscribing...", "topic", c.topic)
	if token := client.Subscribe(c.topic, 1, c.handleUplinkMessage); token.Wait() && token.Error() != nil {
		c.logger.Error("Failed to subscribe to topic", "topic", c.topic, slog.Any("error", token.Error()))
	} else {
		c.logger.Info("Successfully subscribed to topic", "topic", c.topic)
	}
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.logger.Error("Connection lost. Reconnecting...", slog.Any("error", err))
}

func (c *Client) handleUplinkMessage(client mqtt.Client, msg mqtt.Message) {
	c.gateway.HandleUplink(msg.Topic(), msg.Payload())
}

// newTLSConfig builds the mutual-TLS configuration from the certificate
// files named in the environment. Missing files were already rejected at
// config load, so errors here mean unreadable or invalid certificates.
func newTLSConfig(cfg *config.Config) (*tls.Config, error) {
	caCert, err := os.ReadFile(cfg.CACertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate %s", cfg.CACertPath)
	}

	clientCert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate pair: %w", err)
	}

	return &tls.Config{
		RootCAs:      caPool,
		Certificates: []tls.Certificate{clientCert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
