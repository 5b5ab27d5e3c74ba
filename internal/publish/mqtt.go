package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nexusgame/hydra/apitypes"
)

// MQTTConfig configures the MQTT event publisher.
type MQTTConfig struct {
	Broker         string        `help:"MQTT broker URL (e.g. tcp://localhost:1883); empty disables publishing" env:"HYDRA_MQTT_BROKER"`
	ClientID       string        `help:"MQTT client id" default:"hydrad" env:"HYDRA_MQTT_CLIENT_ID"`
	TopicPrefix    string        `help:"Topic prefix; events go to <prefix>/<slot>/<kind>" default:"hydra" env:"HYDRA_MQTT_TOPIC_PREFIX"`
	QoS            byte          `help:"Publish QoS (0, 1 or 2)" default:"0" env:"HYDRA_MQTT_QOS"`
	Retain         bool          `help:"Publish retained messages" default:"false" env:"HYDRA_MQTT_RETAIN"`
	QueueSize      int           `help:"Events buffered before new ones are dropped" default:"256" env:"HYDRA_MQTT_QUEUE_SIZE"`
	PublishTimeout time.Duration `help:"Wait for a publish acknowledgement" default:"2s" env:"HYDRA_MQTT_PUBLISH_TIMEOUT"`
}

// Publisher is the part of mqtt.Client the publisher uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type message struct {
	topic   string
	payload []byte
}

// MQTT publishes events from a queue drained by one worker, so Send never
// waits on the broker.
type MQTT struct {
	pub    Publisher
	client mqtt.Client
	cfg    MQTTConfig
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan message
	done   chan struct{}
}

// ConnectMQTT connects to cfg.Broker and starts a publisher.
func ConnectMQTT(cfg MQTTConfig, logger *slog.Logger) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	m := NewMQTT(client, cfg, logger)
	m.client = client
	return m, nil
}

// NewMQTT starts a publisher on pub.
func NewMQTT(pub Publisher, cfg MQTTConfig, logger *slog.Logger) *MQTT {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "hydra"
	}
	m := &MQTT{
		pub:    pub,
		cfg:    cfg,
		logger: logger.With("component", "mqtt"),
		queue:  make(chan message, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// Topic returns the topic ev is published on.
func (m *MQTT) Topic(ev apitypes.Event) string {
	return m.cfg.TopicPrefix + "/" + ev.Slot + "/" + ev.Kind
}

// Send queues ev. Events are dropped while the queue is full or after Close.
func (m *MQTT) Send(ev apitypes.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		m.logger.Error("marshal event", "error", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- message{topic: m.Topic(ev), payload: payload}:
	default:
		m.logger.Debug("mqtt queue full, dropping event", "slot", ev.Slot, "kind", ev.Kind)
	}
}

func (m *MQTT) run() {
	defer close(m.done)
	for msg := range m.queue {
		token := m.pub.Publish(msg.topic, m.cfg.QoS, m.cfg.Retain, msg.payload)
		if m.cfg.PublishTimeout > 0 && !token.WaitTimeout(m.cfg.PublishTimeout) {
			m.logger.Warn("mqtt publish timed out", "topic", msg.topic)
			continue
		}
		if m.cfg.PublishTimeout <= 0 {
			token.Wait()
		}
		if err := token.Error(); err != nil {
			m.logger.Warn("mqtt publish failed", "topic", msg.topic, "error", err)
		}
	}
}

// Close drains queued events and disconnects a client opened by ConnectMQTT.
func (m *MQTT) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	<-m.done
	if m.client != nil {
		m.client.Disconnect(250)
	}
}
