package clockpub

import (
	"errors"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	mqtt "github.com/soypat/natiu-mqtt"
)

var ErrTimeout = errors.New("clockpub: publish timed out")

// NatiuClient is the publishing side of a connected *mqtt.Client from
// github.com/soypat/natiu-mqtt, as used on TinyGo network stacks.
type NatiuClient interface {
	PublishPayload(flags mqtt.PacketFlags, variables mqtt.VariablesPublish, payload []byte) error
}

// NatiuSink publishes with QoS 0. The caller keeps the client connected and
// calls HandleNext between publishes.
type NatiuSink struct {
	client   NatiuClient
	flags    mqtt.PacketFlags
	packetID uint16
}

func NewNatiuSink(client NatiuClient) (*NatiuSink, error) {
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return nil, err
	}
	return &NatiuSink{client: client, flags: flags}, nil
}

func (s *NatiuSink) Publish(topic string, payload []byte) error {
	s.packetID++
	return s.client.PublishPayload(s.flags, mqtt.VariablesPublish{
		TopicName:        []byte(topic),
		PacketIdentifier: s.packetID,
	}, payload)
}

// PahoClient is satisfied by paho.Client.
type PahoClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

type PahoSink struct {
	client   PahoClient
	QoS      byte
	Retained bool
	Timeout  time.Duration
}

// NewPahoSink publishes retained messages with QoS 0, waiting up to five
// seconds for each to be sent.
func NewPahoSink(client PahoClient) *PahoSink {
	return &PahoSink{
		client:   client,
		Retained: true,
		Timeout:  5 * time.Second,
	}
}

func (s *PahoSink) Publish(topic string, payload []byte) error {
	// paho may hold on to the payload after returning
	msg := append([]byte(nil), payload...)
	token := s.client.Publish(topic, s.QoS, s.Retained, msg)
	if !token.WaitTimeout(s.Timeout) {
		return ErrTimeout
	}
	return token.Error()
}
