package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/audionodes/native/pkg/channels/gochannel"
	"github.com/audionodes/native/pkg/channels/kafka"
)

var supportedTransports = []string{"gochannel", "kafka"}

// Transport is the publisher and subscriber carrying return messages to the
// host.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	closers    []io.Closer
}

func (t *Transport) Close() error {
	var first error

	for _, c := range t.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// NewTransport creates the return-message transport named by provider.
func NewTransport(provider string, brokers []string, logger *slog.Logger) (*Transport, error) {
	wlogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(wlogger)
		if err != nil {
			return nil, err
		}

		return &Transport{Publisher: pub, Subscriber: sub, closers: []io.Closer{pub}}, nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wlogger, brokers, "audionodes")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return &Transport{Publisher: pub, Subscriber: sub, closers: []io.Closer{pub, sub}}, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q, expected one of %v", provider, supportedTransports)
	}
}
