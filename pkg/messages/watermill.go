package messages

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Topic is the watermill topic return messages are published on.
const Topic = "audionodes.return_messages"

const (
	UIDMetadataKey        = "uid"
	KindMetadataKey       = "kind"
	ExecThreadMetadataKey = "exec_thread"
)

// WatermillSink publishes return messages through a watermill publisher.
type WatermillSink struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillSink creates a sink publishing on Topic.
func NewWatermillSink(pub message.Publisher) *WatermillSink {
	return &WatermillSink{publisher: pub, topic: Topic}
}

func (s *WatermillSink) Deliver(ctx context.Context, msg ReturnMessage, execThread bool) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	m := message.NewMessage(watermill.NewULID(), payload)
	m.Metadata.Set(UIDMetadataKey, strconv.FormatUint(msg.UID, 10))
	m.Metadata.Set(KindMetadataKey, strconv.Itoa(msg.Kind))
	m.Metadata.Set(ExecThreadMetadataKey, strconv.FormatBool(execThread))
	m.SetContext(ctx)

	return s.publisher.Publish(s.topic, m)
}

// Close closes the underlying publisher.
func (s *WatermillSink) Close() error {
	return s.publisher.Close()
}

// Delivery is a return message as received by the host.
type Delivery struct {
	Message    ReturnMessage
	ExecThread bool
}

// Handler processes one delivery on the host side.
type Handler func(ctx context.Context, d Delivery) error

// Subscribe decodes return messages from sub and hands them to handler.
// Messages that fail to decode or whose handler fails are nacked.
func Subscribe(ctx context.Context, sub message.Subscriber, handler Handler) error {
	msgs, err := sub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			var rm ReturnMessage
			if err := json.Unmarshal(msg.Payload, &rm); err != nil {
				msg.Nack()

				continue
			}

			execThread, _ := strconv.ParseBool(msg.Metadata.Get(ExecThreadMetadataKey))

			if err := handler(ctx, Delivery{Message: rm, ExecThread: execThread}); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}
