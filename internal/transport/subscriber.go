// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/logging"
)

// ErrSubscriptionClosed is returned by SubscriberChannel.Serve when the
// underlying subscriber closes its message channel. Under suture this
// triggers a restart and a fresh subscription.
var ErrSubscriptionClosed = errors.New("transport: subscription closed")

// SubscriberChannel adapts a Watermill subscriber topic to a Channel.
// Every message is acked once the frame handler returns; decode failures
// are the ingestor's concern and never cause redelivery.
type SubscriberChannel struct {
	handlers
	sub    message.Subscriber
	topic  string
	logger zerolog.Logger
}

// NewSubscriberChannel reads topic from sub. The channel does not own sub;
// the caller closes it.
func NewSubscriberChannel(sub message.Subscriber, topic string) *SubscriberChannel {
	return &SubscriberChannel{
		handlers: handlers{name: "subscriber"},
		sub:      sub,
		topic:    topic,
		logger:   logging.WithComponent("transport-subscriber").With().Str("topic", topic).Logger(),
	}
}

// Serve subscribes and forwards payloads until ctx is canceled.
func (c *SubscriberChannel) Serve(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, c.topic)
	if err != nil {
		err = fmt.Errorf("subscribe to %s: %w", c.topic, err)
		c.fail(err)
		return err
	}

	c.setConnected(true)
	defer c.setConnected(false)
	c.logger.Info().Msg("Notification subscription started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.fail(ErrSubscriptionClosed)
				return ErrSubscriptionClosed
			}
			c.emit(msg.Payload)
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (c *SubscriberChannel) String() string {
	return "transport-subscriber"
}
