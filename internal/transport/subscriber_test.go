// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/logging"
)

func TestSubscriberChannel_ForwardsPayloads(t *testing.T) {
	t.Parallel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, logging.NewWatermillAdapter())
	t.Cleanup(func() { _ = pubsub.Close() })

	c := NewSubscriberChannel(pubsub, "notifications")
	frames := make(chan string, 4)
	c.OnMessage(func(frame []byte) { frames <- string(frame) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	for _, p := range []string{"one", "two"} {
		if err := pubsub.Publish("notifications", message.NewMessage(watermill.NewUUID(), []byte(p))); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	for _, want := range []string{"one", "two"} {
		select {
		case got := <-frames:
			if got != want {
				t.Errorf("frame = %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestSubscriberChannel_ClosedSubscriber(t *testing.T) {
	t.Parallel()

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, logging.NewWatermillAdapter())
	c := NewSubscriberChannel(pubsub, "notifications")

	var reported error
	c.OnError(func(err error) { reported = err })

	done := make(chan error, 1)
	go func() { done <- c.Serve(context.Background()) }()

	// Give Serve time to subscribe before the subscriber goes away.
	time.Sleep(50 * time.Millisecond)
	if err := pubsub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Error("Serve() = nil, want an error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the subscriber closed")
	}
	if reported == nil {
		t.Error("closed subscription was not reported to OnError")
	}
}

func TestNewNATSSubscriber_RequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := NewNATSSubscriber(&config.NATSConfig{Subject: "x"}, nil); err == nil {
		t.Error("NewNATSSubscriber without URL succeeded, want error")
	}
}
