// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package events publishes JSON messages about the lifecycle of NACHA files.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"path"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/stream"
	"github.com/moov-io/base/http/bind"

	"github.com/go-kit/kit/log"
	"gocloud.dev/pubsub"
)

// Emitter publishes events for other services to consume.
type Emitter interface {
	Send(ctx context.Context, event Event) error
	Shutdown(ctx context.Context) error
}

// Event is one of the event types in this package.
type Event interface {
	ID() string
	Type() string
}

// NewEmitter opens the configured topic. A nil config publishes to an
// in-memory topic which is useful for tests and single process setups.
func NewEmitter(ctx context.Context, logger log.Logger, cfg *config.Events) (Emitter, error) {
	topic, err := stream.OpenTopic(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("events: opening topic: %v", err)
	}
	return &topicEmitter{
		logger: logger,
		topic:  topic,
	}, nil
}

type topicEmitter struct {
	logger log.Logger
	topic  *pubsub.Topic
}

func (e *topicEmitter) Send(ctx context.Context, event Event) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	if err := e.topic.Send(ctx, msg); err != nil {
		return fmt.Errorf("events: sending %s %s: %v", event.Type(), event.ID(), err)
	}
	e.logger.Log("events", fmt.Sprintf("sent %s", event.Type()), "eventID", event.ID())
	return nil
}

func (e *topicEmitter) Shutdown(ctx context.Context) error {
	return e.topic.Shutdown(ctx)
}

func buildMessage(event Event) (*pubsub.Message, error) {
	bs, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	meta["eventID"] = event.ID()
	meta["eventType"] = event.Type()

	return &pubsub.Message{
		Body:     bs,
		Metadata: meta,
	}, nil
}

// Read decodes a message published by an Emitter.
func Read(msg *pubsub.Message) (Event, error) {
	if msg == nil {
		return nil, fmt.Errorf("events: nil message")
	}
	var event Event
	switch msg.Metadata["eventType"] {
	case TypeFileCreated:
		event = &FileCreated{}
	case TypeFileUploaded:
		event = &FileUploaded{}
	case TypeFileReceived:
		event = &FileReceived{}
	default:
		return nil, fmt.Errorf("events: unknown event type %q", msg.Metadata["eventType"])
	}
	if err := json.Unmarshal(msg.Body, event); err != nil {
		return nil, fmt.Errorf("events: reading %s: %v", msg.Metadata["eventType"], err)
	}
	return event, nil
}

func buildFileURL(cfg config.HTTP, fileID string) (string, error) {
	u, err := url.Parse(cfg.ExternalURL)
	if err != nil {
		return "", fmt.Errorf("events: error parsing external url: %v", err)
	}
	if u.Host == "" {
		u.Scheme = "http"
		u.Host = "localhost"

		if _, port, _ := net.SplitHostPort(cfg.BindAddress); port != "" {
			u.Host += ":" + port
		} else {
			u.Host += bind.HTTP("ach")
		}
	}
	u.Path = path.Join(u.Path, "files", fileID, "contents")
	return u.String(), nil
}
