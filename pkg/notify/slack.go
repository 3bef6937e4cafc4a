// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/moov-io/achfile/pkg/config"
)

type Slack struct {
	webhookURL *url.URL
	client     *http.Client
}

func NewSlack(cfg *config.Slack) (*Slack, error) {
	if cfg == nil || cfg.WebhookURL == "" {
		return nil, errors.New("missing webhook url")
	}
	u, err := url.Parse(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}
	return &Slack{
		webhookURL: u,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (s *Slack) Info(msg *Message) error {
	return s.send(marshalSlackMessage(success, msg))
}

func (s *Slack) Critical(msg *Message) error {
	return s.send(marshalSlackMessage(failed, msg))
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) send(body string) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(slackPayload{Text: body}); err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.webhookURL.String(), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("problem sending slack message: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bs, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected slack response: %s: %s", resp.Status, bytes.TrimSpace(bs))
	}
	return nil
}

type uploadStatus string

const (
	success uploadStatus = "successful"
	failed  uploadStatus = "failed"
)

func marshalSlackMessage(status uploadStatus, msg *Message) string {
	out := fmt.Sprintf("%s %s of %s", status, msg.Direction, msg.Filename)
	switch {
	case msg.Direction == Upload && msg.Hostname != "":
		out += fmt.Sprintf(" to %s", msg.Hostname)
	case msg.Direction == Download:
		out += " with ODFI server"
		if msg.Hostname != "" {
			out += " " + msg.Hostname
		}
	}
	if msg.File != nil {
		out += fmt.Sprintf("\n%d batches, %d entries, debits $%s credits $%s",
			len(msg.File.Batches()), msg.File.EntryCount(),
			msg.File.TotalDebit().StringFixed(2), msg.File.TotalCredit().StringFixed(2))
	}
	return out
}
