// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"errors"
	"fmt"

	"github.com/PagerDuty/go-pagerduty"
	"github.com/moov-io/achfile/pkg/config"
)

type PagerDuty struct {
	client *pagerduty.Client

	from       string
	serviceKey string
}

func NewPagerDuty(cfg *config.PagerDuty) *PagerDuty {
	return &PagerDuty{
		client:     pagerduty.NewClient(cfg.ApiKey),
		from:       cfg.From,
		serviceKey: cfg.ServiceKey,
	}
}

// Ping makes an authenticated call to verify the API key works.
func (pd *PagerDuty) Ping() error {
	if pd == nil || pd.client == nil {
		return errors.New("pagerduty: nil client")
	}
	resp, err := pd.client.ListAbilities()
	if err != nil {
		return fmt.Errorf("pagerduty list abilities: %v", err)
	}
	if resp == nil || len(resp.Abilities) == 0 {
		return errors.New("pagerduty: missing abilities")
	}
	return nil
}

// Info is a no-op; only failures page someone.
func (pd *PagerDuty) Info(msg *Message) error {
	return nil
}

func (pd *PagerDuty) Critical(msg *Message) error {
	_, err := pd.client.CreateIncident(pd.from, pd.incident(msg))
	return err
}

func (pd *PagerDuty) incident(msg *Message) *pagerduty.CreateIncidentOptions {
	return &pagerduty.CreateIncidentOptions{
		Type:    "incident",
		Title:   fmt.Sprintf("ERROR during file %s", msg.Direction),
		Urgency: "high",
		Service: &pagerduty.APIReference{
			ID:   pd.serviceKey,
			Type: "service_reference",
		},
		Body: &pagerduty.APIDetails{
			Type:    "incident_body",
			Details: marshalSlackMessage(failed, msg),
		},
	}
}
