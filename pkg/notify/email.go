// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/ioutil"
	"net/url"
	"strconv"
	"strings"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/ory/mail/v3"
)

type Email struct {
	cfg    *config.Email
	dialer *mail.Dialer
}

type EmailTemplateData struct {
	CompanyName string // e.g. Moov
	Verb        string // e.g. uploaded, downloaded
	Filename    string // e.g. 20200529-131400.ach

	DebitTotal  string
	CreditTotal string

	BatchCount int
	EntryCount int
}

var (
	// Ensure the default template validates against our data struct
	_ = config.DefaultEmailTemplate.Execute(ioutil.Discard, EmailTemplateData{})
)

func NewEmail(cfg *config.Email) (*Email, error) {
	dialer, err := setupDialer(cfg)
	if err != nil {
		return nil, err
	}
	return &Email{
		cfg:    cfg,
		dialer: dialer,
	}, nil
}

func setupDialer(cfg *config.Email) (*mail.Dialer, error) {
	if cfg == nil {
		return nil, errors.New("nil email config")
	}
	uri, err := url.Parse(cfg.ConnectionURI)
	if err != nil {
		return nil, err
	}
	if uri.Hostname() == "" {
		return nil, fmt.Errorf("missing hostname in %s", uri.Redacted())
	}

	port, _ := strconv.Atoi(uri.Port())
	if port == 0 {
		port = 25
	}
	password, _ := uri.User.Password()

	dialer := mail.NewDialer(uri.Hostname(), port, uri.User.Username(), password)
	dialer.SSL = strings.EqualFold(uri.Scheme, "smtps")
	dialer.TLSConfig = &tls.Config{
		ServerName:         uri.Hostname(),
		InsecureSkipVerify: uri.Query().Get("insecure_skip_verify") == "true",
	}
	return dialer, nil
}

func (mailer *Email) Info(msg *Message) error {
	contents, err := marshalEmail(mailer.cfg, msg)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s %s by %s", msg.Filename, msg.Direction.Verb(), mailer.cfg.CompanyName)
	return mailer.send(subject, contents)
}

func (mailer *Email) Critical(msg *Message) error {
	contents, err := marshalEmail(mailer.cfg, msg)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s FAILED %s for %s", msg.Filename, msg.Direction, mailer.cfg.CompanyName)
	return mailer.send(subject, contents)
}

func (mailer *Email) send(subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", mailer.cfg.From)
	m.SetHeader("To", mailer.cfg.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return mailer.dialer.DialAndSend(context.Background(), m)
}

func marshalEmail(cfg *config.Email, msg *Message) (string, error) {
	data := EmailTemplateData{
		CompanyName: cfg.CompanyName,
		Verb:        msg.Direction.Verb(),
		Filename:    msg.Filename,
		DebitTotal:  "0.00",
		CreditTotal: "0.00",
	}
	if msg.File != nil {
		data.DebitTotal = msg.File.TotalDebit().StringFixed(2)
		data.CreditTotal = msg.File.TotalCredit().StringFixed(2)
		data.BatchCount = len(msg.File.Batches())
		data.EntryCount = msg.File.EntryCount()
	}

	var buf bytes.Buffer
	if err := cfg.Tmpl().Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
