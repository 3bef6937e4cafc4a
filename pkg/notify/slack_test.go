// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestSlack(t *testing.T) {
	var bodies []string
	handler := mux.NewRouter()
	handler.Methods("POST").Path("/webhook").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bs, _ := ioutil.ReadAll(r.Body)
		bodies = append(bodies, string(bs))
		if bytes.Contains(bs, []byte(`"text"`)) {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	svc := httptest.NewServer(handler)
	defer svc.Close()

	cfg := &config.Slack{
		WebhookURL: svc.URL + "/webhook",
	}
	slack, err := NewSlack(cfg)
	require.NoError(t, err)

	msg := &Message{
		Direction: Download,
		Filename:  "20200529-152259.ach",
		File:      testFile(t),
	}

	require.NoError(t, slack.Info(msg))
	require.NoError(t, slack.Critical(msg))
	require.Len(t, bodies, 2)
	require.Contains(t, bodies[0], "successful download of 20200529-152259.ach")
	require.Contains(t, bodies[1], "failed download")

	// non-2xx responses are errors
	cfg.WebhookURL = svc.URL + "/missing"
	slack, err = NewSlack(cfg)
	require.NoError(t, err)
	require.Error(t, slack.Info(msg))
}

func TestSlack__marshal(t *testing.T) {
	tests := []struct {
		desc          string
		status        uploadStatus
		msg           *Message
		shouldContain string
	}{
		{"successful upload with hostname", success, &Message{Direction: Upload, Filename: "myfile.txt", Hostname: "ftp.mybank.com"},
			"successful upload of myfile.txt to ftp.mybank.com"},
		{"failed upload with hostname", failed, &Message{Direction: Upload, Filename: "myfile.txt", Hostname: "ftp.mybank.com"},
			"failed upload of myfile.txt to ftp.mybank.com"},
		{"successful download", success, &Message{Direction: Download, Filename: "myfile.txt", Hostname: "ftp.mybank.com"},
			"successful download of myfile.txt with ODFI server"},
		{"failed download", failed, &Message{Direction: Download, Filename: "myfile.txt"},
			"failed download of myfile.txt with ODFI server"},
		{"file totals", success, &Message{Direction: Upload, Filename: "myfile.txt", File: testFile(t)},
			"1 batches, 2 entries, debits $105.00 credits $12.50"},
	}

	for _, test := range tests {
		actual := marshalSlackMessage(test.status, test.msg)
		require.Contains(t, actual, test.shouldContain, test.desc)
	}
}
