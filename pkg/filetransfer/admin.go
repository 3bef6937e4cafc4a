// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package filetransfer

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/moov-io/achfile/pkg/util"
	"github.com/moov-io/base/admin"
	moovhttp "github.com/moov-io/base/http"
)

var (
	flushTimeout = 30 * time.Second

	errFlushQueueFull = errors.New("timed out queueing flush, file transfers may be stopped")
)

// RegisterRoutes adds the flush endpoints and an agent liveness check to the admin server.
//
// Flushing only queues the work unless ?wait is given, then the response
// reports the outcome.
func (c *Controller) RegisterRoutes(svc *admin.Server) {
	svc.AddHandler("/files/flush", c.flushFiles(c.flushInbound, c.flushOutbound))
	svc.AddHandler("/files/flush/inbound", c.flushFiles(c.flushInbound))
	svc.AddHandler("/files/flush/outbound", c.flushFiles(c.flushOutbound))

	svc.AddLivenessCheck("filetransfer", c.agent.Ping)
}

func (c *Controller) flushFiles(queues ...chan *flushRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			moovhttp.Problem(w, fmt.Errorf("unsupported HTTP verb %s", r.Method))
			return
		}

		_, wait := r.URL.Query()["wait"]
		var reqs []*flushRequest
		for _, q := range queues {
			req := &flushRequest{requestID: moovhttp.GetRequestID(r)}
			if wait {
				req.waiter = make(chan error, 1)
			}
			select {
			case q <- req:
			case <-r.Context().Done():
				moovhttp.Problem(w, r.Context().Err())
				return
			case <-time.After(flushTimeout):
				moovhttp.Problem(w, errFlushQueueFull)
				return
			}
			reqs = append(reqs, req)
		}

		for _, req := range reqs {
			if req.waiter == nil {
				continue
			}
			err := util.Timeout(func() error {
				return <-req.waiter
			}, flushTimeout)
			if err != nil {
				moovhttp.Problem(w, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
