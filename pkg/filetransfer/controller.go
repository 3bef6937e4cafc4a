// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package filetransfer moves files between the service and the ODFI.
//
// Pending outbound files are uploaded at each cutoff window (or when flushed
// through the admin server) and inbound files are downloaded on an interval,
// parsed and recorded.
package filetransfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/files"
	"github.com/moov-io/achfile/pkg/notify"
	"github.com/moov-io/achfile/pkg/output"
	"github.com/moov-io/achfile/pkg/upload"
	"github.com/moov-io/achfile/x/schedule"

	"github.com/go-kit/kit/log"
)

type Controller struct {
	logger log.Logger
	cfg    config.ODFI

	svc      *files.Service
	agent    upload.Agent
	renderer *output.Renderer
	notifier notify.Sender

	// encrypted files are uploaded with a .gpg suffix
	encrypted bool

	cutoffs       *schedule.CutoffTimes
	flushInbound  chan *flushRequest
	flushOutbound chan *flushRequest

	// mu serializes uploads and downloads
	mu sync.Mutex
}

type flushRequest struct {
	requestID string

	// waiter receives the outcome when non-nil
	waiter chan error
}

func NewController(logger log.Logger, cfg *config.Config, svc *files.Service, agent upload.Agent, notifier notify.Sender) (*Controller, error) {
	if cfg == nil || svc == nil || agent == nil {
		return nil, errors.New("filetransfer: missing config, service, or agent")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	renderer, err := output.NewRenderer(logger, cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("filetransfer: %v", err)
	}
	if notifier == nil {
		notifier, err = notify.NewMultiSender(logger, cfg.Notifications)
		if err != nil {
			return nil, fmt.Errorf("filetransfer: %v", err)
		}
	}
	c := &Controller{
		logger:        logger,
		cfg:           cfg.ODFI,
		svc:           svc,
		agent:         agent,
		renderer:      renderer,
		notifier:      notifier,
		encrypted:     cfg.Output != nil && cfg.Output.GPG != nil,
		flushInbound:  make(chan *flushRequest, 1),
		flushOutbound: make(chan *flushRequest, 1),
	}
	if len(cfg.ODFI.Cutoffs.Windows) > 0 {
		cutoffs, err := schedule.FromConfig(cfg.ODFI.Cutoffs)
		if err != nil {
			return nil, fmt.Errorf("filetransfer: cutoffs: %v", err)
		}
		c.cutoffs = cutoffs
	}
	return c, nil
}

// Start uploads pending files at each cutoff and downloads inbound files on
// an interval until ctx is done.
func (c *Controller) Start(ctx context.Context) {
	inbound := time.NewTicker(c.cfg.Inbound.Every())
	defer inbound.Stop()

	var cutoffs chan time.Time
	if c.cutoffs != nil {
		cutoffs = c.cutoffs.C
		defer c.cutoffs.Stop()
	}

	c.logger.Log("filetransfer", fmt.Sprintf("starting controller with %s, inbound every %v", c.agent.Hostname(), c.cfg.Inbound.Every()))

	for {
		select {
		case when := <-cutoffs:
			c.logger.Log("filetransfer", fmt.Sprintf("cutoff at %v", when.Format(time.RFC3339)))
			if err := c.UploadPending(ctx); err != nil {
				c.logger.Log("filetransfer", fmt.Sprintf("ERROR uploading files: %v", err))
			}

		case <-inbound.C:
			if err := c.DownloadInbound(ctx); err != nil {
				c.logger.Log("filetransfer", fmt.Sprintf("ERROR downloading files: %v", err))
			}

		case req := <-c.flushOutbound:
			c.logger.Log("filetransfer", "flushing outbound files", "requestID", req.requestID)
			req.finish(c.UploadPending(ctx))

		case req := <-c.flushInbound:
			c.logger.Log("filetransfer", "flushing inbound files", "requestID", req.requestID)
			req.finish(c.DownloadInbound(ctx))

		case <-ctx.Done():
			c.logger.Log("filetransfer", "shutting down controller")
			return
		}
	}
}

func (req *flushRequest) finish(err error) {
	if req != nil && req.waiter != nil {
		req.waiter <- err
	}
}

func (c *Controller) Close() error {
	if c == nil {
		return nil
	}
	c.cutoffs.Stop()
	return c.agent.Close()
}
