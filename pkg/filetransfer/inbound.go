// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package filetransfer

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"path"

	"github.com/moov-io/achfile/pkg/files"
	"github.com/moov-io/achfile/pkg/notify"
	"github.com/moov-io/achfile/pkg/upload"
	"github.com/moov-io/base"
)

// DownloadInbound records every file in the ODFI's inbound and return
// directories. Recorded files are removed from the server unless
// odfi.storage.keepRemoteFiles is set. Files which fail to parse are left
// on the server.
func (c *Controller) DownloadInbound(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var el base.ErrorList

	inbound, err := c.agent.GetInboundFiles()
	if err != nil {
		el.Add(fmt.Errorf("listing inbound files: %v", err))
	}
	c.receiveAll(ctx, c.agent.InboundPath(), inbound, &el)

	returned, err := c.agent.GetReturnFiles()
	if err != nil {
		el.Add(fmt.Errorf("listing return files: %v", err))
	}
	c.receiveAll(ctx, c.agent.ReturnPath(), returned, &el)

	if len(el) == 0 {
		return nil
	}
	return el
}

func (c *Controller) receiveAll(ctx context.Context, dir string, fs []upload.File, el *base.ErrorList) {
	for i := range fs {
		if err := c.receive(ctx, dir, fs[i]); err != nil {
			el.Add(fmt.Errorf("%s: %v", fs[i].Filename, err))
		}
	}
}

func (c *Controller) receive(ctx context.Context, dir string, f upload.File) error {
	contents, err := ioutil.ReadAll(f.Contents)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading: %v", err)
	}

	msg := &notify.Message{
		Direction: notify.Download,
		Filename:  f.Filename,
		Hostname:  c.agent.Hostname(),
	}

	file, err := c.svc.Receive(ctx, f.Filename, c.agent.Hostname(), contents)
	switch {
	case errors.Is(err, files.ErrDuplicateFilename):
		// recorded by an earlier download
		c.logger.Log("filetransfer", fmt.Sprintf("skipping %s, already received", f.Filename))

	case err != nil:
		downloadFailures.With("hostname", c.agent.Hostname()).Add(1)
		c.critical(msg)
		return err

	default:
		filesDownloaded.With("hostname", c.agent.Hostname()).Add(1)
		if _, parsed, err := c.svc.Open(ctx, file.FileID); err == nil {
			msg.File = parsed
		}
		c.info(msg)
		c.logger.Log("filetransfer", fmt.Sprintf("received %s from %s", f.Filename, c.agent.Hostname()), "fileID", file.FileID)
	}

	if c.cfg.Storage.KeepRemoteFiles {
		return nil
	}
	if err := c.agent.Delete(path.Join(dir, f.Filename)); err != nil {
		return fmt.Errorf("deleting remote file: %v", err)
	}
	return nil
}
