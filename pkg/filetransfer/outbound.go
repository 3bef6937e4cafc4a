// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package filetransfer

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/moov-io/achfile/pkg/files"
	"github.com/moov-io/achfile/pkg/notify"
	"github.com/moov-io/achfile/pkg/upload"
	"github.com/moov-io/base"
)

// UploadPending renders and uploads every pending outbound file, oldest first.
// Files which fail to upload stay pending for the next cutoff, files which
// can't be read or rendered are marked failed.
func (c *Controller) UploadPending(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.svc.Pending(ctx)
	if err != nil {
		return fmt.Errorf("reading pending files: %v", err)
	}

	var el base.ErrorList
	for i := range pending {
		if err := c.uploadFile(ctx, pending[i]); err != nil {
			el.Add(fmt.Errorf("%s: %v", pending[i].Filename, err))
		}
	}
	if len(pending) > 0 {
		c.logger.Log("filetransfer", fmt.Sprintf("uploaded %d of %d pending files", len(pending)-len(el), len(pending)))
	}
	if len(el) == 0 {
		return nil
	}
	return el
}

func (c *Controller) uploadFile(ctx context.Context, f *files.File) error {
	_, file, err := c.svc.Open(ctx, f.FileID)
	if err != nil {
		c.markFailed(ctx, f)
		return err
	}
	contents, err := c.renderer.Render(file)
	if err != nil {
		c.markFailed(ctx, f)
		return fmt.Errorf("rendering: %v", err)
	}

	filename := c.outboundFilename(f.Filename)
	err = c.agent.UploadFile(upload.File{
		Filename: filename,
		Contents: ioutil.NopCloser(bytes.NewReader(contents)),
	})
	msg := &notify.Message{
		Direction: notify.Upload,
		Filename:  filename,
		File:      file,
		Hostname:  c.agent.Hostname(),
	}
	if err != nil {
		uploadFailures.With("hostname", c.agent.Hostname()).Add(1)
		c.critical(msg)
		return fmt.Errorf("uploading to %s: %v", c.agent.Hostname(), err)
	}
	filesUploaded.With("hostname", c.agent.Hostname()).Add(1)

	if err := c.svc.MarkUploaded(ctx, f, c.agent.Hostname()); err != nil {
		// the file is on the remote server, so don't retry it
		c.logger.Log("filetransfer", fmt.Sprintf("ERROR: %v", err), "fileID", f.FileID)
	}
	c.info(msg)
	c.logger.Log("filetransfer", fmt.Sprintf("uploaded %s to %s", filename, c.agent.Hostname()), "fileID", f.FileID)
	return nil
}

// outboundFilename adds a .gpg suffix to encrypted uploads.
func (c *Controller) outboundFilename(filename string) string {
	if c.encrypted && !strings.HasSuffix(filename, ".gpg") {
		return filename + ".gpg"
	}
	return filename
}

func (c *Controller) markFailed(ctx context.Context, f *files.File) {
	if err := c.svc.MarkFailed(ctx, f); err != nil {
		c.logger.Log("filetransfer", fmt.Sprintf("ERROR marking %s failed: %v", f.Filename, err), "fileID", f.FileID)
	}
	c.critical(&notify.Message{
		Direction: notify.Upload,
		Filename:  f.Filename,
		Hostname:  c.agent.Hostname(),
	})
}

func (c *Controller) info(msg *notify.Message) {
	if err := c.notifier.Info(msg); err != nil {
		c.logger.Log("filetransfer", fmt.Sprintf("notify: %v", err), "filename", msg.Filename)
	}
}

func (c *Controller) critical(msg *notify.Message) {
	if err := c.notifier.Critical(msg); err != nil {
		c.logger.Log("filetransfer", fmt.Sprintf("notify: %v", err), "filename", msg.Filename)
	}
}
