// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"errors"
	"io"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
)

// Agent moves NACHA files to and from the ODFI's FTP or SFTP server.
type Agent interface {
	GetInboundFiles() ([]File, error)
	GetReturnFiles() ([]File, error)
	UploadFile(f File) error
	Delete(path string) error

	InboundPath() string
	OutboundPath() string
	ReturnPath() string

	// Hostname is the remote server without its port
	Hostname() string

	Ping() error
	Close() error
}

// File is a remote file. Contents are closed by Agent.UploadFile.
type File struct {
	Filename string
	Contents io.ReadCloser
}

func (f File) Close() error {
	if f.Contents != nil {
		return f.Contents.Close()
	}
	return nil
}

var ErrNotConfigured = errors.New("no ftp or sftp server configured")

// New connects to the server described in cfg.
func New(logger log.Logger, cfg config.ODFI) (Agent, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	switch {
	case cfg.FTP != nil:
		return newFTPTransferAgent(logger, cfg)
	case cfg.SFTP != nil:
		return newSFTPTransferAgent(logger, cfg)
	}
	return nil, ErrNotConfigured
}
