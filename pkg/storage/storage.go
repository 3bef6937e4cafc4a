// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
)

var (
	ErrNotFound = errors.New("storage: file not found")
)

// Storage keeps the full contents of ACH files, encrypting them at rest
// when a GPG key is configured.
type Storage interface {
	// SaveFile writes contents under path, replacing anything already there.
	SaveFile(ctx context.Context, path string, contents []byte) error

	// ReadFile returns the contents saved under path, decrypted if possible.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	DeleteFile(ctx context.Context, path string) error

	Close() error
}

func NewStorage(logger log.Logger, cfg config.Storage) (Storage, error) {
	if cfg.BucketURI == "" {
		return nil, errors.New("unknown storage config")
	}
	return newBlobStorage(logger, cfg)
}

// OutboundPath is where files created through the service are kept, in a
// sub-path of the day they were created.
func OutboundPath(created time.Time, filename string) string {
	return fmt.Sprintf("outbound/%s/%s", created.Format("2006-01-02"), path.Base(filename))
}

// InboundPath is where files downloaded from the ODFI are kept.
func InboundPath(received time.Time, filename string) string {
	return fmt.Sprintf("inbound/%s/%s", received.Format("2006-01-02"), path.Base(filename))
}
