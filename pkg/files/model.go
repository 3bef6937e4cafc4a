// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("file not found")
	ErrNotPending        = errors.New("file is not pending")
	ErrDuplicateFilename = errors.New("filename already exists")
	ErrInvalidRequest    = errors.New("invalid request")
)

type Direction string

const (
	Outbound Direction = "outbound"
	Inbound  Direction = "inbound"
)

type Status string

const (
	// Pending files are stored and waiting for the next cutoff to be uploaded.
	Pending  Status = "pending"
	Uploaded Status = "uploaded"
	Failed   Status = "failed"

	// Received files were downloaded from the ODFI.
	Received Status = "received"
)

func ParseStatus(v string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case Pending, Uploaded, Failed, Received:
		return s, nil
	}
	return "", fmt.Errorf("unknown file status %q", v)
}

// File is the metadata kept for each NACHA file the service created or received.
type File struct {
	FileID    string    `json:"fileID"`
	Filename  string    `json:"filename"`
	Direction Direction `json:"direction"`
	Status    Status    `json:"status"`

	ImmediateOrigin      string `json:"immediateOrigin"`
	ImmediateDestination string `json:"immediateDestination"`

	BatchCount  int    `json:"batchCount"`
	EntryCount  int    `json:"entryCount"`
	TotalDebit  string `json:"totalDebit"`
	TotalCredit string `json:"totalCredit"`

	StoragePath string `json:"-"`
	Hostname    string `json:"hostname,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

type ListOptions struct {
	Status    Status
	Direction Direction

	// CreatedAfter limits results to files created at or after this time.
	CreatedAfter time.Time

	Limit int
}
