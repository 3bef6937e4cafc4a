// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package events

import (
	"regexp"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/nacha"
	"github.com/moov-io/base"
)

const (
	TypeFileCreated  = "FileCreated"
	TypeFileUploaded = "FileUploaded"
	TypeFileReceived = "FileReceived"
)

// FileSummary holds the totals of a NACHA file.
type FileSummary struct {
	BatchCount  int    `json:"batchCount"`
	EntryCount  int    `json:"entryCount"`
	TotalDebit  string `json:"totalDebit"`
	TotalCredit string `json:"totalCredit"`
}

// Summarize counts the non-empty batches, entries and totals of file.
func Summarize(file *nacha.File) FileSummary {
	if file == nil {
		return FileSummary{TotalDebit: "0.00", TotalCredit: "0.00"}
	}
	batches := 0
	for _, b := range file.Batches() {
		if len(b.Entries()) > 0 {
			batches++
		}
	}
	return FileSummary{
		BatchCount:  batches,
		EntryCount:  file.EntryCount(),
		TotalDebit:  file.TotalDebit().StringFixed(2),
		TotalCredit: file.TotalCredit().StringFixed(2),
	}
}

type FileCreated struct {
	EventID  string `json:"eventID"`
	FileID   string `json:"fileID"`
	Filename string `json:"filename"`
	FileURL  string `json:"fileURL"`
	FileSummary
}

func (e *FileCreated) ID() string   { return e.EventID }
func (e *FileCreated) Type() string { return TypeFileCreated }

func NewFileCreated(cfg config.HTTP, fileID, filename string, file *nacha.File) (*FileCreated, error) {
	fileURL, err := buildFileURL(cfg, fileID)
	if err != nil {
		return nil, err
	}
	return &FileCreated{
		EventID:     base.ID(),
		FileID:      fileID,
		Filename:    filename,
		FileURL:     fileURL,
		FileSummary: Summarize(file),
	}, nil
}

type FileUploaded struct {
	EventID  string `json:"eventID"`
	FileID   string `json:"fileID"`
	Filename string `json:"filename"`
	Hostname string `json:"hostname"`
}

func (e *FileUploaded) ID() string   { return e.EventID }
func (e *FileUploaded) Type() string { return TypeFileUploaded }

func NewFileUploaded(fileID, filename, hostname string) *FileUploaded {
	return &FileUploaded{
		EventID:  base.ID(),
		FileID:   fileID,
		Filename: filename,
		Hostname: hostname,
	}
}

// FileReceived is sent for each file downloaded from the ODFI. Returned
// entries are listed by their trace number and return reason code.
type FileReceived struct {
	EventID  string `json:"eventID"`
	FileID   string `json:"fileID"`
	Filename string `json:"filename"`
	FileSummary

	Returns []Return `json:"returns,omitempty"`
}

type Return struct {
	TraceNumber string `json:"traceNumber"`
	Code        string `json:"code"`
}

func (e *FileReceived) ID() string   { return e.EventID }
func (e *FileReceived) Type() string { return TypeFileReceived }

var returnCode = regexp.MustCompile(`^R\d{2}$`)

func NewFileReceived(fileID, filename string, file *nacha.File) *FileReceived {
	event := &FileReceived{
		EventID:     base.ID(),
		FileID:      fileID,
		Filename:    filename,
		FileSummary: Summarize(file),
	}
	if file == nil {
		return event
	}
	for _, b := range file.Batches() {
		for _, e := range b.Entries() {
			for _, a := range e.Addenda() {
				if code := a.ReturnCode(); returnCode.MatchString(code) {
					event.Returns = append(event.Returns, Return{
						TraceNumber: e.TraceNumber(),
						Code:        code,
					})
					break
				}
			}
		}
	}
	return event
}
