// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
)

const lineEnding = "\r\n"

// FileOptions overrides the defaults of a file header. Empty values keep the
// default, creation date and time default to the current clock.
type FileOptions struct {
	// ImmediateDestination is the receiving routing number, given as 8 digits its check digit is computed.
	ImmediateDestination     string
	ImmediateOrigin          string
	ImmediateDestinationName string
	ImmediateOriginName      string
	ReferenceCode            string
	FileCreationDate         string
	FileCreationTime         string
	FileIDModifier           string

	// BatchSequenceNumber is assigned to the first batch added, then incremented.
	BatchSequenceNumber int
}

// File is a full NACHA file: a header, control record and batches.
type File struct {
	Header  FileHeader
	Control FileControl

	batches             []*Batch
	batchSequenceNumber int
	logger              log.Logger
}

// NewFile builds a file and validates it unless WithoutValidation is given.
func NewFile(opts FileOptions, options ...Option) (*File, error) {
	s := newSettings(options)

	now := s.now()
	f := &File{
		Header:              newFileHeader(),
		Control:             newFileControl(),
		batchSequenceNumber: opts.BatchSequenceNumber,
		logger:              s.logger,
	}
	f.Header.FileCreationDate.Set(now.Format(DateFormat))
	f.Header.FileCreationTime.Set(now.Format("1504"))

	set := func(fd *Field, v string) {
		if v != "" {
			fd.Set(v)
		}
	}
	set(&f.Header.ImmediateDestination, ComputeCheckDigit(opts.ImmediateDestination))
	set(&f.Header.ImmediateOrigin, opts.ImmediateOrigin)
	set(&f.Header.ImmediateDestinationName, opts.ImmediateDestinationName)
	set(&f.Header.ImmediateOriginName, opts.ImmediateOriginName)
	set(&f.Header.ReferenceCode, opts.ReferenceCode)
	set(&f.Header.FileCreationDate, opts.FileCreationDate)
	set(&f.Header.FileCreationTime, opts.FileCreationTime)
	set(&f.Header.FileIDModifier, opts.FileIDModifier)

	if s.validate {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Validate checks the header's required fields, then lengths and data types
// of the header and control records.
func (f *File) Validate() error {
	header := f.Header.Fields()
	if err := ValidateRequiredFields(header); err != nil {
		return err
	}
	if err := ValidateLengths(header); err != nil {
		return err
	}
	if err := ValidateDataTypes(header); err != nil {
		return err
	}
	control := f.Control.Fields()
	if err := ValidateLengths(control); err != nil {
		return err
	}
	return ValidateDataTypes(control)
}

// AddBatch numbers b with the file's batch sequence number and appends it.
func (f *File) AddBatch(b *Batch) {
	b.setNumber(f.batchSequenceNumber)
	f.batchSequenceNumber++

	f.batches = append(f.batches, b)
}

// Batches returns every batch added, including those without entries.
func (f *File) Batches() []*Batch {
	return f.batches
}

// GenerateBatches fills in missing trace numbers, recomputes the file control
// record and renders every batch which has entries. It returns the rendered
// batches (each line terminated) and the number of rows the file will have
// before block padding.
//
// Missing trace numbers are the first 8 characters of the immediate origin
// followed by the entry's 7 digit index within the file.
// Addenda correlation fields are refreshed from their entry's trace number.
func (f *File) GenerateBatches() (string, int) {
	var buf strings.Builder
	rows := 2

	var (
		batchCount   int
		entryIndex   int
		addendaCount int
		entryHash    int64
		totalDebit   decimal.Decimal
		totalCredit  decimal.Decimal
	)
	origin := truncate(strings.TrimSpace(f.Header.ImmediateOrigin.Value), 8)

	for _, b := range f.batches {
		totalDebit = totalDebit.Add(amountOf(b.Control.TotalDebit.Value))
		totalCredit = totalCredit.Add(amountOf(b.Control.TotalCredit.Value))

		for _, e := range b.entries {
			if e.TraceNumber() == "" {
				e.Fields.TraceNumber.Set(origin + padLeft(strconv.Itoa(entryIndex), 7, '0'))
			}
			// addenda attached before the trace number was filled in
			for _, a := range e.addenda {
				a.setEntryDetailSequenceNumber(e.TraceNumber())
			}
			entryHash += e.receivingDFI()
			addendaCount += e.RecordCount()
			rows += e.RecordCount()
			entryIndex++
		}

		if len(b.entries) > 0 {
			batchCount++
			rows += 2
			buf.WriteString(b.String())
			buf.WriteString(lineEnding)
		}
	}

	f.Control.BatchCount.Set(strconv.Itoa(batchCount))
	f.Control.BlockCount.Set(strconv.Itoa(NextMultipleOf10(rows) / 10))
	f.Control.AddendaCount.Set(strconv.Itoa(addendaCount))
	f.Control.EntryHash.Set(EntryHash(entryHash))
	f.Control.TotalDebit.Set(totalDebit.StringFixed(2))
	f.Control.TotalCredit.Set(totalCredit.StringFixed(2))

	return buf.String(), rows
}

// String renders the whole file: header, batches, control and padding, each
// line terminated by CR LF. Rendering the same file twice produces the same output.
func (f *File) String() string {
	var buf strings.Builder
	buf.WriteString(f.Header.String())
	buf.WriteString(lineEnding)

	batches, rows := f.GenerateBatches()
	buf.WriteString(batches)
	buf.WriteString(f.Control.String())
	buf.WriteString(lineEnding)

	for i := 0; i < PaddingRows(rows); i++ {
		buf.WriteString(PaddingLine)
		buf.WriteString(lineEnding)
	}
	return buf.String()
}

// Write renders the file into w.
func (f *File) Write(w io.Writer) error {
	if _, err := io.WriteString(w, f.String()); err != nil {
		return fmt.Errorf("writing nacha file: %v", err)
	}
	return nil
}

// EntryCount returns the number of entries across every batch.
func (f *File) EntryCount() int {
	n := 0
	for i := range f.batches {
		n += len(f.batches[i].entries)
	}
	return n
}

// TotalDebit sums the debit totals of every batch.
func (f *File) TotalDebit() decimal.Decimal {
	var total decimal.Decimal
	for i := range f.batches {
		total = total.Add(amountOf(f.batches[i].Control.TotalDebit.Value))
	}
	return total
}

// TotalCredit sums the credit totals of every batch.
func (f *File) TotalCredit() decimal.Decimal {
	var total decimal.Decimal
	for i := range f.batches {
		total = total.Add(amountOf(f.batches[i].Control.TotalCredit.Value))
	}
	return total
}

func amountOf(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(strings.TrimSpace(v))
	return d
}
