// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
)

// DateFormat is the YYMMDD layout of NACHA date fields.
const DateFormat = "060102"

// BatchOptions overrides the defaults of a batch header. Empty values keep the default.
type BatchOptions struct {
	ServiceClassCode         string
	CompanyName              string
	CompanyDiscretionaryData string
	CompanyIdentification    string
	StandardEntryClassCode   string
	CompanyEntryDescription  string
	CompanyDescriptiveDate   string

	// EffectiveEntryDate is a YYMMDD date. EffectiveEntry takes precedence when non-zero.
	EffectiveEntryDate string
	EffectiveEntry     time.Time

	// OriginatingDFI accepts an 8 or 9 digit routing number, only the first 8 digits are kept.
	OriginatingDFI string
}

// Batch is a "5" header and "8" control record wrapping a run of entries.
type Batch struct {
	Header  BatchHeader
	Control BatchControl

	entries []*Entry
	logger  log.Logger
}

// NewBatch builds a batch and validates it unless WithoutValidation is given.
// CompanyName, CompanyEntryDescription and CompanyDescriptiveDate are truncated
// to their field widths.
func NewBatch(opts BatchOptions, options ...Option) (*Batch, error) {
	s := newSettings(options)

	b := &Batch{
		Header:  newBatchHeader(),
		Control: newBatchControl(),
		logger:  s.logger,
	}
	set := func(f *Field, v string) {
		if v != "" {
			f.Set(v)
		}
	}
	set(&b.Header.ServiceClassCode, opts.ServiceClassCode)
	set(&b.Header.CompanyDiscretionaryData, opts.CompanyDiscretionaryData)
	set(&b.Header.CompanyIdentification, opts.CompanyIdentification)
	set(&b.Header.StandardEntryClassCode, opts.StandardEntryClassCode)

	if s.validate {
		if err := ValidateRoutingNumber(ComputeCheckDigit(opts.OriginatingDFI)); err != nil {
			return nil, err
		}
	}

	set(&b.Header.CompanyName, truncate(opts.CompanyName, b.Header.CompanyName.Width))
	set(&b.Header.CompanyEntryDescription, truncate(opts.CompanyEntryDescription, b.Header.CompanyEntryDescription.Width))
	set(&b.Header.CompanyDescriptiveDate, truncate(opts.CompanyDescriptiveDate, b.Header.CompanyDescriptiveDate.Width))

	switch {
	case !opts.EffectiveEntry.IsZero():
		b.Header.EffectiveEntryDate.Set(opts.EffectiveEntry.Format(DateFormat))
	case opts.EffectiveEntryDate != "":
		if when, err := time.Parse(DateFormat, opts.EffectiveEntryDate); err == nil {
			b.Header.EffectiveEntryDate.Set(when.Format(DateFormat))
		} else {
			b.Header.EffectiveEntryDate.Set(opts.EffectiveEntryDate)
		}
	}

	if opts.OriginatingDFI != "" {
		b.Header.OriginatingDFI.Set(truncate(ComputeCheckDigit(opts.OriginatingDFI), b.Header.OriginatingDFI.Width))
	}

	b.Control.ServiceClassCode.Set(b.Header.ServiceClassCode.Value)
	b.Control.CompanyIdentification.Set(b.Header.CompanyIdentification.Value)
	b.Control.OriginatingDFI.Set(b.Header.OriginatingDFI.Value)

	if s.validate {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Validate checks the header's required fields and service class code, then
// lengths and data types of the header followed by the control record.
func (b *Batch) Validate() error {
	header := b.Header.Fields()
	if err := ValidateRequiredFields(header); err != nil {
		return err
	}
	if err := ValidateACHServiceClassCode(b.Header.ServiceClassCode.Value); err != nil {
		return err
	}
	if err := ValidateLengths(header); err != nil {
		return err
	}
	if err := ValidateDataTypes(header); err != nil {
		return err
	}

	control := b.Control.Fields()
	if err := ValidateRequiredFields(control); err != nil {
		return err
	}
	if err := ValidateLengths(control); err != nil {
		return err
	}
	return ValidateDataTypes(control)
}

// AddEntry appends e to the batch. The control record's addenda count is
// bumped by e's record count while the entry hash and debit/credit totals are
// recomputed from every entry in the batch.
func (b *Batch) AddEntry(e *Entry) {
	count, _ := strconv.Atoi(strings.TrimSpace(b.Control.AddendaCount.Value))
	b.Control.AddendaCount.Set(strconv.Itoa(count + e.RecordCount()))

	b.entries = append(b.entries, e)

	t := sumEntries(b.logger, b.entries)
	b.Control.EntryHash.Set(EntryHash(t.hash))
	b.Control.TotalDebit.Set(t.debit.StringFixed(2))
	b.Control.TotalCredit.Set(t.credit.StringFixed(2))
}

// Entries returns the batch's entries in insertion order.
func (b *Batch) Entries() []*Entry {
	return b.entries
}

// Number returns the batch number assigned by File.AddBatch.
func (b *Batch) Number() int {
	n, _ := strconv.Atoi(strings.TrimSpace(b.Header.BatchNumber.Value))
	return n
}

func (b *Batch) setNumber(n int) {
	b.Header.BatchNumber.Set(strconv.Itoa(n))
	b.Control.BatchNumber.Set(strconv.Itoa(n))
}

// String renders the header, every entry (with addenda) and the control record.
func (b *Batch) String() string {
	lines := make([]string, 0, len(b.entries)+2)
	lines = append(lines, b.Header.String())
	for i := range b.entries {
		lines = append(lines, b.entries[i].String())
	}
	lines = append(lines, b.Control.String())
	return strings.Join(lines, lineEnding)
}
