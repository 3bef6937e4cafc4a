// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"strconv"
	"strings"
)

// AddendaOptions overrides the defaults of an addenda record. Empty values keep the default.
type AddendaOptions struct {
	AddendaTypeCode           string
	PaymentRelatedInformation string
	AddendaSequenceNumber     string
	EntryDetailSequenceNumber string

	// ReturnCode is written as the first three characters of the payment
	// related information. Longer values are truncated.
	ReturnCode string
}

// Addenda is a "7" record attached to an Entry.
type Addenda struct {
	Fields AddendaRecord
}

// NewAddenda builds an addenda record and validates it unless WithoutValidation is given.
func NewAddenda(opts AddendaOptions, options ...Option) (*Addenda, error) {
	s := newSettings(options)

	a := &Addenda{Fields: newAddendaRecord()}
	if opts.AddendaTypeCode != "" {
		a.Fields.AddendaTypeCode.Set(opts.AddendaTypeCode)
	}
	if opts.PaymentRelatedInformation != "" {
		a.Fields.PaymentRelatedInformation.Set(opts.PaymentRelatedInformation)
	}
	if opts.ReturnCode != "" {
		a.setReturnCode(opts.ReturnCode)
	}
	if opts.AddendaSequenceNumber != "" {
		a.Fields.AddendaSequenceNumber.Set(opts.AddendaSequenceNumber)
	}
	if opts.EntryDetailSequenceNumber != "" {
		a.Fields.EntryDetailSequenceNumber.Set(opts.EntryDetailSequenceNumber)
	}

	if s.validate {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Validate checks the addenda type code, then required fields, lengths and data types.
func (a *Addenda) Validate() error {
	if err := ValidateACHAddendaTypeCode(a.Fields.AddendaTypeCode.Value); err != nil {
		return err
	}
	fields := a.Fields.Fields()
	if err := ValidateRequiredFields(fields); err != nil {
		return err
	}
	if err := ValidateLengths(fields); err != nil {
		return err
	}
	return ValidateDataTypes(fields)
}

// SequenceNumber returns the addenda's position under its entry, starting at 1.
func (a *Addenda) SequenceNumber() int {
	n, _ := strconv.Atoi(strings.TrimSpace(a.Fields.AddendaSequenceNumber.Value))
	return n
}

func (a *Addenda) setSequenceNumber(n int) {
	a.Fields.AddendaSequenceNumber.Set(strconv.Itoa(n))
}

// setEntryDetailSequenceNumber copies the last seven characters of the entry's trace number.
func (a *Addenda) setEntryDetailSequenceNumber(traceNumber string) {
	if len(traceNumber) > 7 {
		traceNumber = traceNumber[len(traceNumber)-7:]
	}
	a.Fields.EntryDetailSequenceNumber.Set(traceNumber)
}

// ReturnCode returns the first three characters of the payment related
// information, which is where return addenda carry their reason code (R01, R03...).
func (a *Addenda) ReturnCode() string {
	info := strings.TrimSpace(a.Fields.PaymentRelatedInformation.Value)
	if len(info) < 3 {
		return info
	}
	return info[:3]
}

func (a *Addenda) setReturnCode(code string) {
	code = padRight(truncate(strings.TrimSpace(code), 3), 3, ' ')
	info := a.Fields.PaymentRelatedInformation.Value
	if strings.HasPrefix(info, code) {
		return
	}
	a.Fields.PaymentRelatedInformation.Set(code + info)
}

func (a *Addenda) String() string {
	return a.Fields.String()
}
