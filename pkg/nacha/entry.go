// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// EntryOptions overrides the defaults of an entry detail record. Empty strings keep the default.
type EntryOptions struct {
	TransactionCode string
	// ReceivingDFI is either the 8-digit prefix, in which case the check digit is
	// computed, or the full 9-digit routing number.
	ReceivingDFI      string
	CheckDigit        string
	DFIAccount        string
	Amount            decimal.Decimal
	IDNumber          string
	IndividualName    string
	DiscretionaryData string
	AddendaID         string
	TraceNumber       string
}

// Entry is a "6" record along with its addenda.
type Entry struct {
	Fields EntryDetail

	addenda []*Addenda
}

// NewEntry builds an entry detail record and validates it unless WithoutValidation is given.
// DFIAccount and IndividualName are truncated to their field widths.
func NewEntry(opts EntryOptions, options ...Option) (*Entry, error) {
	s := newSettings(options)

	e := &Entry{Fields: newEntryDetail()}
	set := func(f *Field, v string) {
		if v != "" {
			f.Set(v)
		}
	}
	set(&e.Fields.TransactionCode, opts.TransactionCode)
	set(&e.Fields.CheckDigit, opts.CheckDigit)
	set(&e.Fields.IDNumber, opts.IDNumber)
	set(&e.Fields.DiscretionaryData, opts.DiscretionaryData)
	set(&e.Fields.AddendaID, opts.AddendaID)
	set(&e.Fields.TraceNumber, opts.TraceNumber)

	if opts.ReceivingDFI != "" {
		routing := ComputeCheckDigit(opts.ReceivingDFI)
		e.Fields.ReceivingDFI.Set(routing[:len(routing)-1])
		e.Fields.CheckDigit.Set(routing[len(routing)-1:])
	}
	set(&e.Fields.DFIAccount, truncate(opts.DFIAccount, e.Fields.DFIAccount.Width))
	set(&e.Fields.IndividualName, truncate(opts.IndividualName, e.Fields.IndividualName.Width))
	e.Fields.Amount.Set(opts.Amount.String())

	if s.validate {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Validate checks required fields, the transaction code, the receiving routing
// number, then lengths and data types. Entries carrying addenda accept any
// transaction code.
func (e *Entry) Validate() error {
	fields := e.Fields.Fields()
	if err := ValidateRequiredFields(fields); err != nil {
		return err
	}
	if e.Fields.AddendaID.Value == "0" {
		if err := ValidateACHCode(e.Fields.TransactionCode.Value); err != nil {
			return err
		}
	} else {
		if err := ValidateACHAddendaCode(e.Fields.TransactionCode.Value); err != nil {
			return err
		}
	}
	if err := ValidateRoutingNumber(e.Fields.ReceivingDFI.Value + e.Fields.CheckDigit.Value); err != nil {
		return err
	}
	if err := ValidateLengths(fields); err != nil {
		return err
	}
	return ValidateDataTypes(fields)
}

// AddAddenda attaches a to the entry, flags the entry as carrying addenda and
// numbers the addenda after those already attached.
func (e *Entry) AddAddenda(a *Addenda) {
	e.Fields.AddendaID.Set("1")

	a.setSequenceNumber(len(e.addenda) + 1)
	a.setEntryDetailSequenceNumber(e.TraceNumber())

	e.addenda = append(e.addenda, a)
}

// Addenda returns the attached addenda in insertion order.
func (e *Entry) Addenda() []*Addenda {
	return e.addenda
}

// RecordCount is the number of lines this entry writes: itself plus its addenda.
func (e *Entry) RecordCount() int {
	return 1 + len(e.addenda)
}

func (e *Entry) TraceNumber() string {
	return strings.TrimSpace(e.Fields.TraceNumber.Value)
}

// Amount returns the entry amount in dollars, or zero if it can't be parsed.
func (e *Entry) Amount() decimal.Decimal {
	d, _ := decimal.NewFromString(strings.TrimSpace(e.Fields.Amount.Value))
	return d
}

// RoutingNumber returns the receiving DFI along with its check digit.
func (e *Entry) RoutingNumber() string {
	return e.Fields.ReceivingDFI.Value + e.Fields.CheckDigit.Value
}

func (e *Entry) receivingDFI() int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(e.Fields.ReceivingDFI.Value), 10, 64)
	return n
}

// String renders the entry followed by each addenda, one record per line.
func (e *Entry) String() string {
	lines := make([]string, 0, e.RecordCount())
	lines = append(lines, e.Fields.String())
	for i := range e.addenda {
		lines = append(lines, e.addenda[i].String())
	}
	return strings.Join(lines, lineEnding)
}
