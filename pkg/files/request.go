// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moov-io/achfile/internal/textx"
	"github.com/moov-io/achfile/pkg/nacha"
	"github.com/moov-io/achfile/pkg/util"
	"github.com/moov-io/base"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// CreateFile is the JSON body used to build a NACHA file.
type CreateFile struct {
	// Filename is optional, one is generated from the outbound filename template when empty.
	Filename string        `json:"filename,omitempty" validate:"omitempty,max=100,excludesall=/\\"`
	Header   FileHeader    `json:"header"`
	Batches  []CreateBatch `json:"batches" validate:"required,min=1,dive"`
}

type FileHeader struct {
	ImmediateDestination     string `json:"immediateDestination" validate:"required,numeric,min=8,max=9"`
	ImmediateOrigin          string `json:"immediateOrigin" validate:"required,max=10"`
	ImmediateDestinationName string `json:"immediateDestinationName,omitempty" validate:"max=23"`
	ImmediateOriginName      string `json:"immediateOriginName,omitempty" validate:"max=23"`
	ReferenceCode            string `json:"referenceCode,omitempty" validate:"max=8"`

	FileCreationDate string `json:"fileCreationDate,omitempty" validate:"omitempty,numeric,len=6"`
	FileCreationTime string `json:"fileCreationTime,omitempty" validate:"omitempty,numeric,len=4"`
	FileIDModifier   string `json:"fileIDModifier,omitempty" validate:"omitempty,len=1"`
}

type CreateBatch struct {
	ServiceClassCode         string `json:"serviceClassCode" validate:"required,oneof=200 220 225"`
	CompanyName              string `json:"companyName" validate:"required"`
	CompanyDiscretionaryData string `json:"companyDiscretionaryData,omitempty" validate:"max=20"`
	CompanyIdentification    string `json:"companyIdentification" validate:"required,max=10"`
	StandardEntryClassCode   string `json:"standardEntryClassCode" validate:"required,alpha,len=3"`
	CompanyEntryDescription  string `json:"companyEntryDescription" validate:"required"`
	CompanyDescriptiveDate   string `json:"companyDescriptiveDate,omitempty"`

	// EffectiveEntryDate is YYMMDD or YYYY-MM-DD. The next banking day is used when empty.
	EffectiveEntryDate string `json:"effectiveEntryDate,omitempty"`

	OriginatingDFI string `json:"originatingDFI" validate:"required,numeric,min=8,max=9"`

	Entries []CreateEntry `json:"entries" validate:"required,min=1,dive"`
}

type CreateEntry struct {
	TransactionCode   string          `json:"transactionCode" validate:"required,numeric,len=2"`
	ReceivingDFI      string          `json:"receivingDFI" validate:"required,numeric,min=8,max=9"`
	DFIAccount        string          `json:"DFIAccount" validate:"required"`
	Amount            decimal.Decimal `json:"amount"`
	IDNumber          string          `json:"idNumber,omitempty" validate:"max=15"`
	IndividualName    string          `json:"individualName" validate:"required"`
	DiscretionaryData string          `json:"discretionaryData,omitempty" validate:"max=2"`
	TraceNumber       string          `json:"traceNumber,omitempty" validate:"omitempty,numeric,len=15"`

	Addenda []CreateAddenda `json:"addenda,omitempty" validate:"max=9999,dive"`
}

type CreateAddenda struct {
	PaymentRelatedInformation string `json:"paymentRelatedInformation" validate:"max=80"`
}

// Sanitize rewrites free text fields into the printable ASCII NACHA allows.
func (req *CreateFile) Sanitize() {
	req.Filename = strings.TrimSpace(req.Filename)
	req.Header.ImmediateDestination = strings.TrimSpace(req.Header.ImmediateDestination)
	req.Header.ImmediateOrigin = strings.TrimSpace(req.Header.ImmediateOrigin)
	req.Header.ImmediateDestinationName = textx.Upper(req.Header.ImmediateDestinationName)
	req.Header.ImmediateOriginName = textx.Upper(req.Header.ImmediateOriginName)

	for i := range req.Batches {
		b := &req.Batches[i]
		b.CompanyName = textx.ASCII(b.CompanyName)
		b.CompanyEntryDescription = textx.Upper(b.CompanyEntryDescription)
		b.CompanyDiscretionaryData = textx.ASCII(b.CompanyDiscretionaryData)
		b.StandardEntryClassCode = strings.ToUpper(strings.TrimSpace(b.StandardEntryClassCode))

		for j := range b.Entries {
			e := &b.Entries[j]
			e.IndividualName = textx.ASCII(e.IndividualName)
			e.IDNumber = textx.ASCII(e.IDNumber)
			for k := range e.Addenda {
				e.Addenda[k].PaymentRelatedInformation = textx.ASCII(e.Addenda[k].PaymentRelatedInformation)
			}
		}
	}
}

func (req CreateFile) Validate() error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var el base.ErrorList
			for i := range verrs {
				el.Add(fmt.Errorf("%s failed on %s", verrs[i].Namespace(), verrs[i].Tag()))
			}
			return el
		}
		return err
	}
	for i := range req.Batches {
		for j := range req.Batches[i].Entries {
			if req.Batches[i].Entries[j].Amount.IsNegative() {
				return fmt.Errorf("batch %d entry %d: %w: negative amount", i+1, j+1, ErrInvalidRequest)
			}
		}
	}
	return nil
}

// Build assembles a NACHA file from req. Effective entry dates default to
// the next banking day in loc.
func Build(req CreateFile, loc *time.Location, options ...nacha.Option) (*nacha.File, error) {
	if loc == nil {
		loc = time.UTC
	}

	file, err := nacha.NewFile(nacha.FileOptions{
		ImmediateDestination:     req.Header.ImmediateDestination,
		ImmediateOrigin:          req.Header.ImmediateOrigin,
		ImmediateDestinationName: req.Header.ImmediateDestinationName,
		ImmediateOriginName:      req.Header.ImmediateOriginName,
		ReferenceCode:            req.Header.ReferenceCode,
		FileCreationDate:         req.Header.FileCreationDate,
		FileCreationTime:         req.Header.FileCreationTime,
		FileIDModifier:           req.Header.FileIDModifier,
		BatchSequenceNumber:      1,
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("file header: %w", err)
	}

	for i, b := range req.Batches {
		opts := nacha.BatchOptions{
			ServiceClassCode:         b.ServiceClassCode,
			CompanyName:              b.CompanyName,
			CompanyDiscretionaryData: b.CompanyDiscretionaryData,
			CompanyIdentification:    b.CompanyIdentification,
			StandardEntryClassCode:   b.StandardEntryClassCode,
			CompanyEntryDescription:  b.CompanyEntryDescription,
			CompanyDescriptiveDate:   b.CompanyDescriptiveDate,
			OriginatingDFI:           b.OriginatingDFI,
		}
		switch {
		case b.EffectiveEntryDate == "":
			opts.EffectiveEntry = base.Now(loc).AddBankingDay(1).Time
		case len(b.EffectiveEntryDate) == 6:
			opts.EffectiveEntryDate = b.EffectiveEntryDate
		default:
			when := util.FirstParsedTime(b.EffectiveEntryDate, util.DateFormats...)
			if when.IsZero() {
				return nil, fmt.Errorf("batch %d: %w: unable to parse effective entry date %q", i+1, ErrInvalidRequest, b.EffectiveEntryDate)
			}
			opts.EffectiveEntry = when
		}

		batch, err := nacha.NewBatch(opts, options...)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}

		for j, e := range b.Entries {
			entry, err := nacha.NewEntry(nacha.EntryOptions{
				TransactionCode:   e.TransactionCode,
				ReceivingDFI:      e.ReceivingDFI,
				DFIAccount:        e.DFIAccount,
				Amount:            e.Amount,
				IDNumber:          e.IDNumber,
				IndividualName:    e.IndividualName,
				DiscretionaryData: e.DiscretionaryData,
				TraceNumber:       e.TraceNumber,
			}, options...)
			if err != nil {
				return nil, fmt.Errorf("batch %d entry %d: %w", i+1, j+1, err)
			}
			for k, a := range e.Addenda {
				addenda, err := nacha.NewAddenda(nacha.AddendaOptions{
					PaymentRelatedInformation: a.PaymentRelatedInformation,
				}, options...)
				if err != nil {
					return nil, fmt.Errorf("batch %d entry %d addenda %d: %w", i+1, j+1, k+1, err)
				}
				entry.AddAddenda(addenda)
			}
			batch.AddEntry(entry)
		}
		file.AddBatch(batch)
	}
	return file, nil
}
