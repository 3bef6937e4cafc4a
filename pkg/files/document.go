// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"strconv"
	"strings"

	"github.com/moov-io/achfile/pkg/nacha"
	"github.com/moov-io/achfile/x/mask"
)

// Document is the JSON form of a parsed NACHA file. Its header and batches
// can be sent back as a CreateFile to rebuild the same file.
type Document struct {
	Header  FileHeader    `json:"header"`
	Batches []CreateBatch `json:"batches"`
	Control FileControl   `json:"control"`
}

type FileControl struct {
	BatchCount   int    `json:"batchCount"`
	BlockCount   int    `json:"blockCount"`
	AddendaCount int    `json:"addendaCount"`
	EntryHash    string `json:"entryHash"`
	TotalDebit   string `json:"totalDebit"`
	TotalCredit  string `json:"totalCredit"`
}

type DescribeOption func(*describer)

type describer struct {
	maskAccounts bool
}

// MaskAccountNumbers hides all but the last four digits of each DFIAccount.
func MaskAccountNumbers() DescribeOption {
	return func(d *describer) {
		d.maskAccounts = true
	}
}

func Describe(file *nacha.File, opts ...DescribeOption) *Document {
	d := &describer{}
	for i := range opts {
		opts[i](d)
	}

	// render once so control totals and trace numbers are current
	file.GenerateBatches()

	doc := &Document{
		Header: FileHeader{
			ImmediateDestination:     value(file.Header.ImmediateDestination),
			ImmediateOrigin:          value(file.Header.ImmediateOrigin),
			ImmediateDestinationName: value(file.Header.ImmediateDestinationName),
			ImmediateOriginName:      value(file.Header.ImmediateOriginName),
			ReferenceCode:            value(file.Header.ReferenceCode),
			FileCreationDate:         value(file.Header.FileCreationDate),
			FileCreationTime:         value(file.Header.FileCreationTime),
			FileIDModifier:           value(file.Header.FileIDModifier),
		},
		Control: FileControl{
			BatchCount:   atoi(file.Control.BatchCount),
			BlockCount:   atoi(file.Control.BlockCount),
			AddendaCount: atoi(file.Control.AddendaCount),
			EntryHash:    value(file.Control.EntryHash),
			TotalDebit:   value(file.Control.TotalDebit),
			TotalCredit:  value(file.Control.TotalCredit),
		},
	}

	for _, b := range file.Batches() {
		if len(b.Entries()) == 0 {
			continue
		}
		batch := CreateBatch{
			ServiceClassCode:         value(b.Header.ServiceClassCode),
			CompanyName:              value(b.Header.CompanyName),
			CompanyDiscretionaryData: value(b.Header.CompanyDiscretionaryData),
			CompanyIdentification:    value(b.Header.CompanyIdentification),
			StandardEntryClassCode:   value(b.Header.StandardEntryClassCode),
			CompanyEntryDescription:  value(b.Header.CompanyEntryDescription),
			CompanyDescriptiveDate:   value(b.Header.CompanyDescriptiveDate),
			EffectiveEntryDate:       value(b.Header.EffectiveEntryDate),
			OriginatingDFI:           value(b.Header.OriginatingDFI),
		}
		for _, e := range b.Entries() {
			entry := CreateEntry{
				TransactionCode:   value(e.Fields.TransactionCode),
				ReceivingDFI:      e.RoutingNumber(),
				DFIAccount:        value(e.Fields.DFIAccount),
				Amount:            e.Amount(),
				IDNumber:          value(e.Fields.IDNumber),
				IndividualName:    value(e.Fields.IndividualName),
				DiscretionaryData: value(e.Fields.DiscretionaryData),
				TraceNumber:       e.TraceNumber(),
			}
			if d.maskAccounts {
				entry.DFIAccount = mask.AccountNumber(entry.DFIAccount)
			}
			for _, a := range e.Addenda() {
				entry.Addenda = append(entry.Addenda, CreateAddenda{
					PaymentRelatedInformation: value(a.Fields.PaymentRelatedInformation),
				})
			}
			batch.Entries = append(batch.Entries, entry)
		}
		doc.Batches = append(doc.Batches, batch)
	}
	return doc
}

func value(f nacha.Field) string {
	return strings.TrimSpace(f.Value)
}

func atoi(f nacha.Field) int {
	n, _ := strconv.Atoi(strings.TrimSpace(f.Value))
	return n
}
