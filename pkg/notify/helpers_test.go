// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"testing"

	"github.com/moov-io/achfile/pkg/nacha"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testFile(t *testing.T) *nacha.File {
	t.Helper()

	file, err := nacha.NewFile(nacha.FileOptions{
		ImmediateDestination: "076401251",
		ImmediateOrigin:      "076401251",
		ImmediateOriginName:  "Moov",
	})
	require.NoError(t, err)

	batch, err := nacha.NewBatch(nacha.BatchOptions{
		ServiceClassCode:        "200",
		CompanyName:             "Moov",
		StandardEntryClassCode:  "PPD",
		CompanyIdentification:   "123456789",
		CompanyEntryDescription: "PAYROLL",
		EffectiveEntryDate:      "200529",
		OriginatingDFI:          "076401251",
	})
	require.NoError(t, err)

	for _, tc := range []struct{ code, amount string }{{"27", "105.00"}, {"22", "12.50"}} {
		entry, err := nacha.NewEntry(nacha.EntryOptions{
			TransactionCode: tc.code,
			ReceivingDFI:    "081000210",
			DFIAccount:      "5654221",
			Amount:          decimal.RequireFromString(tc.amount),
			IndividualName:  "Jane Doe",
		})
		require.NoError(t, err)
		batch.AddEntry(entry)
	}
	file.AddBatch(batch)

	return file
}
