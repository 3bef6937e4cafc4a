// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEntry(t *testing.T) {
	entry, err := NewEntry(EntryOptions{
		ReceivingDFI:      "081000210",
		DFIAccount:        "12345678901234567",
		Amount:            decimal.RequireFromString("3521"),
		TransactionCode:   "22",
		IDNumber:          "RAj##23920rjf31",
		IndividualName:    "Glen Selle",
		DiscretionaryData: "A1",
	})
	require.NoError(t, err)

	expected := "622081000210123456789012345670000352100RAj##23920rjf31Glen Selle            A10               "
	require.Equal(t, expected, entry.String())
	require.Equal(t, 1, entry.RecordCount())
	require.Equal(t, "081000210", entry.RoutingNumber())
	require.True(t, decimal.RequireFromString("3521").Equal(entry.Amount()))
}

func TestEntry__Addenda(t *testing.T) {
	entry, err := NewEntry(EntryOptions{
		ReceivingDFI:      "08100021",
		DFIAccount:        "12345678901234567",
		Amount:            decimal.RequireFromString("35.21"),
		TransactionCode:   "22",
		IDNumber:          "RAj##23920rjf31",
		IndividualName:    "Glen Selle",
		DiscretionaryData: "A1",
		TraceNumber:       "081000210000042",
	})
	require.NoError(t, err)
	require.Equal(t, "0", entry.Fields.CheckDigit.Value)

	first, err := NewAddenda(AddendaOptions{PaymentRelatedInformation: "first addenda"})
	require.NoError(t, err)
	second, err := NewAddenda(AddendaOptions{PaymentRelatedInformation: "second addenda"})
	require.NoError(t, err)

	entry.AddAddenda(first)
	entry.AddAddenda(second)

	require.Equal(t, "1", entry.Fields.AddendaID.Value)
	require.Equal(t, 3, entry.RecordCount())
	require.Equal(t, 1, first.SequenceNumber())
	require.Equal(t, 2, second.SequenceNumber())
	require.Equal(t, "0000042", second.Fields.EntryDetailSequenceNumber.Value)

	lines := strings.Split(entry.String(), "\r\n")
	require.Len(t, lines, 3)
	require.Equal(t, "622081000210123456789012345670000003521RAj##23920rjf31Glen Selle            A11081000210000042", lines[0])
	require.Equal(t, "705"+padRight("first addenda", 80, ' ')+"0001"+"0000042", lines[1])
	require.Equal(t, "705"+padRight("second addenda", 80, ' ')+"0002"+"0000042", lines[2])
	for i := range lines {
		require.Len(t, lines[i], RecordLength)
	}
}

func TestEntry__Truncation(t *testing.T) {
	entry, err := NewEntry(EntryOptions{
		ReceivingDFI:    "081000210",
		DFIAccount:      "123456789012345678901",
		TransactionCode: "27",
		IndividualName:  "A very long individual name indeed",
	})
	require.NoError(t, err)
	require.Equal(t, "12345678901234567", entry.Fields.DFIAccount.Value)
	require.Equal(t, "A very long individual", entry.Fields.IndividualName.Value)
	require.Len(t, entry.String(), RecordLength)
}

func TestEntry__Invalid(t *testing.T) {
	base := EntryOptions{
		ReceivingDFI:    "081000210",
		DFIAccount:      "5654221",
		TransactionCode: "22",
		IndividualName:  "Luke Skywalker",
	}

	opts := base
	opts.IndividualName = ""
	_, err := NewEntry(opts)
	require.True(t, IsKind(err, RequiredFieldError))

	opts = base
	opts.TransactionCode = "21"
	_, err = NewEntry(opts)
	require.True(t, IsKind(err, CodeError))

	// entries carrying addenda accept any transaction code
	opts.AddendaID = "1"
	_, err = NewEntry(opts)
	require.NoError(t, err)

	opts = base
	opts.ReceivingDFI = "081000211"
	_, err = NewEntry(opts)
	require.True(t, IsKind(err, ChecksumError))

	opts = base
	opts.Amount = decimal.RequireFromString("123456789.00")
	_, err = NewEntry(opts)
	require.True(t, IsKind(err, LengthError))

	opts = base
	opts.IDNumber = "naïve"
	_, err = NewEntry(opts)
	require.True(t, IsKind(err, DataTypeError))

	// skipped validation
	opts = base
	opts.TransactionCode = "21"
	entry, err := NewEntry(opts, WithoutValidation())
	require.NoError(t, err)
	require.True(t, IsKind(entry.Validate(), CodeError))
}

func TestAddenda(t *testing.T) {
	a, err := NewAddenda(AddendaOptions{PaymentRelatedInformation: "R01 insufficient funds"})
	require.NoError(t, err)
	require.Equal(t, "05", a.Fields.AddendaTypeCode.Value)
	require.Equal(t, "R01", a.ReturnCode())
	require.Len(t, a.String(), RecordLength)

	empty, err := NewAddenda(AddendaOptions{})
	require.NoError(t, err)
	require.Equal(t, "", empty.ReturnCode())

	_, err = NewAddenda(AddendaOptions{AddendaTypeCode: "03"})
	require.True(t, IsKind(err, CodeError))

	_, err = NewAddenda(AddendaOptions{PaymentRelatedInformation: strings.Repeat("x", 81)})
	require.True(t, IsKind(err, LengthError))
}

func TestAddenda__ReturnCodeOption(t *testing.T) {
	a, err := NewAddenda(AddendaOptions{ReturnCode: "R01x"})
	require.NoError(t, err)
	require.Equal(t, "R01", a.ReturnCode())
	require.Len(t, a.String(), RecordLength)
	require.True(t, strings.HasPrefix(a.String(), "705R01"))

	a, err = NewAddenda(AddendaOptions{ReturnCode: "R03", PaymentRelatedInformation: "no account"})
	require.NoError(t, err)
	require.Equal(t, "R03", a.ReturnCode())
	require.Equal(t, "R03no account", a.Fields.PaymentRelatedInformation.Value)

	// already carrying the code
	a, err = NewAddenda(AddendaOptions{ReturnCode: "R01", PaymentRelatedInformation: "R01 insufficient funds"})
	require.NoError(t, err)
	require.Equal(t, "R01 insufficient funds", a.Fields.PaymentRelatedInformation.Value)
}
