// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testClock = func() time.Time {
	return time.Date(2023, time.July, 8, 22, 10, 0, 0, time.UTC)
}

func testFile(t *testing.T) *File {
	t.Helper()

	file, err := NewFile(FileOptions{
		ImmediateDestination:     "081000032",
		ImmediateOrigin:          "123456789",
		ImmediateDestinationName: "Some Bank",
		ImmediateOriginName:      "Your Company Inc",
		ReferenceCode:            "#A000001",
		BatchSequenceNumber:      1,
	}, WithClock(testClock))
	require.NoError(t, err)

	batch := testBatch(t)

	entry, err := NewEntry(EntryOptions{
		ReceivingDFI:      "081000210",
		DFIAccount:        "5654221",
		Amount:            decimal.RequireFromString("1.75"),
		IDNumber:          "RAj##32b1kn1bb3",
		IndividualName:    "Luke Skywalker",
		DiscretionaryData: "A1",
		TransactionCode:   "22",
	})
	require.NoError(t, err)

	addenda, err := NewAddenda(AddendaOptions{
		PaymentRelatedInformation: "0123456789ABCDEFGJIJKLMNOPQRSTUVWXYXabcdefgjijklmnopqrstuvwxyx",
	})
	require.NoError(t, err)

	entry.AddAddenda(addenda)
	batch.AddEntry(entry)
	file.AddBatch(batch)

	return file
}

func TestFile__Header(t *testing.T) {
	file := testFile(t)

	expected := "101 081000032 1234567892307082210A094101Some Bank              Your Company Inc       #A000001"
	require.Equal(t, expected, file.Header.String())

	// 8 digit destinations get a check digit
	other, err := NewFile(FileOptions{ImmediateDestination: "08100003", ImmediateOrigin: "123456789"}, WithClock(testClock))
	require.NoError(t, err)
	require.Equal(t, "081000032", other.Header.ImmediateDestination.Value)
}

func TestFile__Invalid(t *testing.T) {
	_, err := NewFile(FileOptions{ImmediateOrigin: "123456789"})
	require.True(t, IsKind(err, RequiredFieldError))

	_, err = NewFile(FileOptions{ImmediateDestination: "081000032", ImmediateOrigin: "123456789", ReferenceCode: "too long reference"})
	require.True(t, IsKind(err, LengthError))

	_, err = NewFile(FileOptions{ImmediateDestination: "081000032", ImmediateOrigin: "123456789", ImmediateOriginName: "Café"})
	require.True(t, IsKind(err, DataTypeError))

	_, err = NewFile(FileOptions{}, WithoutValidation())
	require.NoError(t, err)
}

func TestFile__String(t *testing.T) {
	file := testFile(t)
	out := file.String()

	require.True(t, strings.HasSuffix(out, "\r\n"))
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, lines, 10)
	for i := range lines {
		require.Len(t, lines[i], RecordLength, "line %d", i+1)
	}

	require.Equal(t, "5220Your Company Inc"+strings.Repeat(" ", 20)+"123456789 WEBTrans DescJul 8 230709   1081000030000001", lines[1])
	require.Equal(t, "622081000210"+padRight("5654221", 17, ' ')+"0000000175RAj##32b1kn1bb3"+padRight("Luke Skywalker", 22, ' ')+"A11123456780000000", lines[2])
	require.Equal(t, "705"+padRight("0123456789ABCDEFGJIJKLMNOPQRSTUVWXYXabcdefgjijklmnopqrstuvwxyx", 80, ' ')+"00010000000", lines[3])
	require.Equal(t, "82200000020008100021000000000000000000000175123456789 "+strings.Repeat(" ", 25)+"081000030000001", lines[4])
	require.Equal(t, "9000001000001000000020008100021000000000000000000000175"+strings.Repeat(" ", 39), lines[5])
	for _, line := range lines[6:] {
		require.Equal(t, PaddingLine, line)
	}

	// rendering is repeatable
	require.Equal(t, out, file.String())

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	require.Equal(t, out, buf.String())
}

func TestFile__GenerateBatches(t *testing.T) {
	file := testFile(t)

	// an empty batch is numbered but skipped in the output and counts
	empty := testBatch(t)
	file.AddBatch(empty)
	require.Equal(t, 2, empty.Number())

	second := testBatch(t)
	second.AddEntry(testEntry(t, "27", "10.00"))
	second.AddEntry(testEntry(t, "37", "0.25"))
	file.AddBatch(second)
	require.Equal(t, 3, second.Number())
	require.Len(t, file.Batches(), 3)

	out, rows := file.GenerateBatches()
	// header + control, first batch (2 + entry + addenda), second batch (2 + 2 entries)
	require.Equal(t, 2+4+4, rows)
	require.Equal(t, 8, strings.Count(out, "\r\n"))

	require.Equal(t, "2", file.Control.BatchCount.Value)
	require.Equal(t, "1", file.Control.BlockCount.Value)
	require.Equal(t, "4", file.Control.AddendaCount.Value)
	require.Equal(t, "24300063", file.Control.EntryHash.Value)
	require.Equal(t, "10.25", file.Control.TotalDebit.Value)
	require.Equal(t, "1.75", file.Control.TotalCredit.Value)

	// trace numbers are filled in with a running index over the file
	require.Equal(t, "123456780000000", file.Batches()[0].Entries()[0].TraceNumber())
	require.Equal(t, "123456780000001", second.Entries()[0].TraceNumber())
	require.Equal(t, "123456780000002", second.Entries()[1].TraceNumber())

	require.Equal(t, 3, file.EntryCount())
	require.True(t, decimal.RequireFromString("10.25").Equal(file.TotalDebit()))
	require.True(t, decimal.RequireFromString("1.75").Equal(file.TotalCredit()))

	// regenerating does not double count
	file.GenerateBatches()
	require.Equal(t, "2", file.Control.BatchCount.Value)
}

func TestFile__ExistingTraceNumbers(t *testing.T) {
	file := testFile(t)
	batch := testBatch(t)
	entry := testEntry(t, "22", "1.00")
	entry.Fields.TraceNumber.Set("081000210000099")
	batch.AddEntry(entry)
	file.AddBatch(batch)

	file.GenerateBatches()
	require.Equal(t, "081000210000099", entry.TraceNumber())
}

func TestFile__BlockCount(t *testing.T) {
	file := testFile(t)
	batch := testBatch(t)
	for i := 0; i < 9; i++ {
		batch.AddEntry(testEntry(t, "22", "1.00"))
	}
	file.AddBatch(batch)

	lines := strings.Split(strings.TrimSuffix(file.String(), "\r\n"), "\r\n")
	// 2 + 4 + 11 rows rounds to 20
	require.Len(t, lines, 20)
	require.Equal(t, "2", file.Control.BlockCount.Value)
	require.Equal(t, "11", file.Control.AddendaCount.Value)
}

func TestFile__AddendaFollowTraceNumbers(t *testing.T) {
	file := testFile(t)
	for i := 0; i < 2; i++ {
		batch := testBatch(t)
		for j := 0; j < 3; j++ {
			entry := testEntry(t, "22", "1.00")
			addenda, err := NewAddenda(AddendaOptions{PaymentRelatedInformation: "invoice"})
			require.NoError(t, err)
			entry.AddAddenda(addenda)
			batch.AddEntry(entry)
		}
		file.AddBatch(batch)
	}

	out := file.String()
	for _, b := range file.Batches() {
		for _, e := range b.Entries() {
			trace := e.TraceNumber()
			for _, a := range e.Addenda() {
				require.Equal(t, trace[len(trace)-7:], a.Fields.EntryDetailSequenceNumber.Value)
			}
		}
	}
	require.Equal(t, "0000006", file.Batches()[2].Entries()[2].Addenda()[0].Fields.EntryDetailSequenceNumber.Value)

	// regenerating a parsed file gives the same bytes
	parsed, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, out, parsed.String())
}
