// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
)

// PaddingLine fills a file out to a whole number of 10-record blocks.
var PaddingLine = strings.Repeat("9", RecordLength)

var (
	creditCodes = []string{"22", "23", "24", "32", "33", "34"}
	debitCodes  = []string{"27", "28", "29", "37", "38", "39"}
)

// ComputeCheckDigit appends the ABA check digit to an 8-digit routing prefix.
// Anything other than 8 digits is returned unchanged.
func ComputeCheckDigit(routing string) string {
	if len(routing) != 8 || !numericRegex.MatchString(routing) {
		return routing
	}
	d := digits(routing)
	sum := 7*(d[0]+d[3]+d[6]) + 3*(d[1]+d[4]+d[7]) + 9*(d[2]+d[5])
	return routing + strconv.Itoa(sum%10)
}

// ValidateRoutingNumber checks a 9-digit routing number with its check digit.
func ValidateRoutingNumber(routing string) error {
	if len(routing) != 9 {
		return &Error{
			Kind:     LengthError,
			Field:    "routingNumber",
			Value:    routing,
			Expected: "9 digits",
			Msg:      fmt.Sprintf("the ABA routing number %q must be 9 digits long", routing),
		}
	}
	if !numericRegex.MatchString(routing) {
		return &Error{
			Kind:  ChecksumError,
			Field: "routingNumber",
			Value: routing,
			Msg:   fmt.Sprintf("the ABA routing number %q contains non-digits", routing),
		}
	}
	d := digits(routing)
	sum := 3*(d[0]+d[3]+d[6]) + 7*(d[1]+d[4]+d[7]) + (d[2] + d[5] + d[8])
	if sum%10 != 0 {
		return &Error{
			Kind:  ChecksumError,
			Field: "routingNumber",
			Value: routing,
			Msg:   fmt.Sprintf("the ABA routing number %q has an invalid check digit", routing),
		}
	}
	return nil
}

func digits(s string) []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = int(s[i] - '0')
	}
	return out
}

// EntryHash renders the sum of receiving DFI prefixes as the last 10 digits of its decimal form.
func EntryHash(sum int64) string {
	s := strconv.FormatInt(sum, 10)
	if len(s) > 10 {
		return s[len(s)-10:]
	}
	return s
}

// NextMultipleOf10 rounds rows up to the next multiple of 10.
func NextMultipleOf10(rows int) int {
	if rows%10 == 0 {
		return rows
	}
	return rows + (10 - rows%10)
}

// PaddingRows is the number of PaddingLine records needed after rows records.
func PaddingRows(rows int) int {
	return NextMultipleOf10(rows) - rows
}

// IsCredit returns true for transaction codes which credit the receiver.
func IsCredit(code string) bool {
	return contains(creditCodes, code)
}

// IsDebit returns true for transaction codes which debit the receiver.
func IsDebit(code string) bool {
	return contains(debitCodes, code)
}

type totals struct {
	hash   int64
	debit  decimal.Decimal
	credit decimal.Decimal
}

// sumEntries computes the entry hash and debit/credit totals over entries.
// Codes outside the credit and debit sets are logged and left out of both totals.
func sumEntries(logger log.Logger, entries []*Entry) totals {
	var t totals
	for _, e := range entries {
		t.hash += e.receivingDFI()

		amount, err := decimal.NewFromString(strings.TrimSpace(e.Fields.Amount.Value))
		if err != nil {
			logger.Log("nacha", fmt.Sprintf("skipping unparsable amount %q on trace number %s", e.Fields.Amount.Value, e.TraceNumber()))
			continue
		}
		code := e.Fields.TransactionCode.Value
		switch {
		case IsCredit(code):
			t.credit = t.credit.Add(amount)
		case IsDebit(code):
			t.debit = t.debit.Add(amount)
		default:
			logger.Log("nacha", fmt.Sprintf("transaction code %s is not supported for totals, skipping entry %s", code, e.TraceNumber()))
		}
	}
	return t
}
