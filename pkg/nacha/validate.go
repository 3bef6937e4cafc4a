// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	numericRegex      = regexp.MustCompile(`^[0-9]+$`)
	alphaRegex        = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphanumericRegex = regexp.MustCompile(`^[0-9a-zA-Z!"#$%&'()*+,\-./:;<>=?@\[\]\\^_` + "`" + `{}|~ ]+$`)

	transactionCodes  = []string{"22", "23", "24", "27", "28", "29", "32", "33", "34", "37", "38", "39"}
	serviceClassCodes = []string{"200", "220", "225"}
	addendaTypeCodes  = []string{"02", "05", "98", "99"}
)

// ValidateRequiredFields fails on the first required field which is empty, or
// for Number fields, not a parsable amount.
func ValidateRequiredFields(fields []*Field) error {
	for _, f := range fields {
		if !f.Required {
			continue
		}
		missing := strings.TrimSpace(f.Value) == ""
		if !missing && f.Number {
			if _, err := decimal.NewFromString(strings.TrimSpace(f.Value)); err != nil {
				missing = true
			}
		}
		if missing {
			return &Error{
				Kind:  RequiredFieldError,
				Field: f.Name,
				Value: f.Value,
				Msg:   fmt.Sprintf("%s is a required field but its value is: %q", f.Name, f.Value),
			}
		}
	}
	return nil
}

// ValidateLengths fails on the first field whose written length would exceed its width.
func ValidateLengths(fields []*Field) error {
	for _, f := range fields {
		v := f.Value
		if f.Number {
			v = formatAmount(v)
		}
		if len(v) > f.Width {
			return &Error{
				Kind:     LengthError,
				Field:    f.Name,
				Value:    f.Value,
				Expected: fmt.Sprintf("at most %d characters", f.Width),
				Msg:      fmt.Sprintf("%s's length is %d, but it should be no greater than %d", f.Name, len(v), f.Width),
			}
		}
	}
	return nil
}

// ValidateDataTypes checks each field against the regex for its type. Blank
// fields, optional fields left empty and routing numbers are skipped.
func ValidateDataTypes(fields []*Field) error {
	for _, f := range fields {
		if f.Blank || (!f.Required && f.Value == "") {
			continue
		}
		v := f.Value
		if f.Number {
			v = formatAmount(v)
		}
		var re *regexp.Regexp
		switch f.Type {
		case Numeric:
			re = numericRegex
		case Alpha:
			re = alphaRegex
		case Alphanumeric:
			re = alphanumericRegex
		default:
			continue
		}
		if !re.MatchString(v) {
			return &Error{
				Kind:     DataTypeError,
				Field:    f.Name,
				Value:    f.Value,
				Expected: f.Type.String(),
				Msg:      fmt.Sprintf("%s has a value of %q which is not %s", f.Name, f.Value, f.Type),
			}
		}
	}
	return nil
}

// ValidateACHCode checks a transaction code against the supported set.
func ValidateACHCode(code string) error {
	if !contains(transactionCodes, code) {
		return &Error{
			Kind:     CodeError,
			Field:    "transactionCode",
			Value:    code,
			Expected: strings.Join(transactionCodes, ","),
			Msg:      fmt.Sprintf("the ACH transaction code %q is invalid", code),
		}
	}
	return nil
}

// ValidateACHAddendaCode accepts every transaction code on entries which carry addenda.
func ValidateACHAddendaCode(code string) error {
	return nil
}

// ValidateACHAddendaTypeCode checks an addenda type code against the supported set.
func ValidateACHAddendaTypeCode(code string) error {
	if !contains(addendaTypeCodes, code) {
		return &Error{
			Kind:     CodeError,
			Field:    "addendaTypeCode",
			Value:    code,
			Expected: strings.Join(addendaTypeCodes, ","),
			Msg:      fmt.Sprintf("the ACH addenda type code %q is invalid", code),
		}
	}
	return nil
}

// ValidateACHServiceClassCode checks a service class code against the supported set.
func ValidateACHServiceClassCode(code string) error {
	if !contains(serviceClassCodes, code) {
		return &Error{
			Kind:     CodeError,
			Field:    "serviceClassCode",
			Value:    code,
			Expected: strings.Join(serviceClassCodes, ","),
			Msg:      fmt.Sprintf("the ACH service class code %q is invalid", code),
		}
	}
	return nil
}

func contains(set []string, v string) bool {
	for i := range set {
		if set[i] == v {
			return true
		}
	}
	return false
}
