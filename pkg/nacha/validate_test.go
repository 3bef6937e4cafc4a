// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate__RequiredFields(t *testing.T) {
	fields := []*Field{
		{Name: "a", Width: 2, Required: true, Type: Numeric, Value: "0"},
		{Name: "b", Width: 2, Type: Alphanumeric},
	}
	require.NoError(t, ValidateRequiredFields(fields))

	fields[1].Required = true
	err := ValidateRequiredFields(fields)
	require.True(t, IsKind(err, RequiredFieldError))

	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, "b", e.Field)

	// amounts must parse
	amount := []*Field{{Name: "amount", Width: 10, Required: true, Number: true, Value: "ten"}}
	require.True(t, errors.Is(ValidateRequiredFields(amount), ErrRequiredField))
}

func TestValidate__Lengths(t *testing.T) {
	fields := []*Field{
		{Name: "name", Width: 4, Type: Alphanumeric, Value: "four"},
		{Name: "amount", Width: 6, Type: Numeric, Number: true, Value: "1234.56"},
	}
	require.NoError(t, ValidateLengths(fields))

	fields[0].Value = "fives"
	require.True(t, IsKind(ValidateLengths(fields), LengthError))

	fields[0].Value = "four"
	fields[1].Value = "12345.67"
	require.True(t, IsKind(ValidateLengths(fields), LengthError))
}

func TestValidate__DataTypes(t *testing.T) {
	cases := []struct {
		field Field
		valid bool
	}{
		{Field{Name: "n", Type: Numeric, Value: "0123"}, true},
		{Field{Name: "n", Type: Numeric, Value: "12a"}, false},
		{Field{Name: "n", Type: Numeric, Number: true, Value: "12.34"}, true},
		{Field{Name: "n", Type: Numeric, Number: true, Value: "-1"}, false},
		{Field{Name: "a", Type: Alpha, Value: "PPD"}, true},
		{Field{Name: "a", Type: Alpha, Value: "PP1"}, false},
		{Field{Name: "an", Type: Alphanumeric, Value: `RAj##23920rjf31 "x" [y] \z`}, true},
		{Field{Name: "an", Type: Alphanumeric, Value: "Zoë"}, false},
		{Field{Name: "an", Type: Alphanumeric, Value: "tab\there"}, false},
		{Field{Name: "an", Type: Alphanumeric, Required: true, Value: ""}, false},
		{Field{Name: "an", Type: Alphanumeric, Value: ""}, true},
		{Field{Name: "blank", Type: Numeric, Blank: true, Value: "xyz"}, true},
		{Field{Name: "routing", Type: RoutingNumber, Value: " 081000032"}, true},
	}
	for i := range cases {
		err := ValidateDataTypes([]*Field{&cases[i].field})
		if cases[i].valid && err != nil {
			t.Errorf("case #%d: unexpected error: %v", i, err)
		}
		if !cases[i].valid && !IsKind(err, DataTypeError) {
			t.Errorf("case #%d: expected DataTypeError, got %v", i, err)
		}
	}
}

func TestValidate__Codes(t *testing.T) {
	for _, code := range []string{"22", "23", "24", "27", "28", "29", "32", "33", "34", "37", "38", "39"} {
		require.NoError(t, ValidateACHCode(code))
	}
	for _, code := range []string{"", "2", "21", "220", "99"} {
		require.True(t, errors.Is(ValidateACHCode(code), ErrCode), code)
	}

	require.NoError(t, ValidateACHAddendaCode("42"))

	for _, code := range []string{"02", "05", "98", "99"} {
		require.NoError(t, ValidateACHAddendaTypeCode(code))
	}
	require.True(t, IsKind(ValidateACHAddendaTypeCode("5"), CodeError))

	for _, code := range []string{"200", "220", "225"} {
		require.NoError(t, ValidateACHServiceClassCode(code))
	}
	require.True(t, IsKind(ValidateACHServiceClassCode("201"), CodeError))
}

func TestError__Message(t *testing.T) {
	err := &Error{Kind: ParseError, Line: 3, Msg: "oops"}
	require.Equal(t, "nacha: ParseError (line 3): oops", err.Error())

	require.True(t, errors.Is(err, ErrParse))
	require.False(t, errors.Is(err, ErrLength))
	require.False(t, IsKind(errors.New("other"), ParseError))
}
