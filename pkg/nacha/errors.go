// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures raised while building, validating or parsing a file.
type ErrorKind int

const (
	RequiredFieldError ErrorKind = iota + 1
	LengthError
	DataTypeError
	CodeError
	ChecksumError
	ParseError
)

func (k ErrorKind) String() string {
	switch k {
	case RequiredFieldError:
		return "RequiredFieldError"
	case LengthError:
		return "LengthError"
	case DataTypeError:
		return "DataTypeError"
	case CodeError:
		return "CodeError"
	case ChecksumError:
		return "ChecksumError"
	case ParseError:
		return "ParseError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinel values for use with errors.Is
var (
	ErrRequiredField error = &Error{Kind: RequiredFieldError}
	ErrLength        error = &Error{Kind: LengthError}
	ErrDataType      error = &Error{Kind: DataTypeError}
	ErrCode          error = &Error{Kind: CodeError}
	ErrChecksum      error = &Error{Kind: ChecksumError}
	ErrParse         error = &Error{Kind: ParseError}

	// ErrPositionGap is returned when a record's positions are not a contiguous 1..N sequence.
	ErrPositionGap = errors.New("nacha: field positions are not contiguous")
)

// Error carries the kind of failure along with whatever context was available
// when it was raised. Line is 1-based and only set on parse failures.
type Error struct {
	Kind     ErrorKind
	Field    string
	Value    string
	Expected string
	Line     int
	Msg      string
}

func (e *Error) Error() string {
	var buf strings.Builder
	buf.WriteString("nacha: ")
	buf.WriteString(e.Kind.String())
	if e.Line > 0 {
		buf.WriteString(fmt.Sprintf(" (line %d)", e.Line))
	}
	if e.Field != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Field)
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind returns true if err (or anything it wraps) is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func parseError(line int, format string, args ...interface{}) *Error {
	return &Error{
		Kind: ParseError,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
	}
}
