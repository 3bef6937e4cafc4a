// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"errors"
	"strings"

	"github.com/moov-io/achfile/pkg/nacha"
)

// Result is a file on its way out of the service, along with its encrypted
// form when a GPG key is configured.
type Result struct {
	File      *nacha.File
	Encrypted []byte
}

// Formatter is a structure for encoding an encrypted or plaintext ACH file.
type Formatter interface {
	Format(buf *bytes.Buffer, res *Result) error
}

func NewFormatter(format string) (Formatter, error) {
	switch {
	case format == "", strings.EqualFold(format, "nacha"):
		return &NACHA{}, nil

	case strings.EqualFold(format, "base64"):
		return &Base64{}, nil

	case strings.EqualFold(format, "encrypted-bytes"):
		return &Encrypted{}, nil
	}
	return nil, errors.New("unknown output format")
}
