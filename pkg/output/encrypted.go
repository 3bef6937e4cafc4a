// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"errors"
)

type Encrypted struct{}

func (*Encrypted) Format(buf *bytes.Buffer, res *Result) error {
	if len(res.Encrypted) == 0 {
		return errors.New("encrypted-bytes: file was not encrypted")
	}
	buf.Write(res.Encrypted)
	return nil
}
