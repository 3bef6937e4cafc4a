// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"errors"
	"fmt"
)

type NACHA struct{}

func (*NACHA) Format(buf *bytes.Buffer, res *Result) error {
	if res == nil || res.File == nil {
		return errors.New("nacha: missing file")
	}
	if err := res.File.Write(buf); err != nil {
		return fmt.Errorf("unable to buffer ACH file: %v", err)
	}
	return nil
}
