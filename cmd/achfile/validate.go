// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/moov-io/achfile/pkg/nacha"
	"github.com/moov-io/base"

	"github.com/alecthomas/kong"
)

type ValidateCmd struct {
	Files []string `help:"NACHA files to check." arg:""`
}

func (cmd *ValidateCmd) Run(ctx *kong.Context) error {
	var el base.ErrorList
	for _, path := range cmd.Files {
		if err := validateFile(ctx.Stdout, path); err != nil {
			el.Add(fmt.Errorf("%s: %v", path, err))
		}
	}
	if len(el) > 0 {
		return el
	}
	return nil
}

func validateFile(w io.Writer, path string) error {
	bs, err := readInput(path)
	if err != nil {
		return err
	}
	file, err := nacha.ReadFile(bytes.NewReader(bs))
	if err != nil {
		fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
		return err
	}
	fmt.Fprintf(w, "ok   %s (%d batches, %d entries)\n", path, len(file.Batches()), file.EntryCount())
	return nil
}
