// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/moov-io/achfile/pkg/files"
	"github.com/moov-io/achfile/pkg/nacha"

	"github.com/alecthomas/kong"
)

type ParseCmd struct {
	File   string `help:"NACHA file to parse (use '-' for stdin)." arg:""`
	JSON   bool   `help:"Print the file as JSON."`
	Unmask bool   `help:"Show full account numbers in JSON output."`
}

func (cmd *ParseCmd) Run(ctx *kong.Context) error {
	bs, err := readInput(cmd.File)
	if err != nil {
		return err
	}
	file, err := nacha.ReadFile(bytes.NewReader(bs))
	if err != nil {
		return err
	}

	if cmd.JSON {
		var opts []files.DescribeOption
		if !cmd.Unmask {
			opts = append(opts, files.MaskAccountNumbers())
		}
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(files.Describe(file, opts...))
	}

	h := file.Header
	fmt.Fprintf(ctx.Stdout, "Origin:      %s %s\n", h.ImmediateOrigin.Value, h.ImmediateOriginName.Value)
	fmt.Fprintf(ctx.Stdout, "Destination: %s %s\n", h.ImmediateDestination.Value, h.ImmediateDestinationName.Value)
	fmt.Fprintf(ctx.Stdout, "Created:     %s %s\n", h.FileCreationDate.Value, h.FileCreationTime.Value)
	for _, b := range file.Batches() {
		fmt.Fprintf(ctx.Stdout, "Batch %d: %s %s (%s) %d entries\n",
			b.Number(), b.Header.StandardEntryClassCode.Value, b.Header.CompanyName.Value, b.Header.CompanyEntryDescription.Value, len(b.Entries()))
	}
	fmt.Fprintf(ctx.Stdout, "Entries: %d  Debits: %s  Credits: %s\n", file.EntryCount(), file.TotalDebit().StringFixed(2), file.TotalCredit().StringFixed(2))
	return nil
}
