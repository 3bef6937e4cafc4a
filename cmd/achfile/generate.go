// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/moov-io/achfile/pkg/files"

	"github.com/alecthomas/kong"
)

type GenerateCmd struct {
	Input  string `help:"JSON file describing the NACHA file (use '-' for stdin)." short:"i" default:"-"`
	Output string `help:"Where to write the NACHA file, stdout when empty." short:"o"`
}

func (cmd *GenerateCmd) Run(ctx *kong.Context, globals *Globals) error {
	bs, err := readInput(cmd.Input)
	if err != nil {
		return err
	}

	var req files.CreateFile
	if err := json.Unmarshal(bs, &req); err != nil {
		return fmt.Errorf("reading request: %v", err)
	}
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return err
	}

	loc, err := globals.location()
	if err != nil {
		return err
	}
	file, err := files.Build(req, loc)
	if err != nil {
		return err
	}

	if cmd.Output == "" {
		return file.Write(ctx.Stdout)
	}
	if err := ioutil.WriteFile(cmd.Output, []byte(file.String()), 0600); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "wrote %s: %d batches, %d entries\n", cmd.Output, len(file.Batches()), file.EntryCount())
	return nil
}
