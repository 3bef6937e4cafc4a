// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"github.com/moov-io/achfile"

	"github.com/alecthomas/kong"
)

var cli struct {
	Version kong.VersionFlag `help:"Show version information"`
	Commands
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Vars{
			"version": achfile.Version,
		},
		kong.Name("achfile"),
		kong.Description("Generate, parse and validate NACHA ACH files."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
