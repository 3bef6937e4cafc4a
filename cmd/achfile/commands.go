// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
)

// Globals are flags shared by every command.
type Globals struct {
	Timezone  string `help:"Timezone used for default effective entry dates." default:"America/New_York"`
	LogFormat string `help:"Log format for watch output (plain or json)." default:"plain" enum:"plain,json"`
}

func (g *Globals) location() (*time.Location, error) {
	if g == nil || g.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %v", err)
	}
	return loc, nil
}

func (g *Globals) logger(w io.Writer) log.Logger {
	var logger log.Logger
	if g != nil && strings.EqualFold(g.LogFormat, "json") {
		logger = log.NewJSONLogger(w)
	} else {
		logger = log.NewLogfmtLogger(w)
	}
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}

type Commands struct {
	Globals

	Generate GenerateCmd `cmd:"" help:"Build a NACHA file from a JSON request."`
	Parse    ParseCmd    `cmd:"" help:"Parse a NACHA file and print its contents."`
	Validate ValidateCmd `cmd:"" help:"Check NACHA files for errors."`
	Watch    WatchCmd    `cmd:"" help:"Validate NACHA files as they appear in a directory."`
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(path)
}
