// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package notify delivers messages about files moving to and from the ODFI.
package notify

import (
	"github.com/moov-io/achfile/pkg/nacha"
)

type Direction string

const (
	Upload   Direction = "upload"
	Download Direction = "download"
)

// Verb is the past tense of a Direction, used in human readable messages.
func (d Direction) Verb() string {
	switch d {
	case Upload:
		return "uploaded"
	case Download:
		return "downloaded"
	}
	return string(d)
}

type Message struct {
	Direction Direction
	Filename  string
	File      *nacha.File
	Hostname  string
}

type Sender interface {
	Info(msg *Message) error
	Critical(msg *Message) error
}
