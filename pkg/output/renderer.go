// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/nacha"

	"github.com/go-kit/kit/log"
)

// Renderer turns files into the bytes uploaded to the ODFI.
type Renderer struct {
	formatter Formatter
	encryptor *GPGEncryption
}

func NewRenderer(logger log.Logger, cfg *config.Output) (*Renderer, error) {
	r := &Renderer{}
	var format string
	if cfg != nil {
		format = cfg.Format
	}
	f, err := NewFormatter(format)
	if err != nil {
		return nil, err
	}
	r.formatter = f

	if cfg != nil && cfg.GPG != nil {
		enc, err := NewGPGEncryptor(logger, cfg.GPG)
		if err != nil {
			return nil, err
		}
		r.encryptor = enc
	}
	return r, nil
}

func (r *Renderer) Render(file *nacha.File) ([]byte, error) {
	res := &Result{File: file}
	if r.encryptor != nil {
		if _, err := r.encryptor.Transform(res); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
