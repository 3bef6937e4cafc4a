// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"

	"github.com/moov-io/achfile/pkg/util"
)

// Storage is where the contents of every file are kept.
type Storage struct {
	BucketURI string
	GPG       *GPG
}

func (cfg Storage) Validate() error {
	if cfg.BucketURI == "" {
		return errors.New("missing bucket_uri")
	}
	return cfg.GPG.Validate()
}

type GPG struct {
	KeyFile string
	Signer  *Signer

	// PrivateKeyFile is optional and lets encrypted contents be read back.
	PrivateKeyFile     string
	PrivateKeyPassword string `json:"-"`
}

func (cfg *GPG) Validate() error {
	if cfg == nil {
		return nil
	}
	if cfg.KeyFile == "" {
		return errors.New("gpg: missing key file")
	}
	if cfg.Signer != nil && cfg.Signer.KeyFile == "" {
		return errors.New("gpg: missing signer key file")
	}
	return nil
}

type Signer struct {
	KeyFile     string
	KeyPassword string `json:"-"`
}

func (cfg *Signer) Password() string {
	if cfg == nil {
		return os.Getenv("PIPELINE_SIGNING_KEY_PASSWORD")
	}
	return util.Or(os.Getenv("PIPELINE_SIGNING_KEY_PASSWORD"), cfg.KeyPassword)
}

// Output controls how files are rendered before they leave the service.
type Output struct {
	Format string
	GPG    *GPG
}

func (cfg *Output) Validate() error {
	if cfg == nil {
		return nil
	}
	switch cfg.Format {
	case "", "nacha", "base64":
	case "encrypted-bytes":
		if cfg.GPG == nil {
			return errors.New("encrypted-bytes format requires a gpg config")
		}
	default:
		return errors.New("unknown format " + cfg.Format)
	}
	return cfg.GPG.Validate()
}
