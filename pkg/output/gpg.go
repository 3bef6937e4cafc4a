// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/moov-io/achfile/internal/gpgx"
	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
	"golang.org/x/crypto/openpgp"
)

// GPGEncryption fills in Result.Encrypted, optionally signing the message.
type GPGEncryption struct {
	pubKey openpgp.EntityList
	signer *openpgp.Entity
}

func NewGPGEncryptor(logger log.Logger, cfg *config.GPG) (*GPGEncryption, error) {
	if cfg == nil {
		return nil, errors.New("missing GPG config")
	}

	pubKey, err := gpgx.ReadEncryptionKeyFile(cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	out := &GPGEncryption{
		pubKey: pubKey,
	}

	if cfg.Signer != nil {
		keys, err := gpgx.ReadPrivateKeyFile(cfg.Signer.KeyFile, []byte(cfg.Signer.Password()))
		if err != nil {
			return nil, fmt.Errorf("reading signer: %v", err)
		}
		out.signer = keys[0]
		if logger != nil {
			logger.Log("output", fmt.Sprintf("signing files with key %X", out.signer.PrimaryKey.Fingerprint))
		}
	}
	return out, nil
}

func (morph *GPGEncryption) Transform(res *Result) (*Result, error) {
	var buf bytes.Buffer
	if err := (&NACHA{}).Format(&buf, res); err != nil {
		return res, err
	}

	var bs []byte
	var err error
	if morph.signer != nil {
		bs, err = gpgx.EncryptAndSign(buf.Bytes(), morph.pubKey, morph.signer)
	} else {
		bs, err = gpgx.Encrypt(buf.Bytes(), morph.pubKey)
	}
	if err != nil {
		return res, err
	}
	res.Encrypted = bs

	return res, nil
}

func (morph *GPGEncryption) String() string {
	return fmt.Sprintf("GPG{pubKey:%v signer:%v}", len(morph.pubKey) > 0, morph.signer != nil)
}
