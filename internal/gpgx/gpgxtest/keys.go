// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package gpgxtest generates GPG keys on disk for tests.
package gpgxtest

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

// KeyFiles writes a freshly generated, unencrypted key pair into a temp
// directory removed at the end of the test.
func KeyFiles(t *testing.T) (publicKeyPath string, privateKeyPath string) {
	t.Helper()

	dir, err := ioutil.TempDir("", "gpgx")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	entity, err := openpgp.NewEntity("achfile", "test", "test@moov.io", nil)
	if err != nil {
		t.Fatal(err)
	}

	publicKeyPath = filepath.Join(dir, "key.pub")
	privateKeyPath = filepath.Join(dir, "key.priv")

	writeArmored(t, publicKeyPath, openpgp.PublicKeyType, entity.Serialize)
	writeArmored(t, privateKeyPath, openpgp.PrivateKeyType, func(w io.Writer) error {
		return entity.SerializePrivate(w, nil)
	})
	return publicKeyPath, privateKeyPath
}

func writeArmored(t *testing.T, path string, blockType string, fn func(io.Writer) error) {
	t.Helper()

	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()

	w, err := armor.Encode(fd, blockType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := fn(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
