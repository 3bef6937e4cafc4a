// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/moov-io/achfile/internal/gpgx"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp"
)

func readPrivateKey(t *testing.T, path string) openpgp.EntityList {
	t.Helper()

	keys, err := gpgx.ReadPrivateKeyFile(path, nil)
	require.NoError(t, err)
	return keys
}
