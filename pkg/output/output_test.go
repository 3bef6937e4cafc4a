// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/moov-io/achfile/internal/gpgx"
	"github.com/moov-io/achfile/internal/gpgx/gpgxtest"
	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/nacha"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testFile(t *testing.T) *nacha.File {
	t.Helper()

	clock := func() time.Time { return time.Date(2020, time.October, 2, 15, 4, 0, 0, time.UTC) }
	file, err := nacha.NewFile(nacha.FileOptions{
		ImmediateDestination: "076401251",
		ImmediateOrigin:      "076401251",
		BatchSequenceNumber:  1,
	}, nacha.WithClock(clock))
	require.NoError(t, err)

	batch, err := nacha.NewBatch(nacha.BatchOptions{
		ServiceClassCode:       "200",
		CompanyName:            "Moov",
		CompanyIdentification:  "123456789",
		StandardEntryClassCode: "PPD",
		EffectiveEntryDate:     "201005",
		OriginatingDFI:         "07640125",
	})
	require.NoError(t, err)

	entry, err := nacha.NewEntry(nacha.EntryOptions{
		TransactionCode: "27",
		ReceivingDFI:    "081000210",
		DFIAccount:      "5654221",
		Amount:          decimal.RequireFromString("12.34"),
		IndividualName:  "Jane Doe",
	})
	require.NoError(t, err)

	batch.AddEntry(entry)
	file.AddBatch(batch)
	return file
}

func TestNACHA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&NACHA{}).Format(&buf, &Result{File: testFile(t)}))
	require.True(t, strings.HasPrefix(buf.String(), "101 076401251 076401251"))

	require.Error(t, (&NACHA{}).Format(&buf, &Result{}))
}

func TestBase64(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Base64{}).Format(&buf, &Result{File: testFile(t)}))
	require.True(t, strings.HasPrefix(buf.String(), `MTAxIDA3NjQwMTI1MSAwNzY0MDEyNTE`))

	decoded, err := base64.StdEncoding.DecodeString(buf.String())
	require.NoError(t, err)
	require.Equal(t, testFile(t).String(), string(decoded))
}

func TestBase64Encrypted(t *testing.T) {
	var buf bytes.Buffer
	res := &Result{File: testFile(t), Encrypted: []byte("hello, world")}
	require.NoError(t, (&Base64{}).Format(&buf, res))
	require.Equal(t, `aGVsbG8sIHdvcmxk`, buf.String())
}

func TestEncrypted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Encrypted{}).Format(&buf, &Result{Encrypted: []byte("hello, world")}))
	require.Equal(t, "hello, world", buf.String())

	require.Error(t, (&Encrypted{}).Format(&buf, &Result{File: testFile(t)}))
}

func TestFormatter(t *testing.T) {
	for _, format := range []string{"", "nacha", "NACHA", "base64", "encrypted-bytes"} {
		f, err := NewFormatter(format)
		require.NoError(t, err, format)
		require.NotNil(t, f)
	}

	f, err := NewFormatter("other")
	require.Error(t, err)
	require.Nil(t, f)
}

func TestGPGEncryptor(t *testing.T) {
	pubKeyFile, privKeyFile := gpgxtest.KeyFiles(t)

	gpg, err := NewGPGEncryptor(log.NewNopLogger(), &config.GPG{KeyFile: pubKeyFile})
	require.NoError(t, err)
	require.Equal(t, "GPG{pubKey:true signer:false}", gpg.String())

	file := testFile(t)
	res, err := gpg.Transform(&Result{File: file})
	require.NoError(t, err)

	privKey, err := gpgx.ReadPrivateKeyFile(privKeyFile, nil)
	require.NoError(t, err)
	decrypted, err := gpgx.Decrypt(res.Encrypted, privKey)
	require.NoError(t, err)
	require.Equal(t, file.String(), string(decrypted))

	_, err = NewGPGEncryptor(log.NewNopLogger(), nil)
	require.Error(t, err)
}

func TestGPGAndSign(t *testing.T) {
	pubKeyFile, _ := gpgxtest.KeyFiles(t)
	_, signerFile := gpgxtest.KeyFiles(t)

	gpg, err := NewGPGEncryptor(log.NewNopLogger(), &config.GPG{
		KeyFile: pubKeyFile,
		Signer: &config.Signer{
			KeyFile: signerFile,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "GPG{pubKey:true signer:true}", gpg.String())

	res, err := gpg.Transform(&Result{File: testFile(t)})
	require.NoError(t, err)
	require.NotEmpty(t, res.Encrypted)
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer(log.NewNopLogger(), nil)
	require.NoError(t, err)
	out, err := r.Render(testFile(t))
	require.NoError(t, err)
	require.Equal(t, testFile(t).String(), string(out))

	pubKeyFile, _ := gpgxtest.KeyFiles(t)
	r, err = NewRenderer(log.NewNopLogger(), &config.Output{
		Format: "encrypted-bytes",
		GPG:    &config.GPG{KeyFile: pubKeyFile},
	})
	require.NoError(t, err)
	out, err = r.Render(testFile(t))
	require.NoError(t, err)
	require.Contains(t, string(out), "BEGIN PGP MESSAGE")

	_, err = NewRenderer(log.NewNopLogger(), &config.Output{Format: "pdf"})
	require.Error(t, err)
}
