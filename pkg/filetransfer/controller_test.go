// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package filetransfer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moov-io/achfile/internal/gpgx/gpgxtest"
	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/database"
	"github.com/moov-io/achfile/pkg/events"
	"github.com/moov-io/achfile/pkg/files"
	"github.com/moov-io/achfile/pkg/notify"
	"github.com/moov-io/achfile/pkg/storage"
	"github.com/moov-io/achfile/pkg/upload"

	"github.com/go-kit/kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testController struct {
	*Controller

	agent    *upload.MockAgent
	notifier *notify.MockSender
	storage  *storage.MockStorage
}

func setupController(t *testing.T, cfg *config.Config) *testController {
	t.Helper()

	if cfg == nil {
		cfg = config.Empty()
	}
	db := database.CreateTestSqliteDB(t)
	t.Cleanup(func() { db.Close() })

	store := &storage.MockStorage{}
	svc := files.NewService(log.NewNopLogger(), cfg, files.NewRepo(db.DB), store, &events.MockEmitter{})

	agent := &upload.MockAgent{}
	notifier := &notify.MockSender{}

	c, err := NewController(log.NewNopLogger(), cfg, svc, agent, notifier)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return &testController{
		Controller: c,
		agent:      agent,
		notifier:   notifier,
		storage:    store,
	}
}

func createRequest() files.CreateFile {
	return files.CreateFile{
		Header: files.FileHeader{
			ImmediateDestination: "076401251",
			ImmediateOrigin:      "076401251",
		},
		Batches: []files.CreateBatch{
			{
				ServiceClassCode:        "220",
				CompanyName:             "Moov",
				CompanyIdentification:   "123456789",
				StandardEntryClassCode:  "PPD",
				CompanyEntryDescription: "PAYROLL",
				EffectiveEntryDate:      "200529",
				OriginatingDFI:          "07640125",
				Entries: []files.CreateEntry{
					{
						TransactionCode: "22",
						ReceivingDFI:    "23138010",
						DFIAccount:      "81967038518",
						Amount:          decimal.RequireFromString("12.50"),
						IndividualName:  "Jane Doe",
					},
				},
			},
		},
	}
}

func (c *testController) createFile(t *testing.T) *files.File {
	t.Helper()

	f, err := c.svc.Create(context.Background(), createRequest())
	require.NoError(t, err)
	return f
}

func TestController__UploadPending(t *testing.T) {
	c := setupController(t, nil)
	ctx := context.Background()

	first := c.createFile(t)
	second := c.createFile(t)

	require.NoError(t, c.UploadPending(ctx))

	for _, f := range []*files.File{first, second} {
		contents := c.agent.UploadedFile(f.Filename)
		require.NotNil(t, contents, f.Filename)
		require.True(t, strings.HasPrefix(string(contents), "101 076401251 076401251"))

		found, err := c.svc.Get(ctx, f.FileID)
		require.NoError(t, err)
		require.Equal(t, files.Uploaded, found.Status)
		require.Equal(t, "ftp.bank.com", found.Hostname)
	}
	require.Len(t, c.notifier.Infos, 2)
	require.Equal(t, notify.Upload, c.notifier.Infos[0].Direction)
	require.NotNil(t, c.notifier.Infos[0].File)
	require.Empty(t, c.notifier.Criticals)

	// nothing left to upload
	c.agent.Uploaded = nil
	require.NoError(t, c.UploadPending(ctx))
	require.Empty(t, c.agent.Uploaded)
}

func TestController__UploadFailure(t *testing.T) {
	c := setupController(t, nil)
	ctx := context.Background()

	f := c.createFile(t)

	c.agent.Err = errors.New("connection refused")
	err := c.UploadPending(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
	require.Len(t, c.notifier.Criticals, 1)

	// still pending, so the next cutoff retries it
	found, err := c.svc.Get(ctx, f.FileID)
	require.NoError(t, err)
	require.Equal(t, files.Pending, found.Status)

	c.agent.Err = nil
	require.NoError(t, c.UploadPending(ctx))
	require.NotNil(t, c.agent.UploadedFile(f.Filename))
}

func TestController__UploadMissingContents(t *testing.T) {
	cfg := config.Empty()
	db := database.CreateTestSqliteDB(t)
	t.Cleanup(func() { db.Close() })

	repo := files.NewRepo(db.DB)
	store := &storage.MockStorage{}

	creator := files.NewService(nil, cfg, repo, store, nil)
	f, err := creator.Create(context.Background(), createRequest())
	require.NoError(t, err)

	// a fresh service has nothing cached and the stored contents are gone
	store.Files = nil
	svc := files.NewService(nil, cfg, repo, store, nil)

	agent, notifier := &upload.MockAgent{}, &notify.MockSender{}
	c, err := NewController(nil, cfg, svc, agent, notifier)
	require.NoError(t, err)

	require.Error(t, c.UploadPending(context.Background()))
	require.Empty(t, agent.Uploaded)
	require.Len(t, notifier.Criticals, 1)

	found, err := svc.Get(context.Background(), f.FileID)
	require.NoError(t, err)
	require.Equal(t, files.Failed, found.Status)

	// failed files are not retried
	require.NoError(t, c.UploadPending(context.Background()))
}

func TestController__UploadEncrypted(t *testing.T) {
	publicKey, _ := gpgxtest.KeyFiles(t)

	cfg := config.Empty()
	cfg.Output = &config.Output{
		Format: "encrypted-bytes",
		GPG: &config.GPG{
			KeyFile: publicKey,
		},
	}
	c := setupController(t, cfg)

	f := c.createFile(t)
	require.NoError(t, c.UploadPending(context.Background()))

	require.Nil(t, c.agent.UploadedFile(f.Filename))
	contents := c.agent.UploadedFile(f.Filename + ".gpg")
	require.NotNil(t, contents)
	require.False(t, bytes.Contains(contents, []byte("076401251")))
}

func TestController__OutboundFilename(t *testing.T) {
	c := &Controller{}
	require.Equal(t, "a.ach", c.outboundFilename("a.ach"))

	c.encrypted = true
	require.Equal(t, "a.ach.gpg", c.outboundFilename("a.ach"))
	require.Equal(t, "a.ach.gpg", c.outboundFilename("a.ach.gpg"))
}

func TestNewController__Errors(t *testing.T) {
	_, err := NewController(nil, nil, nil, nil, nil)
	require.Error(t, err)

	cfg := config.Empty()
	cfg.ODFI.Cutoffs = config.Cutoffs{Windows: []string{"25:99"}}
	svc := files.NewService(nil, cfg, &files.MockRepository{}, &storage.MockStorage{}, nil)
	_, err = NewController(nil, cfg, svc, &upload.MockAgent{}, nil)
	require.Error(t, err)

	cfg.ODFI.Cutoffs = config.Cutoffs{Timezone: "America/New_York", Windows: []string{"16:20"}}
	c, err := NewController(nil, cfg, svc, &upload.MockAgent{}, nil)
	require.NoError(t, err)
	require.NotNil(t, c.cutoffs)
	require.NoError(t, c.Close())
}

func TestController__Start(t *testing.T) {
	c := setupController(t, nil)
	f := c.createFile(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	req := &flushRequest{waiter: make(chan error, 1)}
	c.flushOutbound <- req
	select {
	case err := <-req.waiter:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for flush")
	}
	require.NotNil(t, c.agent.UploadedFile(f.Filename))

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}
}
