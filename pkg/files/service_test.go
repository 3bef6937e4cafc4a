// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/events"
	"github.com/moov-io/achfile/pkg/nacha"
	"github.com/moov-io/achfile/pkg/storage"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

type testService struct {
	*Service

	repo    Repository
	storage *storage.MockStorage
	emitter *events.MockEmitter
}

func setupService(t *testing.T) *testService {
	t.Helper()

	cfg := config.Empty()
	cfg.Http.ExternalURL = "https://ach.example.com"
	cfg.ODFI.RoutingNumber = "076401251"

	repo := setupSQLiteDB(t)
	store := &storage.MockStorage{}
	emitter := &events.MockEmitter{}

	return &testService{
		Service: NewService(log.NewNopLogger(), cfg, repo, store, emitter),
		repo:    repo,
		storage: store,
		emitter: emitter,
	}
}

func TestService__Create(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, testRequest())
	require.NoError(t, err)
	require.Equal(t, Outbound, f.Direction)
	require.Equal(t, Pending, f.Status)
	require.Equal(t, 1, f.BatchCount)
	require.Equal(t, 2, f.EntryCount)
	require.Equal(t, "50.25", f.TotalDebit)
	require.Equal(t, "1000.00", f.TotalCredit)
	require.Equal(t, fmt.Sprintf("%s-076401251-1.ach", time.Now().Format("20060102")), f.Filename)

	// contents are stored
	contents, ok := svc.storage.Files[f.StoragePath]
	require.True(t, ok)
	require.True(t, strings.HasPrefix(string(contents), "101 076401251 076401251"))

	// FileCreated was sent
	sent := svc.emitter.Sent()
	require.Len(t, sent, 1)
	created, ok := sent[0].(*events.FileCreated)
	require.True(t, ok)
	require.Equal(t, f.FileID, created.FileID)
	require.Equal(t, "https://ach.example.com/files/"+f.FileID+"/contents", created.FileURL)

	// the next file gets the next sequence number
	next, err := svc.Create(ctx, testRequest())
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%s-076401251-2.ach", time.Now().Format("20060102")), next.Filename)

	// explicit filenames are kept, but must be unique
	req := testRequest()
	req.Filename = "payroll.ach"
	named, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "payroll.ach", named.Filename)

	_, err = svc.Create(ctx, req)
	require.True(t, errors.Is(err, ErrDuplicateFilename))
	require.Len(t, svc.storage.Files, 3)
}

func TestService__CreateInvalid(t *testing.T) {
	svc := setupService(t)

	req := testRequest()
	req.Batches[0].Entries[0].ReceivingDFI = "231380105"
	_, err := svc.Create(context.Background(), req)
	require.True(t, nacha.IsKind(err, nacha.ChecksumError))

	require.Empty(t, svc.storage.Files)
	require.Empty(t, svc.emitter.Sent())
}

func TestService__Contents(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, testRequest())
	require.NoError(t, err)

	found, contents, err := svc.Contents(ctx, f.FileID)
	require.NoError(t, err)
	require.Equal(t, f.FileID, found.FileID)
	require.Equal(t, svc.storage.Files[f.StoragePath], contents)

	// parsed files come from the cache, then from storage
	_, file, err := svc.Open(ctx, f.FileID)
	require.NoError(t, err)
	require.Equal(t, string(contents), file.String())

	svc.cache.Flush()
	_, file, err = svc.Open(ctx, f.FileID)
	require.NoError(t, err)
	require.Equal(t, string(contents), file.String())

	_, _, err = svc.Contents(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))

	// stored contents went missing
	delete(svc.storage.Files, f.StoragePath)
	_, _, err = svc.Contents(ctx, f.FileID)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestService__Delete(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, testRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, f.FileID))
	require.Empty(t, svc.storage.Files)

	_, err = svc.Get(ctx, f.FileID)
	require.True(t, errors.Is(err, ErrNotFound))

	// uploaded files stay
	f, err = svc.Create(ctx, testRequest())
	require.NoError(t, err)
	require.NoError(t, svc.MarkUploaded(ctx, f, "sftp.bank.com"))
	require.True(t, errors.Is(svc.Delete(ctx, f.FileID), ErrNotPending))
}

func TestService__Pending(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, testRequest())
	require.NoError(t, err)
	second, err := svc.Create(ctx, testRequest())
	require.NoError(t, err)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, svc.MarkUploaded(ctx, first, "sftp.bank.com"))
	require.NoError(t, svc.MarkFailed(ctx, second))

	pending, err = svc.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	found, err := svc.Get(ctx, first.FileID)
	require.NoError(t, err)
	require.Equal(t, Uploaded, found.Status)
	require.Equal(t, "sftp.bank.com", found.Hostname)

	sent := svc.emitter.Sent()
	require.Equal(t, events.TypeFileUploaded, sent[len(sent)-1].Type())
}

func TestService__Receive(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	file, err := Build(testRequest(), time.UTC)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	f, err := svc.Receive(ctx, "return.ach", "sftp.bank.com", buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, Inbound, f.Direction)
	require.Equal(t, Received, f.Status)
	require.Equal(t, "sftp.bank.com", f.Hostname)
	require.Equal(t, buf.Bytes(), svc.storage.Files[f.StoragePath])

	received, ok := svc.emitter.Sent()[0].(*events.FileReceived)
	require.True(t, ok)
	require.Equal(t, 2, received.EntryCount)

	// the same filename is only recorded once
	_, err = svc.Receive(ctx, "return.ach", "sftp.bank.com", buf.Bytes())
	require.True(t, errors.Is(err, ErrDuplicateFilename))

	_, err = svc.Receive(ctx, "junk.ach", "sftp.bank.com", []byte("not a nacha file"))
	require.True(t, nacha.IsKind(err, nacha.ParseError))
}
