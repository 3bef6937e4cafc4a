// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"errors"
	"testing"
	"time"

	"github.com/moov-io/achfile/pkg/database"
	"github.com/moov-io/base"

	"github.com/stretchr/testify/require"
)

func setupSQLiteDB(t *testing.T) *sqlRepo {
	db := database.CreateTestSqliteDB(t)
	t.Cleanup(func() { db.Close() })

	return &sqlRepo{db: db.DB}
}

func setupMySQLDB(t *testing.T) *sqlRepo {
	db := database.CreateTestMySQLDB(t)
	t.Cleanup(func() { db.Close() })

	return &sqlRepo{db: db.DB}
}

func writeFile(t *testing.T, repo Repository, filename string, direction Direction, status Status) *File {
	t.Helper()

	f := &File{
		FileID:               base.ID(),
		Filename:             filename,
		Direction:            direction,
		Status:               status,
		ImmediateOrigin:      "076401251",
		ImmediateDestination: "076401251",
		BatchCount:           1,
		EntryCount:           2,
		TotalDebit:           "50.25",
		TotalCredit:          "1000.00",
		StoragePath:          "outbound/2020-05-28/" + filename,
		CreatedAt:            time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(f))
	return f
}

func TestRepository(t *testing.T) {
	check := func(t *testing.T, repo *sqlRepo) {
		f := writeFile(t, repo, "20200528-076401251-1.ach", Outbound, Pending)

		found, err := repo.Get(f.FileID)
		require.NoError(t, err)
		require.Equal(t, f.Filename, found.Filename)
		require.Equal(t, Outbound, found.Direction)
		require.Equal(t, Pending, found.Status)
		require.Equal(t, 2, found.EntryCount)
		require.Equal(t, "50.25", found.TotalDebit)
		require.Equal(t, f.StoragePath, found.StoragePath)
		require.True(t, f.CreatedAt.Equal(found.CreatedAt))
		require.Nil(t, found.UploadedAt)

		// missing files
		found, err = repo.Get(base.ID())
		require.NoError(t, err)
		require.Nil(t, found)

		// duplicate filenames in the same direction
		err = repo.Create(&File{FileID: base.ID(), Filename: f.Filename, Direction: Outbound, Status: Pending, CreatedAt: time.Now()})
		require.True(t, errors.Is(err, ErrDuplicateFilename))

		writeFile(t, repo, f.Filename, Inbound, Received)
	}

	check(t, setupSQLiteDB(t))
	check(t, setupMySQLDB(t))
}

func TestRepository__List(t *testing.T) {
	check := func(t *testing.T, repo *sqlRepo) {
		pending := writeFile(t, repo, "pending.ach", Outbound, Pending)
		writeFile(t, repo, "uploaded.ach", Outbound, Uploaded)
		writeFile(t, repo, "received.ach", Inbound, Received)

		files, err := repo.List(ListOptions{})
		require.NoError(t, err)
		require.Len(t, files, 3)

		files, err = repo.List(ListOptions{Status: Pending, Direction: Outbound})
		require.NoError(t, err)
		require.Len(t, files, 1)
		require.Equal(t, pending.FileID, files[0].FileID)

		files, err = repo.List(ListOptions{Direction: Inbound})
		require.NoError(t, err)
		require.Len(t, files, 1)

		files, err = repo.List(ListOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, files, 2)

		files, err = repo.List(ListOptions{CreatedAfter: time.Now().Add(-1 * time.Hour)})
		require.NoError(t, err)
		require.Len(t, files, 3)

		files, err = repo.List(ListOptions{CreatedAfter: time.Now().Add(time.Hour)})
		require.NoError(t, err)
		require.Empty(t, files)
	}

	check(t, setupSQLiteDB(t))
	check(t, setupMySQLDB(t))
}

func TestRepository__Status(t *testing.T) {
	check := func(t *testing.T, repo *sqlRepo) {
		f := writeFile(t, repo, "20200528-076401251-1.ach", Outbound, Pending)

		when := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.MarkUploaded(f.FileID, "sftp.bank.com", when))

		found, err := repo.Get(f.FileID)
		require.NoError(t, err)
		require.Equal(t, Uploaded, found.Status)
		require.Equal(t, "sftp.bank.com", found.Hostname)
		require.NotNil(t, found.UploadedAt)
		require.True(t, when.Equal(*found.UploadedAt))

		require.NoError(t, repo.UpdateStatus(f.FileID, Failed))
		found, err = repo.Get(f.FileID)
		require.NoError(t, err)
		require.Equal(t, Failed, found.Status)

		require.Equal(t, ErrNotFound, repo.UpdateStatus(base.ID(), Failed))
		require.Equal(t, ErrNotFound, repo.MarkUploaded(base.ID(), "", when))
	}

	check(t, setupSQLiteDB(t))
	check(t, setupMySQLDB(t))
}

func TestRepository__Delete(t *testing.T) {
	check := func(t *testing.T, repo *sqlRepo) {
		require.Equal(t, ErrNotFound, repo.Delete(base.ID(), time.Now()))

		// Write a pending file and delete it
		f := writeFile(t, repo, "pending.ach", Outbound, Pending)
		require.NoError(t, repo.Delete(f.FileID, time.Now()))

		found, err := repo.Get(f.FileID)
		require.NoError(t, err)
		require.Nil(t, found)

		// Fail to delete an uploaded file
		f = writeFile(t, repo, "uploaded.ach", Outbound, Uploaded)
		err = repo.Delete(f.FileID, time.Now())
		require.True(t, errors.Is(err, ErrNotPending))

		// or anything received
		f = writeFile(t, repo, "received.ach", Inbound, Received)
		err = repo.Delete(f.FileID, time.Now())
		require.True(t, errors.Is(err, ErrNotPending))
	}

	check(t, setupSQLiteDB(t))
	check(t, setupMySQLDB(t))
}
