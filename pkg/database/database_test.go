// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

func TestDatabase__New(t *testing.T) {
	dir, err := ioutil.TempDir("", "achfile-database")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := New(ctx, log.NewNopLogger(), config.Database{
		SQLite: &config.SQLite{Path: filepath.Join(dir, "achfile.db")},
	})
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`select count(*) from files;`).Scan(&n))
	require.Equal(t, 0, n)

	_, err = New(ctx, log.NewNopLogger(), config.Database{})
	require.Error(t, err)

	_, err = New(ctx, log.NewNopLogger(), config.Database{SQLite: &config.SQLite{Path: "../escape.db"}})
	require.Error(t, err)
}

func TestSQLite__Migrations(t *testing.T) {
	db := CreateTestSqliteDB(t)
	defer db.Close()

	_, err := db.DB.Exec(`insert into files(file_id, filename, direction, status) values ('a', 'one.ach', 'outbound', 'pending');`)
	require.NoError(t, err)

	// filenames are unique per direction
	_, err = db.DB.Exec(`insert into files(file_id, filename, direction, status) values ('b', 'one.ach', 'outbound', 'pending');`)
	require.True(t, UniqueViolation(err))

	_, err = db.DB.Exec(`insert into files(file_id, filename, direction, status) values ('c', 'one.ach', 'inbound', 'received');`)
	require.NoError(t, err)
}

func TestMySQL__Migrations(t *testing.T) {
	db := CreateTestMySQLDB(t)
	defer db.Close()

	_, err := db.DB.Exec(`insert into files(file_id, filename, direction, status) values ('a', 'one.ach', 'outbound', 'pending');`)
	require.NoError(t, err)

	_, err = db.DB.Exec(`insert into files(file_id, filename, direction, status) values ('b', 'one.ach', 'outbound', 'pending');`)
	require.True(t, UniqueViolation(err))
}

func TestUniqueViolation(t *testing.T) {
	err := errors.New(`problem inserting file="282f6ffcd9ba5b029afbf2b739ee826e22d9df3b": Error 1062: Duplicate entry '282f6ffcd9ba5b029afbf2b739ee826e22d9df3b' for key 'PRIMARY'`)
	require.True(t, UniqueViolation(err))

	require.True(t, UniqueViolation(errors.New("UNIQUE constraint failed: files.filename, files.direction")))
	require.False(t, UniqueViolation(errors.New("other")))
	require.False(t, UniqueViolation(nil))
}
