// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/lopezator/migrator"
)

// New establishes a database connection according to the config, preferring
// MySQL when it's configured. Migrations are ran before returning.
func New(ctx context.Context, logger log.Logger, cfg config.Database) (*sql.DB, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	switch {
	case cfg.MySQL != nil:
		logger.Log("database", fmt.Sprintf("connecting to mysql database %s", cfg.MySQL.Database))
		return mysqlConnection(logger, cfg.MySQL.Username, cfg.MySQL.GetPassword(), cfg.MySQL.Address, cfg.MySQL.Database).Connect(ctx)

	case cfg.SQLite != nil:
		logger.Log("database", fmt.Sprintf("opening sqlite database %s", cfg.SQLite.Path))
		return sqliteConnection(logger, cfg.SQLite.Path).Connect(ctx)
	}
	return nil, errors.New("no database configured")
}

func execsql(name, raw string) *migrator.MigrationNoTx {
	return &migrator.MigrationNoTx{
		Name: name,
		Func: func(db *sql.DB) error {
			_, err := db.Exec(raw)
			return err
		},
	}
}

func migrate(db *sql.DB, migrations migrator.Option) error {
	m, err := migrator.New(migrations)
	if err != nil {
		return err
	}
	return m.Migrate(db)
}

// UniqueViolation returns true when the provided error matches a database error
// for duplicate entries (violating a unique table constraint).
func UniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return MySQLUniqueViolation(err) || SqliteUniqueViolation(err)
}
