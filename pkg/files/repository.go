// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/moov-io/achfile/pkg/database"
)

type Repository interface {
	Create(f *File) error
	Get(fileID string) (*File, error)
	List(opts ListOptions) ([]*File, error)

	UpdateStatus(fileID string, status Status) error
	MarkUploaded(fileID string, hostname string, when time.Time) error

	// Delete removes a pending outbound file.
	Delete(fileID string, when time.Time) error

	Close() error
}

func NewRepo(db *sql.DB) Repository {
	return &sqlRepo{db: db}
}

type sqlRepo struct {
	db *sql.DB
}

func (r *sqlRepo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

const fileColumns = `file_id, filename, direction, status, immediate_origin, immediate_destination, batch_count, entry_count, total_debit, total_credit, storage_path, hostname, created_at, uploaded_at`

func (r *sqlRepo) Create(f *File) error {
	query := `insert into files (` + fileColumns + `) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		f.FileID, f.Filename, f.Direction, f.Status,
		f.ImmediateOrigin, f.ImmediateDestination,
		f.BatchCount, f.EntryCount, f.TotalDebit, f.TotalCredit,
		f.StoragePath, f.Hostname, f.CreatedAt, f.UploadedAt,
	)
	if database.UniqueViolation(err) {
		return fmt.Errorf("%s %s: %w", f.Direction, f.Filename, ErrDuplicateFilename)
	}
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row scanner) (*File, error) {
	var f File
	var hostname sql.NullString
	err := row.Scan(
		&f.FileID, &f.Filename, &f.Direction, &f.Status,
		&f.ImmediateOrigin, &f.ImmediateDestination,
		&f.BatchCount, &f.EntryCount, &f.TotalDebit, &f.TotalCredit,
		&f.StoragePath, &hostname, &f.CreatedAt, &f.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Hostname = hostname.String
	return &f, nil
}

func (r *sqlRepo) Get(fileID string) (*File, error) {
	query := `select ` + fileColumns + ` from files where file_id = ? and deleted_at is null limit 1;`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	f, err := scanFile(stmt.QueryRow(fileID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (r *sqlRepo) List(opts ListOptions) ([]*File, error) {
	query := `select ` + fileColumns + ` from files where deleted_at is null`
	var args []interface{}
	if opts.Status != "" {
		query += ` and status = ?`
		args = append(args, opts.Status)
	}
	if opts.Direction != "" {
		query += ` and direction = ?`
		args = append(args, opts.Direction)
	}
	if !opts.CreatedAfter.IsZero() {
		query += ` and created_at >= ?`
		args = append(args, opts.CreatedAfter.UTC())
	}
	query += ` order by created_at asc`
	if opts.Limit > 0 {
		query += ` limit ?`
		args = append(args, opts.Limit)
	}

	stmt, err := r.db.Prepare(query + ";")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %v", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *sqlRepo) UpdateStatus(fileID string, status Status) error {
	query := `update files set status = ? where file_id = ? and deleted_at is null;`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(status, fileID)
	return affected(res, err)
}

func (r *sqlRepo) MarkUploaded(fileID string, hostname string, when time.Time) error {
	query := `update files set status = ?, hostname = ?, uploaded_at = ? where file_id = ? and deleted_at is null;`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(Uploaded, hostname, when.UTC(), fileID)
	return affected(res, err)
}

func (r *sqlRepo) Delete(fileID string, when time.Time) error {
	f, err := r.Get(fileID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrNotFound
	}
	if f.Direction != Outbound || f.Status != Pending {
		return fmt.Errorf("%s is %s: %w", fileID, f.Status, ErrNotPending)
	}

	query := `update files set deleted_at = ? where file_id = ? and status = ? and deleted_at is null;`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(when.UTC(), fileID, Pending)
	return affected(res, err)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
