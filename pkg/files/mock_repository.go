// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"sync"
	"time"
)

type MockRepository struct {
	Err error

	mu    sync.Mutex
	Files map[string]*File
}

func (r *MockRepository) Create(f *File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if r.Files == nil {
		r.Files = make(map[string]*File)
	}
	for _, other := range r.Files {
		if other.Filename == f.Filename && other.Direction == f.Direction {
			return ErrDuplicateFilename
		}
	}
	dup := *f
	r.Files[f.FileID] = &dup
	return nil
}

func (r *MockRepository) Get(fileID string) (*File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	if f, ok := r.Files[fileID]; ok {
		dup := *f
		return &dup, nil
	}
	return nil, nil
}

func (r *MockRepository) List(opts ListOptions) ([]*File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	var out []*File
	for _, f := range r.Files {
		if opts.Status != "" && f.Status != opts.Status {
			continue
		}
		if opts.Direction != "" && f.Direction != opts.Direction {
			continue
		}
		if !opts.CreatedAfter.IsZero() && f.CreatedAt.Before(opts.CreatedAfter) {
			continue
		}
		dup := *f
		out = append(out, &dup)
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *MockRepository) UpdateStatus(fileID string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	f, ok := r.Files[fileID]
	if !ok {
		return ErrNotFound
	}
	f.Status = status
	return nil
}

func (r *MockRepository) MarkUploaded(fileID string, hostname string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	f, ok := r.Files[fileID]
	if !ok {
		return ErrNotFound
	}
	f.Status = Uploaded
	f.Hostname = hostname
	f.UploadedAt = &when
	return nil
}

func (r *MockRepository) Delete(fileID string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	f, ok := r.Files[fileID]
	if !ok {
		return ErrNotFound
	}
	if f.Direction != Outbound || f.Status != Pending {
		return ErrNotPending
	}
	delete(r.Files, fileID)
	return nil
}

func (r *MockRepository) Close() error {
	return nil
}
