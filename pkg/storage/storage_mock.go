// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"sync"
)

type MockStorage struct {
	Err error

	mu    sync.Mutex
	Files map[string][]byte
}

func (s *MockStorage) SaveFile(_ context.Context, path string, contents []byte) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Files == nil {
		s.Files = make(map[string][]byte)
	}
	s.Files[path] = contents
	return nil
}

func (s *MockStorage) ReadFile(_ context.Context, path string) ([]byte, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if bs, ok := s.Files[path]; ok {
		return bs, nil
	}
	return nil, ErrNotFound
}

func (s *MockStorage) DeleteFile(_ context.Context, path string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Files[path]; !ok {
		return ErrNotFound
	}
	delete(s.Files, path)
	return nil
}

func (s *MockStorage) Close() error {
	return s.Err
}
