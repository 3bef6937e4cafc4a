// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"io/ioutil"
	"sync"
)

type MockAgent struct {
	InboundFiles []File
	ReturnFiles  []File

	// Uploaded holds every file written with UploadFile, contents already read.
	Uploaded map[string][]byte

	// Deleted holds the paths of each deleted file, in order
	Deleted []string

	Err error

	mu sync.RWMutex
}

func (a *MockAgent) GetInboundFiles() ([]File, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.Err != nil {
		return nil, a.Err
	}
	return a.InboundFiles, nil
}

func (a *MockAgent) GetReturnFiles() ([]File, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.Err != nil {
		return nil, a.Err
	}
	return a.ReturnFiles, nil
}

func (a *MockAgent) UploadFile(f File) error {
	defer f.Close()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Err != nil {
		return a.Err
	}
	bs, err := ioutil.ReadAll(f.Contents)
	if err != nil {
		return err
	}
	if a.Uploaded == nil {
		a.Uploaded = make(map[string][]byte)
	}
	a.Uploaded[f.Filename] = bs
	return nil
}

// UploadedFile returns the contents of an uploaded file or nil.
func (a *MockAgent) UploadedFile(filename string) []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.Uploaded[filename]
}

func (a *MockAgent) Delete(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Err != nil {
		return a.Err
	}
	a.Deleted = append(a.Deleted, path)
	return nil
}

func (a *MockAgent) InboundPath() string {
	return "inbound/"
}

func (a *MockAgent) OutboundPath() string {
	return "outbound/"
}

func (a *MockAgent) ReturnPath() string {
	return "return/"
}

func (a *MockAgent) Hostname() string {
	return "ftp.bank.com"
}

func (a *MockAgent) Ping() error {
	return a.Err
}

func (a *MockAgent) Close() error {
	return nil
}

// NewMockFile is a File holding contents.
func NewMockFile(filename string, contents []byte) File {
	return File{
		Filename: filename,
		Contents: ioutil.NopCloser(bytes.NewReader(contents)),
	}
}
