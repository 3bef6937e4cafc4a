// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package events

import (
	"context"
	"sync"
)

type MockEmitter struct {
	Err error

	mu   sync.Mutex
	sent []Event
}

func (e *MockEmitter) Send(ctx context.Context, event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Err != nil {
		return e.Err
	}
	e.sent = append(e.sent, event)
	return nil
}

// Sent returns a copy of every event sent so far.
func (e *MockEmitter) Sent() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]Event(nil), e.sent...)
}

func (e *MockEmitter) Shutdown(ctx context.Context) error {
	return nil
}
