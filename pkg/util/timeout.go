// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"time"
)

var (
	ErrTimeout = errors.New("timeout exceeded")
)

// Timeout calls f but gives up waiting after t, returning ErrTimeout. Liveness
// checks against remote servers are wrapped with this.
func Timeout(f func() error, t time.Duration) error {
	answer := make(chan error, 1)
	go func() {
		answer <- f()
	}()
	select {
	case err := <-answer:
		return err
	case <-time.After(t):
		return ErrTimeout
	}
}
