// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"time"

	"github.com/go-kit/kit/log"
)

// Option adjusts how an Addenda, Entry, Batch or File is constructed.
type Option func(*settings)

type settings struct {
	validate bool
	logger   log.Logger
	now      func() time.Time
}

func newSettings(opts []Option) *settings {
	s := &settings{
		validate: true,
		logger:   log.NewNopLogger(),
		now:      time.Now,
	}
	for i := range opts {
		if opts[i] != nil {
			opts[i](s)
		}
	}
	return s
}

// WithoutValidation skips construction-time validation. It's used when
// rebuilding records from parsed input, which are validated once attached.
func WithoutValidation() Option {
	return func(s *settings) {
		s.validate = false
	}
}

// WithLogger sets the logger notices (such as unsupported transaction codes) are written to.
func WithLogger(logger log.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the source of the file creation date and time.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
