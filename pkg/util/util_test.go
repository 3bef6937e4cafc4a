// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOr(t *testing.T) {
	require.Equal(t, "b", Or("", "  ", "b", "c"))
	require.Equal(t, "", Or())
}

func TestYes(t *testing.T) {
	for _, v := range []string{"yes", "YES", " true", "1"} {
		if !Yes(v) {
			t.Errorf("%q should be yes", v)
		}
	}
	for _, v := range []string{"", "no", "0", "false", "yess"} {
		if Yes(v) {
			t.Errorf("%q should not be yes", v)
		}
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abcdef", 3))
	require.Equal(t, "ab", Truncate("ab", 3))
}

func TestFirstParsedTime(t *testing.T) {
	when := FirstParsedTime("201002", DateFormats...)
	require.Equal(t, time.Date(2020, time.October, 2, 0, 0, 0, 0, time.UTC), when)

	when = FirstParsedTime("2020-10-02", DateFormats...)
	require.Equal(t, 2, when.Day())

	require.True(t, FirstParsedTime("tomorrow", DateFormats...).IsZero())
}

func TestTimeout(t *testing.T) {
	err := Timeout(func() error {
		time.Sleep(100 * time.Millisecond)
		return nil
	}, 10*time.Millisecond)
	require.Equal(t, ErrTimeout, err)

	boom := errors.New("boom")
	err = Timeout(func() error { return boom }, time.Second)
	require.Equal(t, boom, err)
}
