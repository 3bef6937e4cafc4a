// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package mask

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Password turns 'password' into 'p******d'.
func Password(s string) string {
	if utf8.RuneCountInString(s) < 3 {
		return "**" // too short, we can't mask anything
	}
	first, last := s[0:1], s[len(s)-1:]
	return fmt.Sprintf("%s%s%s", first, strings.Repeat("*", len(s)-2), last)
}

// AccountNumber keeps the last four characters of a DFI account number,
// turning '5654221' into '***4221'.
func AccountNumber(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
