// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package textx prepares free text from requests for NACHA alphanumeric fields.
package textx

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCII strips accents ("Café" becomes "Cafe") and drops any remaining
// character NACHA files can't carry. Whitespace is collapsed to single spaces.
func ASCII(in string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, in)
	if err != nil {
		out = in
	}

	var sb strings.Builder
	space := false
	for _, r := range out {
		switch {
		case unicode.IsSpace(r):
			space = sb.Len() > 0
			continue
		case r > unicode.MaxASCII || !unicode.IsPrint(r):
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Upper is ASCII in upper case, the form most banks expect names in.
func Upper(in string) string {
	return strings.ToUpper(ASCII(in))
}
