// Package models holds client-side mirrors of the remote GraphQL schema
// plus the purely local dashboard widget types.
//
// This file contains amount parsing for user input. The remote API works in
// float currency units, so parsing normalizes separators and sign before
// conversion.
package models

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-entered amount string to a float64.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. A leading
// minus is allowed because saving withdrawals are entered as negative amounts.
// Returns ErrInvalidAmount for empty, malformed, or zero input.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v == 0 {
		return 0, ErrInvalidAmount
	}
	if neg {
		v = -v
	}
	return v, nil
}
