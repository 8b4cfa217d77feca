// Package utils is a small set of single-purpose helpers shared across
// services: the opaque cursor codec (spec.md §4.4), pointer conversions
// for optional DTO fields, and a context-timeout helper for the per-call
// deadlines named in spec.md §5.
package utils

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "dating-core/pkg/errors"
)

// Cursor is the decoded form of the opaque pagination token from
// spec.md §4.4: "the opaque string `<score>:<user_id>`".
type Cursor struct {
	Score  float64
	UserID int64
}

// EncodeCursor renders a Cursor as the wire-level opaque string.
func EncodeCursor(score float64, userID int64) string {
	return fmt.Sprintf("%s:%d", strconv.FormatFloat(score, 'f', -1, 64), userID)
}

// DecodeCursor parses a cursor string, rejecting anything malformed with
// a validation error rather than panicking on a client-supplied value.
func DecodeCursor(raw string) (Cursor, error) {
	if raw == "" {
		return Cursor{}, nil
	}

	idx := strings.LastIndexByte(raw, ':')
	if idx < 0 {
		return Cursor{}, apperrors.FieldErrors(map[string]string{"cursor": "malformed cursor"})
	}

	score, err := strconv.ParseFloat(raw[:idx], 64)
	if err != nil {
		return Cursor{}, apperrors.FieldErrors(map[string]string{"cursor": "malformed cursor score"})
	}

	userID, err := strconv.ParseInt(raw[idx+1:], 10, 64)
	if err != nil {
		return Cursor{}, apperrors.FieldErrors(map[string]string{"cursor": "malformed cursor user_id"})
	}

	return Cursor{Score: score, UserID: userID}, nil
}
