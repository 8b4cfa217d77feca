package gateway

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// newRequestID mints a ULID for X-Request-Id when the caller didn't supply
// one (spec.md §4.1). ULIDs sort lexically by creation time, which makes
// request_id useful for correlating logs across services without a
// separate sequence.
func newRequestID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
