package sift

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid"
)

// GenID returns a fresh ULID, used as the session id tying one message's
// log lines and audit records together.
func GenID() ulid.ULID {
	seed := time.Now().UnixNano()
	entropy := rand.New(rand.NewSource(seed))
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}
