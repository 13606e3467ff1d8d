package utils

import (
	"strings"

	"github.com/google/uuid"
)

var idempotencyNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DeterministicID derives a stable UUID from the given parts. The same queue
// item always yields the same broker client order id, so a re-run of an
// execution batch cannot place a duplicate order. Parts are joined with a
// separator, ("renewal", "1", "10") and ("renewal", "11", "0") must not
// collide.
func DeterministicID(parts ...string) string {
	return uuid.NewMD5(idempotencyNamespace, []byte(strings.Join(parts, "/"))).String()
}
