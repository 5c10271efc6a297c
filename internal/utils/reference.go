package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference generates a human-facing unique reference such as a
// KYC number ("KYC...") or loan request id ("RID..."). Millisecond
// timestamp plus a random suffix; the store's unique index is the real
// uniqueness guarantee.
func GenerateReference(prefix string) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = referenceCharset[rand.Intn(len(referenceCharset))]
	}
	return fmt.Sprintf("%s%d%s", prefix, time.Now().UnixMilli(), string(suffix))
}
