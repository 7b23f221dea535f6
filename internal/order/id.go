package order

import (
	"fmt"
	"math/rand"
	"time"
)

// IDPrefix starts every order reference, e.g. MX-20260106-483921.
const IDPrefix = "MX"

// NewOrderID builds a readable reference from the creation date and a six digit
// random suffix. Two orders placed on the same day may collide; at demo scale
// that is accepted.
func NewOrderID(now time.Time, rnd *rand.Rand) string {
	return fmt.Sprintf("%s-%s-%06d", IDPrefix, now.Format("20060102"), rnd.Intn(1_000_000))
}
