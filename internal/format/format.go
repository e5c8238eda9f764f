// Package format renders pool metrics as the plain-text strings sent back to
// Matrix rooms. Every function here is pure, stateless, and total over its
// documented input domain: malformed or negative inputs degrade to a zero
// value instead of panicking.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Display layouts for timestamps coming from the pool API (Unix seconds, UTC).
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Number renders n with a "," separator every three digits from the right.
// Values below 1000 pass through unchanged.
func Number(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3)

	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// GHToTH converts a hashrate in GH/s to a grouped integer Th/s string.
// The fractional terahash part is truncated, not rounded.
func GHToTH(gh float64) string {
	return Number(truncate(gh/1000)) + " Th/s"
}

// BTCToSats converts a BTC amount to a grouped satoshi string.
func BTCToSats(btc float64) string {
	return Sats(truncate(btc * 1e8))
}

// Sats renders an amount of satoshis with thousands grouping.
func Sats(amount uint64) string {
	return Number(amount) + " SAT"
}

// Date renders a Unix-seconds timestamp in UTC using the given layout.
func Date(ts int64, layout string) string {
	return time.Unix(ts, 0).UTC().Format(layout)
}

// truncate converts a float to uint64, clamping negatives and non-finite
// values to zero so absurd API payloads cannot crash the reply path.
func truncate(f float64) uint64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(f)
}
