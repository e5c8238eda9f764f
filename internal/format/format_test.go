package format

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	cases := map[uint64]string{
		0:          "0",
		7:          "7",
		999:        "999",
		1000:       "1,000",
		10000:      "10,000",
		180000:     "180,000",
		1000000:    "1,000,000",
		1234567:    "1,234,567",
		1000000000: "1,000,000,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, Number(in), "Number(%d)", in)
	}
}

// Grouping must be purely cosmetic: stripping the separators gives back the
// original value.
func TestNumber_RoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 12, 123, 1234, 98765, 4294967295, 18446744073709551615} {
		back, err := strconv.ParseUint(strings.ReplaceAll(Number(n), ",", ""), 10, 64)
		require.NoError(t, err)
		assert.Equal(t, n, back)
	}
}

func TestGHToTH(t *testing.T) {
	assert.Equal(t, "1 Th/s", GHToTH(1000.0))
	assert.Equal(t, "1,000 Th/s", GHToTH(1000000.0))
	assert.Equal(t, "5,820,970 Th/s", GHToTH(5820970883.3011))
	assert.Equal(t, "0 Th/s", GHToTH(999.9))
}

func TestBTCToSats(t *testing.T) {
	assert.Equal(t, "1 SAT", BTCToSats(0.00000001))
	assert.Equal(t, "1,000 SAT", BTCToSats(0.00001))
	assert.Equal(t, "10,000 SAT", BTCToSats(0.0001))
	assert.Equal(t, "100,000 SAT", BTCToSats(0.001))
	assert.Equal(t, "1,000,000 SAT", BTCToSats(0.01))
	assert.Equal(t, "100,000,000 SAT", BTCToSats(1.0))
	assert.Equal(t, "1,000,000,000 SAT", BTCToSats(10.0))
}

func TestSats(t *testing.T) {
	assert.Equal(t, "100 SAT", Sats(100))
	assert.Equal(t, "1,000 SAT", Sats(1000))
	assert.Equal(t, "1,000,000,000 SAT", Sats(1000000000))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2022-03-07", Date(1646649012, DateLayout))
	assert.Equal(t, "2022-03-07 10:30:12", Date(1646649012, DateTimeLayout))
}

// Hostile inputs must not panic and must render as zero.
func TestTotalOverBadInputs(t *testing.T) {
	assert.Equal(t, "0 Th/s", GHToTH(-12.5))
	assert.Equal(t, "0 SAT", BTCToSats(math.NaN()))
	assert.Equal(t, "0 SAT", BTCToSats(-1.0))
	assert.NotPanics(t, func() { _ = GHToTH(math.Inf(1)) })
	assert.NotPanics(t, func() { _ = BTCToSats(math.MaxFloat64) })
}
