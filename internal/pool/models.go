// Package pool is a typed HTTP client for the Braiins Pool (formerly Slush
// Pool) account API. This file defines the wire models.
//
// The API encodes several numeric fields as JSON strings (rewards, luck,
// probabilities), so float fields use the Number alias type which accepts
// both encodings.
package pool

import (
	"bytes"
	"strconv"
)

// Number is a float64 that unmarshals from either a JSON number or a JSON
// string ("0.00012345"). Empty and null values decode as zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float64 returns the plain float value.
func (n Number) Float64() float64 { return float64(n) }

// AccountProfile is the per-account snapshot returned by the profile
// endpoint. Hashrates are in GH/s, rewards in BTC.
type AccountProfile struct {
	ConfirmedReward   Number `json:"confirmed_reward"`
	UnconfirmedReward Number `json:"unconfirmed_reward"`
	EstimatedReward   Number `json:"estimated_reward"`
	HashRate5m        Number `json:"hash_rate_5m"`
	HashRate60m       Number `json:"hash_rate_60m"`
	HashRate24h       Number `json:"hash_rate_24h"`
	HashRateScoring   Number `json:"hash_rate_scoring"`
	HashRateYesterday Number `json:"hash_rate_yesterday"`
	OkWorkers         int    `json:"ok_workers"`
	LowWorkers        int    `json:"low_workers"`
	OffWorkers        int    `json:"off_workers"`
	DisWorkers        int    `json:"dis_workers"`
}

// Worker is one mining worker as reported by the workers endpoint. The map
// key is the qualified worker name ("account.worker").
type Worker struct {
	State           string `json:"state"`
	LastShare       int64  `json:"last_share"`
	HashRateScoring Number `json:"hash_rate_scoring"`
	HashRate5m      Number `json:"hash_rate_5m"`
	HashRate60m     Number `json:"hash_rate_60m"`
	HashRate24h     Number `json:"hash_rate_24h"`
}

// DailyReward is one entry of the reward history, dated by Unix seconds.
type DailyReward struct {
	Date        int64  `json:"date"`
	TotalReward Number `json:"total_reward"`
}

// PoolStats are pool-wide statistics. Luck values are ratios over the last
// N blocks; the scoring hashrate is in GH/s.
type PoolStats struct {
	LuckB10             Number `json:"luck_b10"`
	LuckB50             Number `json:"luck_b50"`
	LuckB250            Number `json:"luck_b250"`
	PoolScoringHashRate Number `json:"pool_scoring_hash_rate"`
	PoolActiveWorkers   int64  `json:"pool_active_workers"`
	RoundProbability    Number `json:"round_probability"`
}

// envelopes: every account endpoint nests its payload under the coin tag.

type profileEnvelope struct {
	Username string         `json:"username"`
	BTC      AccountProfile `json:"btc"`
}

type workersEnvelope struct {
	BTC struct {
		Workers map[string]Worker `json:"workers"`
	} `json:"btc"`
}

type rewardsEnvelope struct {
	BTC struct {
		DailyRewards []DailyReward `json:"daily_rewards"`
	} `json:"btc"`
}

type statsEnvelope struct {
	BTC PoolStats `json:"btc"`
}

// torCheckResponse is the reply of the Tor Project connectivity probe.
type torCheckResponse struct {
	IsTor bool   `json:"IsTor"`
	IP    string `json:"IP"`
}
