package pool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, wantToken string, payloads map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if wantToken != "" && r.Header.Get("SlushPool-Auth-Token") != wantToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNumber_UnmarshalBothEncodings(t *testing.T) {
	var v struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "0.00012345", "b": 1000.5, "c": null}`), &v))
	assert.InDelta(t, 0.00012345, v.A.Float64(), 1e-12)
	assert.InDelta(t, 1000.5, v.B.Float64(), 1e-12)
	assert.Zero(t, v.C.Float64())

	assert.Error(t, json.Unmarshal([]byte(`{"a": "not-a-number"}`), &v))
}

func TestAccountProfile(t *testing.T) {
	srv := newTestServer(t, "tok", map[string]string{
		"/accounts/profile/json/btc/": `{
			"username": "miner",
			"btc": {
				"confirmed_reward": "0.00012345",
				"unconfirmed_reward": "0.00000100",
				"estimated_reward": 0.00000050,
				"hash_rate_5m": 5000.0,
				"hash_rate_60m": 5100.0,
				"hash_rate_24h": 4900.0,
				"hash_rate_scoring": 5050.0,
				"hash_rate_yesterday": 4800.0,
				"ok_workers": 3, "low_workers": 1, "off_workers": 0, "dis_workers": 2
			}
		}`,
	})

	c, err := NewClient("tok", Options{BaseURL: srv.URL})
	require.NoError(t, err)

	p, err := c.AccountProfile(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.00012345, p.ConfirmedReward.Float64(), 1e-12)
	assert.InDelta(t, 5000.0, p.HashRate5m.Float64(), 1e-9)
	assert.Equal(t, 3, p.OkWorkers)
	assert.Equal(t, 2, p.DisWorkers)
}

func TestWorkers(t *testing.T) {
	srv := newTestServer(t, "tok", map[string]string{
		"/accounts/workers/json/btc/": `{
			"btc": {"workers": {
				"miner.rig1": {"state": "ok", "last_share": 1646649012, "hash_rate_scoring": 2000.0, "hash_rate_5m": 2100.0, "hash_rate_60m": 1900.0, "hash_rate_24h": 2050.0},
				"miner.rig2": {"state": "off", "last_share": 1646600000}
			}}
		}`,
	})

	c, err := NewClient("tok", Options{BaseURL: srv.URL})
	require.NoError(t, err)

	workers, err := c.Workers(context.Background())
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, "ok", workers["miner.rig1"].State)
	assert.EqualValues(t, 1646649012, workers["miner.rig1"].LastShare)
	assert.Equal(t, "off", workers["miner.rig2"].State)
}

func TestDailyRewardsAndPoolStats(t *testing.T) {
	srv := newTestServer(t, "tok", map[string]string{
		"/accounts/rewards/json/btc/": `{
			"btc": {"daily_rewards": [
				{"date": 1646649012, "total_reward": "0.00031000"},
				{"date": 1646562612, "total_reward": "0.00029500"}
			]}
		}`,
		"/stats/json/btc/": `{
			"btc": {
				"luck_b10": "1.05", "luck_b50": "0.98", "luck_b250": "1.01",
				"pool_scoring_hash_rate": 5820970883.3011,
				"pool_active_workers": 180000,
				"round_probability": "0.83"
			}
		}`,
	})

	c, err := NewClient("tok", Options{BaseURL: srv.URL})
	require.NoError(t, err)

	rewards, err := c.DailyRewards(context.Background())
	require.NoError(t, err)
	require.Len(t, rewards, 2)
	assert.EqualValues(t, 1646649012, rewards[0].Date)
	assert.InDelta(t, 0.00031, rewards[0].TotalReward.Float64(), 1e-12)

	stats, err := c.PoolStats(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.05, stats.LuckB10.Float64(), 1e-9)
	assert.EqualValues(t, 180000, stats.PoolActiveWorkers)
	assert.InDelta(t, 5820970883.3011, stats.PoolScoringHashRate.Float64(), 1e-3)
}

func TestAuthHeaderRequired(t *testing.T) {
	srv := newTestServer(t, "expected", map[string]string{
		"/accounts/profile/json/btc/": `{"btc": {}}`,
	})

	c, err := NewClient("wrong", Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.AccountProfile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestCheckTorConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"IsTor": true, "IP": "198.51.100.7"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient("", Options{TorCheckURL: srv.URL})
	require.NoError(t, err)

	isTor, err := c.CheckTorConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, isTor)
}
