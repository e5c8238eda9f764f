// Package pool is a typed HTTP client for the Braiins Pool account API.
// This file implements the client itself: endpoint plumbing, authentication,
// optional SOCKS5 (Tor) routing, and the Tor reachability probe.
package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultBaseURL is the production pool API origin.
	DefaultBaseURL = "https://pool.braiins.com"

	// torCheckURL reports whether the outbound path exits through Tor.
	torCheckURL = "https://check.torproject.org/api/ip"

	// authHeader carries the per-account access token on every API call.
	authHeader = "SlushPool-Auth-Token"

	profilePath = "/accounts/profile/json/btc/"
	workersPath = "/accounts/workers/json/btc/"
	rewardsPath = "/accounts/rewards/json/btc/"
	statsPath   = "/stats/json/btc/"
)

// Options tune the client. The zero value gives the production API with a
// direct network path.
type Options struct {
	// BaseURL overrides the API origin (tests, self-hosted mirrors).
	BaseURL string
	// SOCKS5Proxy is a host:port SOCKS5 endpoint, typically a local Tor
	// daemon. Empty means direct connection.
	SOCKS5Proxy string
	// Timeout bounds every request. Zero means 30s.
	Timeout time.Duration
	// TorCheckURL overrides the Tor reachability probe endpoint (tests).
	TorCheckURL string
}

// Client talks to the pool API on behalf of one account token. It is safe
// for concurrent use; the dispatcher builds one per command invocation.
type Client struct {
	token    string
	baseURL  string
	torCheck string
	http     *http.Client
}

// NewClient builds a client for the given account token. An error is only
// returned when the SOCKS5 proxy cannot be constructed.
func NewClient(token string, opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport
	if opts.SOCKS5Proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", opts.SOCKS5Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 proxy %q: %w", opts.SOCKS5Proxy, err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5 proxy %q: dialer does not support context", opts.SOCKS5Proxy)
		}
		transport = &http.Transport{DialContext: cd.DialContext}
	}

	torCheck := opts.TorCheckURL
	if torCheck == "" {
		torCheck = torCheckURL
	}

	return &Client{
		token:    token,
		baseURL:  baseURL,
		torCheck: torCheck,
		http:     &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// AccountProfile fetches the account status snapshot.
func (c *Client) AccountProfile(ctx context.Context) (*AccountProfile, error) {
	var env profileEnvelope
	if err := c.get(ctx, c.baseURL+profilePath, true, &env); err != nil {
		return nil, err
	}
	return &env.BTC, nil
}

// Workers fetches the per-worker state map, keyed by qualified worker name.
func (c *Client) Workers(ctx context.Context) (map[string]Worker, error) {
	var env workersEnvelope
	if err := c.get(ctx, c.baseURL+workersPath, true, &env); err != nil {
		return nil, err
	}
	return env.BTC.Workers, nil
}

// DailyRewards fetches the reward history, most recent first.
func (c *Client) DailyRewards(ctx context.Context) ([]DailyReward, error) {
	var env rewardsEnvelope
	if err := c.get(ctx, c.baseURL+rewardsPath, true, &env); err != nil {
		return nil, err
	}
	return env.BTC.DailyRewards, nil
}

// PoolStats fetches pool-wide statistics.
func (c *Client) PoolStats(ctx context.Context) (*PoolStats, error) {
	var env statsEnvelope
	if err := c.get(ctx, c.baseURL+statsPath, true, &env); err != nil {
		return nil, err
	}
	return &env.BTC, nil
}

// CheckTorConnection reports whether outbound requests exit through the Tor
// network. It needs no account token.
func (c *Client) CheckTorConnection(ctx context.Context) (bool, error) {
	var out torCheckResponse
	if err := c.get(ctx, c.torCheck, false, &out); err != nil {
		return false, err
	}
	return out.IsTor, nil
}

// get performs a single GET and decodes the JSON body into out. Non-2xx
// statuses and decode failures are returned as plain errors; the service
// layer wraps them into its remote-API error kind.
func (c *Client) get(ctx context.Context, url string, authed bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if authed {
		req.Header.Set(authHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("pool api: unexpected status %s for %s", resp.Status, req.URL.Path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pool api: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
