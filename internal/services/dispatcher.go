// Package services implements the business logic of the bot. This file is
// the command dispatcher: it classifies one inbound room message, resolves
// the sender's subscription, invokes the pool API, and renders the reply.
//
// One invocation handles exactly one message event to completion. Side
// effects are strictly bounded: at most one remote API call, at most one
// persistence mutation, and at most one reply; `!subscribe` additionally
// requests a best-effort redaction of the triggering message so the token
// does not linger in room history.
//
// Error semantics:
//   - A missing subscription is not an error; it selects the not-subscribed
//     reply branch and performs no remote call.
//   - Store and remote failures abort the command with no partial reply; the
//     ingress loop renders the error into the originating room.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/domain"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/format"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/pool"
)

// Command tokens. Matching is exact and case-sensitive.
const (
	CmdUserStatus   = "!userstatus"
	CmdWorkers      = "!workers"
	CmdDailyRewards = "!dailyrewards"
	CmdPoolStatus   = "!poolstatus"
	CmdSubscribe    = "!subscribe"
	CmdUnlink       = "!unlink"
	CmdCheckTor     = "!checktor"
	CmdHelp         = "!help"
)

// Reply texts with no dynamic content.
const (
	replyNotSubscribed     = "This account in not subscribed."
	replyAlreadySubscribed = "This account is already subscribed"
	replySubscribed        = "Subscribed"
	replyMissingToken      = "Please provide a token.\nTo subscribe send: !subscribe <token>"
	replyUnlinked          = "Unlinked"
	replyNoToken           = "No token linked to this account"
	replyTorOK             = "Connected to Tor Network"
	replyTorFail           = "NOT connected to Tor Network"
	replyInvalid           = "Invalid command"

	replyHelp = "!userstatus - Get user status\n" +
		"!workers - Get workers\n" +
		"!dailyrewards - Get daily rewards\n" +
		"!poolstatus - Get pool status\n" +
		"!subscribe <token> - Subscribe with token\n" +
		"!unlink - Unlink account from token\n" +
		"!checktor - Check Tor connection\n" +
		"!help - Help"
)

// Membership is the sender room-membership state gating dispatch. Only
// events from rooms the bot has joined are eligible for a reply.
type Membership int

// Membership states.
const (
	MembershipInvited Membership = iota
	MembershipJoined
	MembershipLeft
)

// String implements fmt.Stringer.
func (m Membership) String() string {
	switch m {
	case MembershipInvited:
		return "invited"
	case MembershipJoined:
		return "joined"
	case MembershipLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Message is one inbound room message event, already decoded from the
// transport layer.
type Message struct {
	Sender     string
	RoomID     string
	EventID    string
	Body       string
	IsText     bool
	Membership Membership
}

// Reply is the outcome of a processed message: the text to send back and
// whether the triggering event should be redacted (token scrubbing).
type Reply struct {
	Text          string
	RedactTrigger bool
}

// SubscriptionStore is the persistence contract required by the dispatcher.
// A missing record surfaces as gorm.ErrRecordNotFound; any other error is a
// storage failure.
type SubscriptionStore interface {
	// Create links userID to apiToken, pinned to roomID.
	Create(ctx context.Context, userID, roomID, apiToken string) error

	// Get fetches the subscription for userID.
	Get(ctx context.Context, userID string) (*domain.Subscription, error)

	// Delete unlinks userID.
	Delete(ctx context.Context, userID string) error
}

// PoolClient is the remote pool API contract required by the dispatcher.
type PoolClient interface {
	AccountProfile(ctx context.Context) (*pool.AccountProfile, error)
	Workers(ctx context.Context) (map[string]pool.Worker, error)
	DailyRewards(ctx context.Context) ([]pool.DailyReward, error)
	PoolStats(ctx context.Context) (*pool.PoolStats, error)
	CheckTorConnection(ctx context.Context) (bool, error)
}

// PoolClientFactory builds a pool client bound to one account token. The
// token is empty for unauthenticated probes (`!checktor`).
type PoolClientFactory func(token string) (PoolClient, error)

// Dispatcher is the command-interpretation engine. All collaborators are
// injected; the zero value is not usable.
type Dispatcher struct {
	// BotUserID is the bot's own Matrix ID, used to suppress reply loops.
	BotUserID string
	// Subs is the subscription persistence adapter.
	Subs SubscriptionStore
	// NewPoolClient builds per-token pool API clients.
	NewPoolClient PoolClientFactory
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(botUserID string, subs SubscriptionStore, factory PoolClientFactory) *Dispatcher {
	return &Dispatcher{
		BotUserID:     botUserID,
		Subs:          subs,
		NewPoolClient: factory,
	}
}

// Dispatch processes one message event. A nil Reply with nil error means the
// event was ignored (own message, non-joined room, non-text event). A non-nil
// error aborts the command with no reply; the caller reports it into the
// room.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (*Reply, error) {
	if msg.Sender == d.BotUserID {
		return nil, nil
	}
	if msg.Membership != MembershipJoined {
		return nil, nil
	}
	if !msg.IsText {
		return nil, nil
	}

	parts := strings.Split(msg.Body, " ")
	command := parts[0]

	start := time.Now()
	reply, err := d.run(ctx, command, parts, msg)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	commandsTotal.WithLabelValues(metricCommand(command), outcome).Inc()
	commandDuration.WithLabelValues(metricCommand(command)).Observe(elapsed.Seconds())

	log.Debug().
		Str("command", command).
		Str("user_id", msg.Sender).
		Dur("duration", elapsed).
		Msg("command processed")

	return reply, err
}

// run executes the dispatch table. parts is the space-split message body;
// parts[0] is the command token.
func (d *Dispatcher) run(ctx context.Context, command string, parts []string, msg Message) (*Reply, error) {
	switch command {
	case CmdUserStatus:
		return d.withSubscription(ctx, msg.Sender, d.userStatus)
	case CmdWorkers:
		return d.withSubscription(ctx, msg.Sender, d.workers)
	case CmdDailyRewards:
		return d.withSubscription(ctx, msg.Sender, d.dailyRewards)
	case CmdPoolStatus:
		return d.withSubscription(ctx, msg.Sender, d.poolStatus)
	case CmdSubscribe:
		return d.subscribe(ctx, msg, parts)
	case CmdUnlink:
		return d.unlink(ctx, msg.Sender)
	case CmdCheckTor:
		return d.checkTor(ctx)
	case CmdHelp:
		return &Reply{Text: replyHelp}, nil
	default:
		return &Reply{Text: replyInvalid}, nil
	}
}

// withSubscription resolves the sender's subscription and, when present,
// runs fn with a pool client bound to the stored token. A missing
// subscription yields the not-subscribed reply and no remote call.
func (d *Dispatcher) withSubscription(ctx context.Context, userID string, fn func(context.Context, PoolClient) (*Reply, error)) (*Reply, error) {
	sub, err := d.Subs.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Reply{Text: replyNotSubscribed}, nil
	}
	if err != nil {
		return nil, &StoreError{Err: err}
	}

	client, err := d.NewPoolClient(sub.APIToken)
	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}
	return fn(ctx, client)
}

func (d *Dispatcher) userStatus(ctx context.Context, client PoolClient) (*Reply, error) {
	profile, err := client.AccountProfile(ctx)
	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}

	var b strings.Builder
	b.WriteString("User Status\n\n")
	fmt.Fprintf(&b, "Reward: %s\n", format.BTCToSats(profile.ConfirmedReward.Float64()))
	fmt.Fprintf(&b, "Unconfirmed reward: %s\n", format.BTCToSats(profile.UnconfirmedReward.Float64()))
	fmt.Fprintf(&b, "Estimate reward (block): %s\n\n", format.BTCToSats(profile.EstimatedReward.Float64()))
	fmt.Fprintf(&b, "Hashrate 5m: %s\n", format.GHToTH(profile.HashRate5m.Float64()))
	fmt.Fprintf(&b, "Hashrate 60m: %s\n", format.GHToTH(profile.HashRate60m.Float64()))
	fmt.Fprintf(&b, "Hashrate 24h: %s\n", format.GHToTH(profile.HashRate24h.Float64()))
	fmt.Fprintf(&b, "Hashrate scoring: %s\n", format.GHToTH(profile.HashRateScoring.Float64()))
	fmt.Fprintf(&b, "Hashrate yesterday: %s\n\n", format.GHToTH(profile.HashRateYesterday.Float64()))
	fmt.Fprintf(&b, "Ok workers: %d\n", profile.OkWorkers)
	fmt.Fprintf(&b, "Low workers: %d\n", profile.LowWorkers)
	fmt.Fprintf(&b, "Off workers: %d\n", profile.OffWorkers)
	fmt.Fprintf(&b, "Disabled workers: %d", profile.DisWorkers)

	return &Reply{Text: b.String()}, nil
}

func (d *Dispatcher) workers(ctx context.Context, client PoolClient) (*Reply, error) {
	workers, err := client.Workers(ctx)
	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}

	// Map order is random; sort for a deterministic reply.
	names := make([]string, 0, len(workers))
	for name := range workers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Workers\n\n")
	for _, name := range names {
		worker := workers[name]

		// The qualified name is "account.worker"; show only the worker part.
		if _, short, found := strings.Cut(name, "."); found {
			fmt.Fprintf(&b, "Worker: %s\n", short)
		}
		fmt.Fprintf(&b, "Status: %s\n", worker.State)
		fmt.Fprintf(&b, "Last share: %s\n", format.Date(worker.LastShare, format.DateTimeLayout))
		fmt.Fprintf(&b, "Hashrate scoring: %s\n", format.GHToTH(worker.HashRateScoring.Float64()))
		fmt.Fprintf(&b, "Hashrate 5m: %s\n", format.GHToTH(worker.HashRate5m.Float64()))
		fmt.Fprintf(&b, "Hashrate 60m: %s\n", format.GHToTH(worker.HashRate60m.Float64()))
		fmt.Fprintf(&b, "Hashrate 24h: %s\n\n", format.GHToTH(worker.HashRate24h.Float64()))
	}

	return &Reply{Text: b.String()}, nil
}

func (d *Dispatcher) dailyRewards(ctx context.Context, client PoolClient) (*Reply, error) {
	rewards, err := client.DailyRewards(ctx)
	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}

	var b strings.Builder
	b.WriteString("Daily Rewards\n\n")
	for _, reward := range rewards {
		fmt.Fprintf(&b, "%s: %s\n", format.Date(reward.Date, format.DateLayout), format.BTCToSats(reward.TotalReward.Float64()))
	}

	return &Reply{Text: b.String()}, nil
}

func (d *Dispatcher) poolStatus(ctx context.Context, client PoolClient) (*Reply, error) {
	stats, err := client.PoolStats(ctx)
	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}

	var b strings.Builder
	b.WriteString("Pool Status\n\n")
	fmt.Fprintf(&b, "Luck 10 blocks: %v\n", stats.LuckB10.Float64())
	fmt.Fprintf(&b, "Luck 50 blocks: %v\n", stats.LuckB50.Float64())
	fmt.Fprintf(&b, "Luck 250 blocks: %v\n", stats.LuckB250.Float64())
	fmt.Fprintf(&b, "Hashrate scoring: %s\n", format.GHToTH(stats.PoolScoringHashRate.Float64()))
	fmt.Fprintf(&b, "Active workers: %s\n", format.Number(uint64(stats.PoolActiveWorkers)))
	fmt.Fprintf(&b, "Round probability: %v\n", stats.RoundProbability.Float64())

	return &Reply{Text: b.String()}, nil
}

// subscribe creates the sender's subscription. The precondition is that no
// subscription exists for the sender in any room: room_id pins where the
// link was created, it does not scope the uniqueness check.
func (d *Dispatcher) subscribe(ctx context.Context, msg Message, parts []string) (*Reply, error) {
	_, err := d.Subs.Get(ctx, msg.Sender)
	switch {
	case err == nil:
		return &Reply{Text: replyAlreadySubscribed}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &StoreError{Err: err}
	}

	if len(parts) < 2 || parts[1] == "" {
		return &Reply{Text: replyMissingToken}, nil
	}
	token := parts[1]

	if err := d.Subs.Create(ctx, msg.Sender, msg.RoomID, token); err != nil {
		return nil, &StoreError{Err: err}
	}

	// Redacting the trigger scrubs the token from room history. Best effort:
	// the caller discards the result.
	return &Reply{Text: replySubscribed, RedactTrigger: true}, nil
}

func (d *Dispatcher) unlink(ctx context.Context, userID string) (*Reply, error) {
	err := d.Subs.Delete(ctx, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Reply{Text: replyNoToken}, nil
	case err != nil:
		return nil, &StoreError{Err: err}
	}
	return &Reply{Text: replyUnlinked}, nil
}

func (d *Dispatcher) checkTor(ctx context.Context) (*Reply, error) {
	client, err := d.NewPoolClient("")
	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}

	isTor, err := client.CheckTorConnection(ctx)
	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}
	if isTor {
		return &Reply{Text: replyTorOK}, nil
	}
	return &Reply{Text: replyTorFail}, nil
}
