// Package bot wires the Matrix transport to the dispatcher and session
// manager. This file is the event ingress loop: it establishes the session,
// registers the auto-join and message handlers, and then syncs until the
// process terminates.
//
// Each message event is handled in its own goroutine so a slow pool API call
// for one user never delays delivery of subsequent protocol events. There is
// deliberately no ordering or mutual exclusion between concurrent commands;
// the store resolves same-key races as last-write-wins.
package bot

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/config"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/pool"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/services"
)

// Bot is the long-lived process: one Matrix client, one dispatcher, one
// session manager.
type Bot struct {
	cfg      config.Config
	client   *mautrix.Client
	dispatch *services.Dispatcher
	sessions *services.SessionManager

	// membership tracks the bot's own room-membership state, fed by
	// m.room.member events. Rooms without an observed member event default
	// to joined: the homeserver only delivers message timelines for rooms
	// the bot is in.
	memberMu   sync.RWMutex
	membership map[id.RoomID]services.Membership
}

// New constructs the bot and its collaborators. It does not touch the
// network; Run does.
func New(cfg config.Config, db *gorm.DB) (*Bot, error) {
	client, err := mautrix.NewClient(cfg.Matrix.HomeserverURL, id.UserID(cfg.Matrix.UserID), "")
	if err != nil {
		return nil, &services.TransportError{Err: err}
	}

	if cfg.Matrix.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.Matrix.ProxyURL)
		if err != nil {
			return nil, &services.TransportError{Err: err}
		}
		client.Client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &Bot{
		cfg:        cfg,
		client:     client,
		dispatch:   services.NewDispatcher(cfg.Matrix.UserID, SubscriptionStore{DB: db}, poolClientFactory(cfg.Pool)),
		sessions:   services.NewSessionManager(SessionStore{DB: db}, cfg.Matrix.UserID, cfg.Matrix.Password),
		membership: make(map[id.RoomID]services.Membership),
	}, nil
}

// poolClientFactory binds the pool configuration into per-token clients for
// the dispatcher.
func poolClientFactory(cfg config.PoolConfig) services.PoolClientFactory {
	return func(token string) (services.PoolClient, error) {
		return pool.NewClient(token, pool.Options{
			BaseURL:     cfg.BaseURL,
			SOCKS5Proxy: cfg.SOCKS5Proxy,
			Timeout:     cfg.Timeout,
		})
	}
}

// Run resumes or establishes the session and syncs until ctx is canceled.
// Startup failures (login, resume) are returned to the caller, which treats
// them as fatal; per-event failures are reported into the originating room
// and never stop the loop.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.sessions.ResumeOrLogin(ctx, authenticator{client: b.client, displayName: b.cfg.Matrix.DisplayName}); err != nil {
		return err
	}

	if err := b.client.SetDisplayName(ctx, b.cfg.Matrix.DisplayName); err != nil {
		log.Warn().Err(err).Msg("failed to set display name")
	}

	syncer := b.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnSync(b.client.DontProcessOldEvents)
	syncer.OnEventType(event.StateMember, b.onMemberEvent)
	syncer.OnEventType(event.EventMessage, b.onMessageEvent)

	log.Info().Str("user_id", b.client.UserID.String()).Msg("matrix bot started")

	if err := b.client.SyncWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return &services.TransportError{Err: err}
	}
	return nil
}

// onMemberEvent tracks the bot's own membership and auto-joins on invite.
// Invitations are accepted unconditionally.
func (b *Bot) onMemberEvent(ctx context.Context, evt *event.Event) {
	if evt.GetStateKey() != b.client.UserID.String() {
		return
	}

	content := evt.Content.AsMember()
	switch content.Membership {
	case event.MembershipInvite:
		b.setMembership(evt.RoomID, services.MembershipInvited)
		if _, err := b.client.JoinRoomByID(ctx, evt.RoomID); err != nil {
			log.Error().Err(err).Str("room_id", evt.RoomID.String()).Msg("failed to join room")
			return
		}
		b.setMembership(evt.RoomID, services.MembershipJoined)
		log.Info().Str("room_id", evt.RoomID.String()).Msg("joined room after invite")
	case event.MembershipJoin:
		b.setMembership(evt.RoomID, services.MembershipJoined)
	case event.MembershipLeave, event.MembershipBan:
		b.setMembership(evt.RoomID, services.MembershipLeft)
	}
}

// onMessageEvent hands the event to its own goroutine so the sync loop keeps
// pulling.
func (b *Bot) onMessageEvent(ctx context.Context, evt *event.Event) {
	go b.handleMessage(ctx, evt)
}

// handleMessage is the per-event boundary: it dispatches the command and
// reports any failure into the room instead of letting it escape.
func (b *Bot) handleMessage(ctx context.Context, evt *event.Event) {
	content := evt.Content.AsMessage()
	if content == nil {
		return
	}

	msg := services.Message{
		Sender:     evt.Sender.String(),
		RoomID:     evt.RoomID.String(),
		EventID:    evt.ID.String(),
		Body:       content.Body,
		IsText:     content.MsgType == event.MsgText,
		Membership: b.roomMembership(evt.RoomID),
	}

	reply, err := b.dispatch.Dispatch(ctx, msg)
	if err != nil {
		log.Error().Err(err).Str("user_id", msg.Sender).Msg("command failed")
		b.sendText(ctx, evt.RoomID, err.Error())
		return
	}
	if reply == nil {
		return
	}

	if reply.RedactTrigger {
		// Best effort: the reply goes out either way.
		if _, err := b.client.RedactEvent(ctx, evt.RoomID, evt.ID); err != nil {
			log.Debug().Err(err).Str("event_id", evt.ID.String()).Msg("failed to redact trigger message")
		}
	}

	b.sendText(ctx, evt.RoomID, reply.Text)
}

func (b *Bot) sendText(ctx context.Context, roomID id.RoomID, text string) {
	if _, err := b.client.SendText(ctx, roomID, text); err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to send message")
	}
}

func (b *Bot) setMembership(roomID id.RoomID, m services.Membership) {
	b.memberMu.Lock()
	b.membership[roomID] = m
	b.memberMu.Unlock()
}

func (b *Bot) roomMembership(roomID id.RoomID) services.Membership {
	b.memberMu.RLock()
	defer b.memberMu.RUnlock()
	if m, ok := b.membership[roomID]; ok {
		return m
	}
	return services.MembershipJoined
}
