package application

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bnema/qrchat-cli/internal/domain"
	applog "github.com/bnema/qrchat-cli/internal/log"
	"github.com/bnema/qrchat-cli/internal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval = time.Second
	DefaultTickTimeout  = 10 * time.Second
)

var ErrLoopRunning = errors.New("reconciliation loop already running")

// Evictor performs the local cleanup after the server dropped this client.
type Evictor interface {
	ForceLeave(ctx context.Context, generation uint64) bool
}

type ReconcilerOptions struct {
	Interval    time.Duration
	TickTimeout time.Duration
}

// Reconciler polls the gateway and keeps State in line with the server. It
// is the only component that decides the client is no longer a member.
type Reconciler struct {
	gateway  ports.Gateway
	sessions *Sessions
	state    *State
	evictor  Evictor

	interval    time.Duration
	tickTimeout time.Duration

	ticks   atomic.Uint64
	running atomic.Bool
}

type TickReport struct {
	Tick        uint64
	Joined      bool
	RoomsErr    error
	MessagesErr error
	PresenceErr error
	Evicted     bool
}

func (r TickReport) Err() error {
	return errors.Join(r.RoomsErr, r.MessagesErr, r.PresenceErr)
}

func NewReconciler(gateway ports.Gateway, sessions *Sessions, state *State, evictor Evictor, opts ReconcilerOptions) *Reconciler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.TickTimeout <= 0 {
		opts.TickTimeout = DefaultTickTimeout
	}

	return &Reconciler{
		gateway:     gateway,
		sessions:    sessions,
		state:       state,
		evictor:     evictor,
		interval:    opts.Interval,
		tickTimeout: opts.TickTimeout,
	}
}

// Run ticks immediately, then every interval and after each membership
// change, until ctx is done. Ticks never overlap: firings that arrive while a
// tick is running are dropped by the ticker.
func (r *Reconciler) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer r.running.Store(false)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick(ctx)
		case <-r.sessions.Changes():
			r.Tick(ctx)
		}
	}
}

// Tick runs one full refresh. Transport errors are reported and logged but
// never stop the loop; a failed piece keeps its previous value.
func (r *Reconciler) Tick(ctx context.Context) TickReport {
	if err := ctx.Err(); err != nil {
		return TickReport{RoomsErr: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.tickTimeout)
	defer cancel()

	tick := r.ticks.Add(1)
	base := applog.Ctx(ctx)
	l := base.With().Uint64(applog.FieldTick, tick).Logger()

	session, generation := r.sessions.Snapshot()
	report := TickReport{Tick: tick, Joined: session.Joined()}

	var (
		rooms    []domain.RoomSummary
		messages []domain.Message
		presence domain.Presence
	)

	var g errgroup.Group
	g.Go(func() error {
		rooms, report.RoomsErr = r.gateway.ListRooms(ctx)
		return report.RoomsErr
	})
	if report.Joined {
		g.Go(func() error {
			messages, report.MessagesErr = r.gateway.ListMessages(ctx, session.RoomID)
			return report.MessagesErr
		})
		g.Go(func() error {
			presence, report.PresenceErr = r.gateway.ListPresence(ctx, session.RoomID)
			return report.PresenceErr
		})
	}
	_ = g.Wait()

	r.logFailures(&l, session, report)

	if report.Joined && report.PresenceErr == nil && !presence.Has(session.SelfID) {
		report.Evicted = r.evictor.ForceLeave(applog.WithLogger(ctx, l), generation)
	}

	upd := snapshotUpdate{
		Tick:       tick,
		Rooms:      rooms,
		HasRooms:   report.RoomsErr == nil,
		Generation: generation,
	}
	if report.Joined && !report.Evicted {
		upd.Messages, upd.HasMessages = messages, report.MessagesErr == nil
		upd.Presence, upd.HasPresence = presence, report.PresenceErr == nil
	}
	if !r.state.publish(r.sessions, upd) {
		l.Debug().Uint64(applog.FieldGeneration, generation).Msg("membership changed during tick, room data discarded")
	}

	return report
}

func (r *Reconciler) logFailures(l *zerolog.Logger, session domain.Session, report TickReport) {
	if report.RoomsErr != nil {
		l.Warn().Err(report.RoomsErr).Str(applog.FieldOp, "list rooms").Msg("poll failed")
	}
	if report.MessagesErr != nil {
		l.Warn().Err(report.MessagesErr).Str(applog.FieldOp, "list messages").Str(applog.FieldRoomID, string(session.RoomID)).Msg("poll failed")
	}
	if report.PresenceErr != nil {
		l.Warn().Err(report.PresenceErr).Str(applog.FieldOp, "list presence").Str(applog.FieldRoomID, string(session.RoomID)).Msg("poll failed")
	}
}
