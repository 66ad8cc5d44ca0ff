package combat

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/samdwyer/skirmish/internal/entity"
	"github.com/samdwyer/skirmish/internal/telemetry"
)

// DefaultDelay is the pause after each resolved action before the next turn.
const DefaultDelay = 3 * time.Second

var (
	// ErrEmptyRoster is returned when a battle starts without heroes or enemies.
	ErrEmptyRoster = errors.New("combat: both rosters need at least one unit")
	// ErrNotAwaitingPlayer is returned for a player action outside a hero's turn.
	ErrNotAwaitingPlayer = errors.New("combat: not waiting for a player action")
	// ErrInvalidTarget is returned when the target index is outside the enemy roster.
	ErrInvalidTarget = errors.New("combat: invalid target index")
	// ErrUnknownAction is returned for an Action value that has no resolution.
	ErrUnknownAction = errors.New("combat: unknown action")
)

// Phase is the scheduler's state.
type Phase int

const (
	// PhaseIdle - no battle has started
	PhaseIdle Phase = iota
	// PhaseAwaitingActor - ready to find the next living unit
	PhaseAwaitingActor
	// PhasePlayerTurn - suspended until the player picks an action and target
	PhasePlayerTurn
	// PhaseEnemyTurn - the AI is choosing a target
	PhaseEnemyTurn
	// PhaseResolving - an action resolved; waiting out the pacing delay
	PhaseResolving
	// PhaseEnded - the battle is over and the rosters are released
	PhaseEnded
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingActor:
		return "awaiting_actor"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseResolving:
		return "resolving"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Outcome is how a battle finished.
type Outcome int

const (
	// OutcomeNone - the battle is running, was aborted or never started
	OutcomeNone Outcome = iota
	// OutcomeVictory - every enemy is dead
	OutcomeVictory
	// OutcomeDefeat - every hero is dead
	OutcomeDefeat
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Evaluate is the termination predicate. Defeat is checked before victory.
func Evaluate(heroes, enemies []*entity.Unit) Outcome {
	if countAlive(heroes) == 0 {
		return OutcomeDefeat
	}
	if countAlive(enemies) == 0 {
		return OutcomeVictory
	}
	return OutcomeNone
}

func countAlive(units []*entity.Unit) int {
	count := 0
	for _, u := range units {
		if u.IsAlive() {
			count++
		}
	}
	return count
}

// Config holds the scheduler's collaborators.
type Config struct {
	Listener Listener      // Outbound notifications; nil means NopListener
	Timer    Timer         // Required; drives the pacing delay
	Rand     *rand.Rand    // AI target choice; nil seeds from the clock
	Delay    time.Duration // Pause after each action; 0 means DefaultDelay
	Logger   *zap.Logger   // Combat log; nil means no logging

	// MeterProvider receives the combat metrics; nil means the global provider.
	MeterProvider metric.MeterProvider
}

// Scheduler runs one battle at a time: it walks the living units in a fixed
// order, hands hero turns to the player and resolves enemy turns itself.
//
// Scheduler is not safe for concurrent use. Every method and every Timer
// callback must run on the same goroutine.
type Scheduler struct {
	listener Listener
	timer    Timer
	rng      *rand.Rand
	delay    time.Duration
	logger   *zap.Logger
	metrics  instruments

	heroes  []*entity.Unit
	enemies []*entity.Unit
	units   []*entity.Unit
	index   int
	phase   Phase
	outcome Outcome
	turn    int
	id      uuid.UUID

	// ctx is the context the battle was started with; timer callbacks use it.
	ctx        context.Context
	generation uint64
	stop       func() bool
}

// NewScheduler creates an idle scheduler.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Timer == nil {
		panic("combat: Config.Timer is required")
	}
	s := &Scheduler{
		listener: cfg.Listener,
		timer:    cfg.Timer,
		rng:      cfg.Rand,
		delay:    cfg.Delay,
		logger:   cfg.Logger,
		metrics:  newInstruments(cfg.MeterProvider),
		index:    -1,
		ctx:      context.Background(),
	}
	if s.listener == nil {
		s.listener = NopListener{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.delay <= 0 {
		s.delay = DefaultDelay
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Start begins a battle between the given rosters. Units fight in roster
// order, heroes first. Every unit should already be bound to its menu slot.
// The first turn runs on the next call to Advance.
//
// Starting while another battle is running discards that battle.
func (s *Scheduler) Start(ctx context.Context, heroes, enemies []*entity.Unit) error {
	if len(heroes) == 0 || len(enemies) == 0 {
		return ErrEmptyRoster
	}
	s.invalidatePending()

	s.heroes = append([]*entity.Unit(nil), heroes...)
	s.enemies = append([]*entity.Unit(nil), enemies...)
	s.units = make([]*entity.Unit, 0, len(heroes)+len(enemies))
	s.units = append(s.units, s.heroes...)
	s.units = append(s.units, s.enemies...)
	s.index = -1
	s.phase = PhaseAwaitingActor
	s.outcome = OutcomeNone
	s.turn = 0
	s.id = uuid.New()
	s.ctx = ctx

	tracer := telemetry.Tracer("combat")
	_, span := tracer.Start(ctx, "combat.start")
	span.SetAttributes(
		attribute.String("battle.id", s.id.String()),
		attribute.Int("hero_count", len(s.heroes)),
		attribute.Int("enemy_count", len(s.enemies)),
	)
	span.End()

	s.logger.Info("battle started",
		zap.String("battle_id", s.id.String()),
		zap.Strings("heroes", labels(s.heroes)),
		zap.Strings("enemies", labels(s.enemies)),
	)
	return nil
}

// Resume restarts the encounter with fresh rosters. It is Start under the
// name the host uses when it wakes a suspended encounter.
func (s *Scheduler) Resume(ctx context.Context, heroes, enemies []*entity.Unit) error {
	return s.Start(ctx, heroes, enemies)
}

// Advance runs the termination check and then hands the turn to the next
// living unit. It is ignored unless the scheduler is awaiting an actor.
func (s *Scheduler) Advance(ctx context.Context) {
	if s.phase != PhaseAwaitingActor {
		s.logger.Debug("advance ignored", zap.Stringer("phase", s.phase))
		return
	}

	if outcome := Evaluate(s.heroes, s.enemies); outcome != OutcomeNone {
		s.end(ctx, outcome)
		return
	}

	// At least one unit is alive, so this terminates.
	for {
		s.index++
		if s.index >= len(s.units) {
			s.index = 0
		}
		if s.units[s.index].IsAlive() {
			break
		}
	}

	actor := s.units[s.index]
	if actor.IsPlayer() {
		s.phase = PhasePlayerTurn
		s.listener.ActorIsPlayer(s.index)
		return
	}

	s.phase = PhaseEnemyTurn
	target := s.pickHeroTarget()
	if target == nil {
		s.end(ctx, OutcomeDefeat)
		return
	}
	s.resolve(ctx, actor, target, ActionAttack)
	s.scheduleAdvance()
}

// ReceivePlayerAction resolves the acting hero's choice against the enemy at
// targetIndex and schedules the next turn. Targeting a dead enemy wastes the
// turn. It returns ErrNotAwaitingPlayer outside a hero's turn.
func (s *Scheduler) ReceivePlayerAction(ctx context.Context, action Action, targetIndex int) error {
	if s.phase != PhasePlayerTurn {
		s.logger.Debug("player action ignored",
			zap.Stringer("phase", s.phase),
			zap.Stringer("action", action),
		)
		return ErrNotAwaitingPlayer
	}
	if !action.Valid() {
		return ErrUnknownAction
	}
	if targetIndex < 0 || targetIndex >= len(s.enemies) {
		return ErrInvalidTarget
	}

	s.resolve(ctx, s.units[s.index], s.enemies[targetIndex], action)
	s.scheduleAdvance()
	return nil
}

// Abort tears down a running battle without an outcome. Pending turns are
// discarded and the listener is not notified.
func (s *Scheduler) Abort() {
	if s.phase == PhaseIdle || s.phase == PhaseEnded {
		return
	}
	s.logger.Info("battle aborted",
		zap.String("battle_id", s.id.String()),
		zap.Int("turns", s.turn),
	)
	s.invalidatePending()
	s.release()
	s.phase = PhaseEnded
	s.outcome = OutcomeNone
}

// resolve applies one action and reports it.
func (s *Scheduler) resolve(ctx context.Context, actor, target *entity.Unit, action Action) {
	s.phase = PhaseResolving

	tracer := telemetry.Tracer("combat")
	ctx, span := tracer.Start(ctx, "combat.turn")
	defer span.End()

	result := Resolve(actor, target, action)
	s.turn++

	span.SetAttributes(
		attribute.String("battle.id", s.id.String()),
		attribute.String("actor", actor.Kind),
		attribute.String("side", actor.Side.String()),
		attribute.String("action", action.String()),
		attribute.String("target", target.Kind),
		attribute.Int("turn", s.turn),
		attribute.Int("damage", result.Dealt),
		attribute.Bool("landed", result.Landed),
	)

	s.metrics.turns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("side", actor.Side.String()),
		attribute.String("action", action.String()),
	))
	if result.Landed {
		s.metrics.damage.Record(ctx, int64(result.Dealt))
	}

	s.logger.Info("turn resolved",
		zap.String("battle_id", s.id.String()),
		zap.Int("turn", s.turn),
		zap.String("actor", actor.Kind),
		zap.Stringer("action", action),
		zap.String("target", target.Kind),
		zap.Bool("landed", result.Landed),
		zap.Int("damage", result.Dealt),
		zap.Int("target_hp", target.HP),
	)
	if result.Killed {
		s.logger.Info("unit killed",
			zap.String("battle_id", s.id.String()),
			zap.String("unit", target.Kind),
			zap.Stringer("side", target.Side),
		)
	}

	if msg := result.Message(); msg != "" {
		s.listener.Message(msg)
	}
}

// scheduleAdvance arms the pacing delay. A callback that fires after the
// battle ended or restarted is dropped.
func (s *Scheduler) scheduleAdvance() {
	gen := s.generation
	s.stop = s.timer.AfterFunc(s.delay, func() {
		if gen != s.generation || s.phase != PhaseResolving {
			return
		}
		s.stop = nil
		s.phase = PhaseAwaitingActor
		s.Advance(s.ctx)
	})
}

func (s *Scheduler) invalidatePending() {
	s.generation++
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// pickHeroTarget returns a uniformly random living hero, or nil.
func (s *Scheduler) pickHeroTarget() *entity.Unit {
	living := make([]*entity.Unit, 0, len(s.heroes))
	for _, h := range s.heroes {
		if h.IsAlive() {
			living = append(living, h)
		}
	}
	if len(living) == 0 {
		return nil
	}
	return living[s.rng.Intn(len(living))]
}

// end finishes the battle, releases the rosters and notifies the listener.
func (s *Scheduler) end(ctx context.Context, outcome Outcome) {
	s.invalidatePending()

	tracer := telemetry.Tracer("combat")
	_, span := tracer.Start(ctx, "combat.end")
	span.SetAttributes(
		attribute.String("battle.id", s.id.String()),
		attribute.String("outcome", outcome.String()),
		attribute.Int("turns_taken", s.turn),
		attribute.Int("hero_hp_remaining", totalHP(s.heroes)),
	)
	span.End()

	s.metrics.battles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome.String()),
	))
	s.logger.Info("battle ended",
		zap.String("battle_id", s.id.String()),
		zap.Stringer("outcome", outcome),
		zap.Int("turns", s.turn),
	)

	s.release()
	s.phase = PhaseEnded
	s.outcome = outcome
	s.listener.BattleEnded(outcome)
}

func (s *Scheduler) release() {
	s.heroes = nil
	s.enemies = nil
	s.units = nil
	s.index = -1
}

// Phase returns the current state.
func (s *Scheduler) Phase() Phase { return s.phase }

// Outcome returns how the last battle ended, or OutcomeNone.
func (s *Scheduler) Outcome() Outcome { return s.outcome }

// Heroes returns the hero roster of the running battle.
func (s *Scheduler) Heroes() []*entity.Unit { return s.heroes }

// Enemies returns the enemy roster of the running battle.
func (s *Scheduler) Enemies() []*entity.Unit { return s.enemies }

// Units returns every unit in turn order.
func (s *Scheduler) Units() []*entity.Unit { return s.units }

// Actor returns the unit whose turn it is, or nil between battles.
func (s *Scheduler) Actor() *entity.Unit {
	if s.index < 0 || s.index >= len(s.units) {
		return nil
	}
	return s.units[s.index]
}

// Turn returns the number of actions resolved in this battle.
func (s *Scheduler) Turn() int { return s.turn }

// ID returns the id of the current or last battle.
func (s *Scheduler) ID() uuid.UUID { return s.id }

// Delay returns the pacing delay between turns.
func (s *Scheduler) Delay() time.Duration { return s.delay }

func totalHP(units []*entity.Unit) int {
	total := 0
	for _, u := range units {
		total += u.HP
	}
	return total
}

func labels(units []*entity.Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Label()
	}
	return out
}
