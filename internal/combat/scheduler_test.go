package combat

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/samdwyer/skirmish/internal/entity"
)

// manualTimer queues callbacks until the test fires them.
type manualTimer struct {
	pending []*pendingCall
	delays  []time.Duration
}

type pendingCall struct {
	f       func()
	stopped bool
	fired   bool
}

func (m *manualTimer) AfterFunc(d time.Duration, f func()) func() bool {
	call := &pendingCall{f: f}
	m.pending = append(m.pending, call)
	m.delays = append(m.delays, d)
	return func() bool {
		if call.fired || call.stopped {
			return false
		}
		call.stopped = true
		return true
	}
}

// fire runs the oldest live callback and reports whether one ran.
func (m *manualTimer) fire() bool {
	for len(m.pending) > 0 {
		call := m.pending[0]
		m.pending = m.pending[1:]
		if call.stopped {
			continue
		}
		call.fired = true
		call.f()
		return true
	}
	return false
}

// fireStale runs the oldest callback even if it was stopped, the way a timer
// that already posted its event would.
func (m *manualTimer) fireStale() bool {
	if len(m.pending) == 0 {
		return false
	}
	call := m.pending[0]
	m.pending = m.pending[1:]
	call.fired = true
	call.f()
	return true
}

// recordingListener keeps every notification.
type recordingListener struct {
	messages []string
	actors   []int
	outcomes []Outcome
}

func (r *recordingListener) Message(text string)         { r.messages = append(r.messages, text) }
func (r *recordingListener) ActorIsPlayer(heroIndex int) { r.actors = append(r.actors, heroIndex) }
func (r *recordingListener) BattleEnded(outcome Outcome) { r.outcomes = append(r.outcomes, outcome) }

func newRosters() (heroes, enemies []*entity.Unit) {
	heroes = []*entity.Unit{
		entity.NewHero("Warrior", 100, 70),
		entity.NewHero("Mage", 80, 30),
	}
	enemies = []*entity.Unit{
		entity.NewEnemy("GrDragon", 55, 6),
		entity.NewEnemy("Skeleton", 13, 2),
	}
	return heroes, enemies
}

func newTestScheduler(seed int64) (*Scheduler, *manualTimer, *recordingListener) {
	timer := &manualTimer{}
	listener := &recordingListener{}
	s := NewScheduler(Config{
		Listener: listener,
		Timer:    timer,
		Rand:     rand.New(rand.NewSource(seed)),
		Delay:    time.Second,
	})
	return s, timer, listener
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{PhaseIdle, "idle"},
		{PhaseAwaitingActor, "awaiting_actor"},
		{PhasePlayerTurn, "player_turn"},
		{PhaseEnemyTurn, "enemy_turn"},
		{PhaseResolving, "resolving"},
		{PhaseEnded, "ended"},
		{Phase(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.expected {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.expected)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{OutcomeNone, "none"},
		{OutcomeVictory, "victory"},
		{OutcomeDefeat, "defeat"},
		{Outcome(7), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.expected {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.expected)
		}
	}
}

func TestEvaluate(t *testing.T) {
	heroes, enemies := newRosters()

	if got := Evaluate(heroes, enemies); got != OutcomeNone {
		t.Errorf("Evaluate() fresh = %v, want none", got)
	}

	enemies[0].TakeDamage(1000)
	if got := Evaluate(heroes, enemies); got != OutcomeNone {
		t.Errorf("Evaluate() one enemy left = %v, want none", got)
	}

	heroes[0].TakeDamage(1000)
	heroes[1].TakeDamage(1000)
	if got := Evaluate(heroes, enemies); got != OutcomeDefeat {
		t.Errorf("Evaluate() all heroes dead = %v, want defeat", got)
	}

	enemies[1].TakeDamage(1000)
	if got := Evaluate(heroes, enemies); got != OutcomeDefeat {
		t.Errorf("Evaluate() everyone dead = %v, want defeat", got)
	}
}

func TestStartRejectsEmptyRoster(t *testing.T) {
	s, _, _ := newTestScheduler(1)
	heroes, enemies := newRosters()

	if err := s.Start(context.Background(), nil, enemies); !errors.Is(err, ErrEmptyRoster) {
		t.Errorf("Start(no heroes) error = %v, want ErrEmptyRoster", err)
	}
	if err := s.Start(context.Background(), heroes, nil); !errors.Is(err, ErrEmptyRoster) {
		t.Errorf("Start(no enemies) error = %v, want ErrEmptyRoster", err)
	}
	if s.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", s.Phase())
	}
}

func TestStart(t *testing.T) {
	s, _, _ := newTestScheduler(1)
	heroes, enemies := newRosters()

	if err := s.Start(context.Background(), heroes, enemies); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if s.Phase() != PhaseAwaitingActor {
		t.Errorf("Phase() = %v, want awaiting_actor", s.Phase())
	}
	if s.Actor() != nil {
		t.Error("no actor should be chosen before the first Advance")
	}

	units := s.Units()
	want := []*entity.Unit{heroes[0], heroes[1], enemies[0], enemies[1]}
	if len(units) != len(want) {
		t.Fatalf("Units() len = %d, want %d", len(units), len(want))
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("Units()[%d] = %s, want %s", i, units[i].Kind, want[i].Kind)
		}
	}
}

func TestPlayerTurnSuspends(t *testing.T) {
	s, timer, listener := newTestScheduler(1)
	heroes, enemies := newRosters()
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)

	s.Advance(ctx)

	if s.Phase() != PhasePlayerTurn {
		t.Fatalf("Phase() = %v, want player_turn", s.Phase())
	}
	if s.Actor() != heroes[0] {
		t.Errorf("Actor() = %v, want Warrior", s.Actor().Kind)
	}
	if len(listener.actors) != 1 || listener.actors[0] != 0 {
		t.Errorf("ActorIsPlayer calls = %v, want [0]", listener.actors)
	}
	if len(timer.pending) != 0 {
		t.Error("player turn should not arm a timer")
	}

	// Advancing again while the player decides changes nothing
	s.Advance(ctx)
	if s.Phase() != PhasePlayerTurn || len(listener.actors) != 1 {
		t.Errorf("Advance during player turn changed state: phase=%v actors=%v", s.Phase(), listener.actors)
	}
}

func TestVictoryScenario(t *testing.T) {
	s, timer, listener := newTestScheduler(1)
	heroes, enemies := newRosters()
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)

	// Warrior attacks GrDragon
	s.Advance(ctx)
	if err := s.ReceivePlayerAction(ctx, ActionAttack, 0); err != nil {
		t.Fatalf("ReceivePlayerAction() error: %v", err)
	}
	if enemies[0].HP != 0 || enemies[0].IsAlive() {
		t.Errorf("GrDragon hp=%d alive=%v, want 0 false", enemies[0].HP, enemies[0].IsAlive())
	}
	if s.Phase() != PhaseResolving {
		t.Errorf("Phase() = %v, want resolving", s.Phase())
	}
	if timer.delays[0] != time.Second {
		t.Errorf("delay = %v, want 1s", timer.delays[0])
	}

	// Mage casts at Skeleton
	timer.fire()
	if s.Actor() != heroes[1] || s.Phase() != PhasePlayerTurn {
		t.Fatalf("after delay actor=%v phase=%v, want Mage player_turn", s.Actor(), s.Phase())
	}
	if err := s.ReceivePlayerAction(ctx, ActionMagic, 1); err != nil {
		t.Fatalf("ReceivePlayerAction() error: %v", err)
	}
	if enemies[1].HP != 0 || enemies[1].IsAlive() {
		t.Errorf("Skeleton hp=%d alive=%v, want 0 false", enemies[1].HP, enemies[1].IsAlive())
	}

	timer.fire()
	if s.Phase() != PhaseEnded || s.Outcome() != OutcomeVictory {
		t.Fatalf("phase=%v outcome=%v, want ended victory", s.Phase(), s.Outcome())
	}
	if len(listener.outcomes) != 1 || listener.outcomes[0] != OutcomeVictory {
		t.Errorf("BattleEnded calls = %v, want [victory]", listener.outcomes)
	}
	if s.Heroes() != nil || s.Enemies() != nil || s.Units() != nil {
		t.Error("rosters should be released when the battle ends")
	}

	wantMessages := []string{
		"Warrior attacks GrDragon for 70 damage!",
		"Mage attacks Skeleton with a spell for 60 damage!",
	}
	if len(listener.messages) != len(wantMessages) {
		t.Fatalf("messages = %v", listener.messages)
	}
	for i, want := range wantMessages {
		if listener.messages[i] != want {
			t.Errorf("message %d = %q, want %q", i, listener.messages[i], want)
		}
	}
	if s.Turn() != 2 {
		t.Errorf("Turn() = %d, want 2", s.Turn())
	}
}

func TestEnemyTurnAttacksOnlyLivingHero(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		s, timer, listener := newTestScheduler(seed)
		heroes, enemies := newRosters()
		heroes[0].TakeDamage(1000)
		ctx := context.Background()
		s.Start(ctx, heroes, enemies)

		// Mage acts first because Warrior is dead
		s.Advance(ctx)
		if s.Actor() != heroes[1] {
			t.Fatalf("seed %d: first actor = %s, want Mage", seed, s.Actor().Kind)
		}
		if listener.actors[0] != 1 {
			t.Errorf("seed %d: ActorIsPlayer(%d), want 1", seed, listener.actors[0])
		}
		s.ReceivePlayerAction(ctx, ActionAttack, 1) // kills Skeleton

		// GrDragon's turn must hit Mage
		timer.fire()
		if s.Actor() != enemies[0] {
			t.Fatalf("seed %d: actor = %s, want GrDragon", seed, s.Actor().Kind)
		}
		if s.Phase() != PhaseResolving {
			t.Errorf("seed %d: phase = %v, want resolving", seed, s.Phase())
		}
		if heroes[1].HP != 74 {
			t.Errorf("seed %d: Mage hp = %d, want 74", seed, heroes[1].HP)
		}
		last := listener.messages[len(listener.messages)-1]
		if last != "GrDragon attacks Mage for 6 damage!" {
			t.Errorf("seed %d: message = %q", seed, last)
		}

		// Skeleton is dead, so the turn comes back to Mage
		timer.fire()
		if s.Actor() != heroes[1] || s.Phase() != PhasePlayerTurn {
			t.Errorf("seed %d: actor=%s phase=%v, want Mage player_turn", seed, s.Actor().Kind, s.Phase())
		}
	}
}

func TestDefeatScenario(t *testing.T) {
	s, timer, listener := newTestScheduler(3)
	heroes := []*entity.Unit{entity.NewHero("Mage", 5, 1)}
	enemies := []*entity.Unit{entity.NewEnemy("GrDragon", 55, 6)}
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)

	s.Advance(ctx)
	s.ReceivePlayerAction(ctx, ActionAttack, 0)
	timer.fire() // GrDragon kills Mage
	if heroes[0].IsAlive() {
		t.Fatal("Mage should be dead")
	}
	timer.fire()

	if s.Outcome() != OutcomeDefeat {
		t.Errorf("Outcome() = %v, want defeat", s.Outcome())
	}
	if len(listener.outcomes) != 1 || listener.outcomes[0] != OutcomeDefeat {
		t.Errorf("BattleEnded calls = %v, want [defeat]", listener.outcomes)
	}
}

func TestTerminationCheckedBeforeFirstTurn(t *testing.T) {
	s, _, listener := newTestScheduler(1)
	heroes, enemies := newRosters()
	for _, e := range enemies {
		e.TakeDamage(1000)
	}
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)
	s.Advance(ctx)

	if s.Outcome() != OutcomeVictory {
		t.Errorf("Outcome() = %v, want victory", s.Outcome())
	}
	if len(listener.actors) != 0 {
		t.Errorf("no hero should get a turn, got %v", listener.actors)
	}
}

func TestReceivePlayerActionOutsidePlayerTurn(t *testing.T) {
	s, timer, _ := newTestScheduler(1)
	heroes, enemies := newRosters()
	ctx := context.Background()

	if err := s.ReceivePlayerAction(ctx, ActionAttack, 0); !errors.Is(err, ErrNotAwaitingPlayer) {
		t.Errorf("idle: error = %v, want ErrNotAwaitingPlayer", err)
	}

	s.Start(ctx, heroes, enemies)
	s.Advance(ctx)
	s.ReceivePlayerAction(ctx, ActionAttack, 1)

	// Second confirm during the pacing delay is rejected
	if err := s.ReceivePlayerAction(ctx, ActionAttack, 0); !errors.Is(err, ErrNotAwaitingPlayer) {
		t.Errorf("resolving: error = %v, want ErrNotAwaitingPlayer", err)
	}
	if enemies[0].HP != 55 {
		t.Errorf("GrDragon hp = %d, rejected action should not resolve", enemies[0].HP)
	}
	if len(timer.pending) != 1 {
		t.Errorf("pending timers = %d, want 1", len(timer.pending))
	}
}

func TestReceivePlayerActionValidation(t *testing.T) {
	s, _, _ := newTestScheduler(1)
	heroes, enemies := newRosters()
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)
	s.Advance(ctx)

	if err := s.ReceivePlayerAction(ctx, ActionAttack, 2); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("target 2: error = %v, want ErrInvalidTarget", err)
	}
	if err := s.ReceivePlayerAction(ctx, ActionAttack, -1); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("target -1: error = %v, want ErrInvalidTarget", err)
	}
	if err := s.ReceivePlayerAction(ctx, Action(9), 0); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("action 9: error = %v, want ErrUnknownAction", err)
	}
	if s.Phase() != PhasePlayerTurn {
		t.Errorf("Phase() = %v, rejected actions should keep the player turn", s.Phase())
	}
}

func TestAttackOnDeadTargetWastesTurn(t *testing.T) {
	s, timer, listener := newTestScheduler(1)
	heroes, enemies := newRosters()
	enemies[1].TakeDamage(1000)
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)
	s.Advance(ctx)

	if err := s.ReceivePlayerAction(ctx, ActionAttack, 1); err != nil {
		t.Fatalf("ReceivePlayerAction() error: %v", err)
	}
	if len(listener.messages) != 0 {
		t.Errorf("attack on dead unit should not announce, got %v", listener.messages)
	}
	if !timer.fire() {
		t.Fatal("turn should still advance after the delay")
	}
	if s.Actor() != heroes[1] {
		t.Errorf("Actor() = %s, want Mage", s.Actor().Kind)
	}
}

func TestStaleTimerAfterEndIsIgnored(t *testing.T) {
	s, timer, listener := newTestScheduler(1)
	heroes, enemies := newRosters()
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)
	s.Advance(ctx)
	s.ReceivePlayerAction(ctx, ActionAttack, 0)

	// The battle restarts while the delay is pending
	freshHeroes, freshEnemies := newRosters()
	s.Resume(ctx, freshHeroes, freshEnemies)
	if !timer.fireStale() {
		t.Fatal("expected a pending callback")
	}
	if s.Phase() != PhaseAwaitingActor || s.Actor() != nil {
		t.Errorf("stale callback advanced the new battle: phase=%v", s.Phase())
	}
	if len(listener.actors) != 1 {
		t.Errorf("ActorIsPlayer calls = %v, want only the first battle's", listener.actors)
	}
}

func TestAbort(t *testing.T) {
	s, timer, listener := newTestScheduler(1)
	heroes, enemies := newRosters()
	ctx := context.Background()
	s.Start(ctx, heroes, enemies)
	s.Advance(ctx)
	s.ReceivePlayerAction(ctx, ActionAttack, 1)

	s.Abort()
	if s.Phase() != PhaseEnded || s.Outcome() != OutcomeNone {
		t.Errorf("phase=%v outcome=%v, want ended none", s.Phase(), s.Outcome())
	}
	if timer.fire() {
		t.Error("pending turn should be cancelled")
	}
	if len(listener.outcomes) != 0 {
		t.Errorf("Abort should not report an outcome, got %v", listener.outcomes)
	}

	// Aborting twice is harmless
	s.Abort()
}

func TestFullBattleTerminates(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		s, timer, listener := newTestScheduler(seed)
		heroes, enemies := newRosters()
		ctx := context.Background()
		s.Start(ctx, heroes, enemies)
		s.Advance(ctx)

		for steps := 0; s.Phase() != PhaseEnded; steps++ {
			if steps > 100 {
				t.Fatalf("seed %d: battle did not finish", seed)
			}
			switch s.Phase() {
			case PhasePlayerTurn:
				target := 0
				if !enemies[0].IsAlive() {
					target = 1
				}
				if err := s.ReceivePlayerAction(ctx, ActionMagic, target); err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
			case PhaseResolving:
				timer.fire()
			default:
				t.Fatalf("seed %d: unexpected phase %v", seed, s.Phase())
			}
			for _, u := range append(append([]*entity.Unit{}, heroes...), enemies...) {
				if u.IsAlive() != (u.HP > 0) {
					t.Fatalf("seed %d: %s alive=%v hp=%d", seed, u.Kind, u.IsAlive(), u.HP)
				}
			}
		}

		if len(listener.outcomes) != 1 || listener.outcomes[0] != OutcomeVictory {
			t.Errorf("seed %d: outcomes = %v, want [victory]", seed, listener.outcomes)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		action Action
		hp     int
	}{
		{ActionAttack, 70},
		{ActionMagic, 40},
	}
	for _, tt := range tests {
		mage := entity.NewHero("Mage", 80, 30)
		target := entity.NewEnemy("Golem", 100, 1)
		result := Resolve(mage, target, tt.action)
		if target.HP != tt.hp {
			t.Errorf("%v: target hp = %d, want %d", tt.action, target.HP, tt.hp)
		}
		if result.Damage != PreviewDamage(mage, tt.action) {
			t.Errorf("%v: damage %d differs from preview %d", tt.action, result.Damage, PreviewDamage(mage, tt.action))
		}
	}
}

func TestActionString(t *testing.T) {
	if ActionAttack.String() != "attack" || ActionMagic.String() != "magic" || Action(5).String() != "unknown" {
		t.Error("unexpected Action.String() values")
	}
	if !ActionAttack.Valid() || !ActionMagic.Valid() || Action(-1).Valid() {
		t.Error("unexpected Action.Valid() values")
	}
}
