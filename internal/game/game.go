package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/skirmish/internal/combat"
	"github.com/samdwyer/skirmish/internal/entity"
	"github.com/samdwyer/skirmish/internal/gamedata"
	"github.com/samdwyer/skirmish/internal/telemetry"
	"github.com/samdwyer/skirmish/internal/ui"
	"github.com/samdwyer/skirmish/internal/world"
)

// Game holds the entire game state.
type Game struct {
	cfg      Config
	screen   *ui.Screen
	renderer *ui.Renderer
	catalog  *gamedata.Catalog
	field    *world.Field
	explorer *entity.Explorer
	battle   *Battle
	rng      *rand.Rand
	logger   *zap.Logger

	state      State
	status     string
	encounters int
	running    bool
}

// New creates a new game instance.
func New(cfg Config, logger *zap.Logger) (*Game, error) {
	catalog, err := gamedata.LoadCatalog()
	if err != nil {
		return nil, err
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}

	g := newGame(cfg, logger, catalog, newLoopTimer(screen, logger))
	g.screen = screen
	g.renderer = ui.NewRenderer(screen)
	return g, nil
}

// newGame wires everything except the terminal.
func newGame(cfg Config, logger *zap.Logger, catalog *gamedata.Catalog, timer combat.Timer) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		cfg:     cfg,
		catalog: catalog,
		rng:     rand.New(rand.NewSource(seed)),
		logger:  logger,
		state:   StateExplore,
		status:  "Arrows to walk, q to quit.",
		running: true,
	}
	g.battle = NewBattle(BattleConfig{
		Timer:           timer,
		Rand:            g.rng,
		TurnDelay:       cfg.TurnDelay,
		MessageDuration: cfg.MessageDuration,
		Logger:          logger,
		OnEnd:           g.onBattleEnded,
	})
	logger.Info("game created", zap.Int64("seed", seed))
	return g
}

// Run executes the main game loop.
func (g *Game) Run(ctx context.Context) error {
	g.setupField(ctx)

	for g.running {
		g.render()
		g.handleInput(ctx)
	}
	return nil
}

// setupField generates the field and places the explorer at its start.
func (g *Game) setupField(ctx context.Context) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.init")
	defer span.End()

	g.field = world.NewField(g.cfg.FieldWidth, g.cfg.FieldHeight, g.rng)
	g.field.Generate(ctx, g.cfg.EncounterZones)
	startX, startY := g.field.Start()
	g.explorer = entity.NewExplorer(startX, startY)
	span.SetAttributes(
		attribute.Int("field.zones", len(g.field.Zones)),
		attribute.Int("explorer.start_x", startX),
		attribute.Int("explorer.start_y", startY),
	)
}

func (g *Game) render() {
	switch g.state {
	case StateCombat:
		g.renderer.RenderBattle(g.battle.View())
	default:
		g.renderer.RenderField(g.field, g.explorer, g.status)
	}
}

// handleInput processes a single event.
func (g *Game) handleInput(ctx context.Context) {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventInterrupt:
		if f, ok := ev.Data().(timerFunc); ok {
			f()
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
		g.quit()
		return
	}

	if g.state == StateCombat {
		g.handleBattleKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyUp:
		g.tryMove(ctx, 0, -1)
	case tcell.KeyDown:
		g.tryMove(ctx, 0, 1)
	case tcell.KeyLeft:
		g.tryMove(ctx, -1, 0)
	case tcell.KeyRight:
		g.tryMove(ctx, 1, 0)
	}
}

// handleBattleKey maps keys to menu commands. Right is reserved.
func (g *Game) handleBattleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		g.battle.Navigate(DirectionUp)
	case tcell.KeyDown:
		g.battle.Navigate(DirectionDown)
	case tcell.KeyLeft, tcell.KeyEnter:
		g.battle.Confirm()
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			g.battle.Confirm()
		}
	}
}

// tryMove moves the explorer if the target tile is open, then checks for
// an encounter zone.
func (g *Game) tryMove(ctx context.Context, dx, dy int) {
	newX := g.explorer.X + dx
	newY := g.explorer.Y + dy

	if !g.field.IsPassable(newX, newY) {
		return
	}
	g.explorer.Move(dx, dy)

	if zone := g.field.ZoneAt(newX, newY); zone >= 0 {
		g.triggerEncounter(ctx, zone)
	}
}

// triggerEncounter moves the zone elsewhere and switches to combat.
func (g *Game) triggerEncounter(ctx context.Context, zone int) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "encounter.trigger")
	defer span.End()

	g.field.RelocateZone(zone)

	enc := g.catalog.Encounters.SpawnRandom(g.rng)
	heroes, enemies, err := BuildRosters(g.catalog, enc)
	if err != nil {
		g.logger.Error("spawning encounter", zap.Error(err))
		span.RecordError(err)
		return
	}
	span.SetAttributes(
		attribute.String("encounter.id", enc.ID),
		attribute.Int("encounter.number", g.encounters+1),
	)

	g.state = StateCombat
	start := g.battle.Start
	if g.encounters > 0 {
		start = g.battle.Resume
	}
	if err := start(ctx, heroes, enemies); err != nil {
		g.logger.Error("starting encounter", zap.String("encounter", enc.ID), zap.Error(err))
		span.RecordError(err)
		g.state = StateExplore
		return
	}
	g.encounters++
	g.status = "Encounter: " + enc.Name
}

// onBattleEnded returns to the field.
func (g *Game) onBattleEnded(outcome combat.Outcome) {
	g.state = StateExplore
	switch outcome {
	case combat.OutcomeVictory:
		g.status = "Victory! All enemies defeated!"
	case combat.OutcomeDefeat:
		g.status = "Your party has been defeated!"
	}
}

func (g *Game) quit() {
	if g.state == StateCombat {
		g.battle.Abort()
	}
	g.running = false
}

// Close restores the terminal. Call it once Run has returned.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
		g.screen = nil
	}
}

// timerFunc is a callback carried back to the loop by an interrupt event.
type timerFunc func()

// Interrupt posting retries while tcell's event queue is full.
const (
	postRetries = 10
	postBackoff = 20 * time.Millisecond
)

// interruptPoster is the part of ui.Screen the timer needs.
type interruptPoster interface {
	PostInterrupt(data any) error
}

// loopTimer runs callbacks on the game loop goroutine: the wall-clock timer
// only posts an interrupt, and handleInput executes it.
type loopTimer struct {
	poster   interruptPoster
	logger   *zap.Logger
	retries  uint
	interval time.Duration
}

func newLoopTimer(poster interruptPoster, logger *zap.Logger) loopTimer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return loopTimer{poster: poster, logger: logger, retries: postRetries, interval: postBackoff}
}

func (t loopTimer) AfterFunc(d time.Duration, f func()) func() bool {
	tm := time.AfterFunc(d, func() {
		t.post(timerFunc(f))
	})
	return tm.Stop
}

// post hands f to the loop, retrying while the event queue is full. A
// dropped callback stalls the battle, so the final error is logged.
func (t loopTimer) post(f timerFunc) error {
	_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
		return struct{}{}, t.poster.PostInterrupt(f)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(t.interval)),
		backoff.WithMaxTries(t.retries),
	)
	if err != nil {
		t.logger.Error("timer callback dropped",
			zap.Uint("attempts", t.retries),
			zap.Error(err),
		)
	}
	return err
}
