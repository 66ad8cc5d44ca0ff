package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/skirmish/internal/combat"
	"github.com/samdwyer/skirmish/internal/entity"
	"github.com/samdwyer/skirmish/internal/menu"
	"github.com/samdwyer/skirmish/internal/ui"
)

// Direction is a menu navigation step.
type Direction int

const (
	// DirectionUp moves the cursor to the previous active entry.
	DirectionUp Direction = iota
	// DirectionDown moves the cursor to the next active entry.
	DirectionDown
)

// BattleConfig holds the collaborators of a Battle.
type BattleConfig struct {
	Timer           combat.Timer
	Rand            *rand.Rand
	TurnDelay       time.Duration
	MessageDuration time.Duration
	Logger          *zap.Logger
	OnEnd           func(outcome combat.Outcome) // Called once the battle is over
}

// Battle is the input side of an encounter. It owns the hero, action and
// enemy menus, relays player input to the scheduler and reacts to the
// scheduler's notifications.
type Battle struct {
	scheduler *combat.Scheduler
	timer     combat.Timer
	logger    *zap.Logger
	onEnd     func(combat.Outcome)

	heroMenu   *menu.Menu
	actionMenu *menu.Menu
	enemyMenu  *menu.Menu
	current    *menu.Menu
	action     combat.Action

	message         string
	messageDuration time.Duration
	messageGen      uint64
	hideMessage     func() bool

	ctx context.Context
}

// NewBattle creates an idle battle controller.
func NewBattle(cfg BattleConfig) *Battle {
	b := &Battle{
		timer:           cfg.Timer,
		logger:          cfg.Logger,
		onEnd:           cfg.OnEnd,
		messageDuration: cfg.MessageDuration,
		ctx:             context.Background(),
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.messageDuration <= 0 {
		b.messageDuration = 2 * time.Second
	}

	b.heroMenu = menu.NewHeroMenu()
	b.actionMenu = menu.NewActionMenu(b.onActionChosen)
	b.enemyMenu = menu.NewEnemyMenu(b.onTargetChosen)

	b.scheduler = combat.NewScheduler(combat.Config{
		Listener: b,
		Timer:    cfg.Timer,
		Rand:     cfg.Rand,
		Delay:    cfg.TurnDelay,
		Logger:   cfg.Logger,
	})
	return b
}

// Start begins a battle: the scheduler takes the rosters, the hero and
// enemy menus are rebuilt from them, and the first turn runs.
func (b *Battle) Start(ctx context.Context, heroes, enemies []*entity.Unit) error {
	return b.begin(ctx, heroes, enemies, b.scheduler.Start)
}

// Resume re-enters the encounter after a previous battle ended, with fresh
// rosters.
func (b *Battle) Resume(ctx context.Context, heroes, enemies []*entity.Unit) error {
	return b.begin(ctx, heroes, enemies, b.scheduler.Resume)
}

func (b *Battle) begin(ctx context.Context, heroes, enemies []*entity.Unit,
	start func(context.Context, []*entity.Unit, []*entity.Unit) error) error {
	// A rejected start leaves the running battle and its menus alone.
	if err := start(ctx, heroes, enemies); err != nil {
		return fmt.Errorf("starting battle: %w", err)
	}
	b.ctx = ctx
	b.resetMenus()
	b.clearMessage()
	b.heroMenu.Remap(heroes)
	b.enemyMenu.Remap(enemies)

	b.scheduler.Advance(ctx)
	return nil
}

// Abort tears the battle down without an outcome.
func (b *Battle) Abort() {
	b.scheduler.Abort()
	b.resetMenus()
	b.clearMessage()
}

// Navigate moves the cursor of the menu that currently takes input.
func (b *Battle) Navigate(dir Direction) error {
	if b.current == nil || !b.current.IsSelected() {
		return nil
	}
	var err error
	switch dir {
	case DirectionUp:
		err = b.current.MoveUp()
	case DirectionDown:
		err = b.current.MoveDown()
	}
	if err != nil {
		b.logger.Warn("menu navigation failed", zap.String("menu", b.current.Title), zap.Error(err))
	}
	return err
}

// Confirm commits the current menu's cursor. It reports whether a menu took
// the input.
func (b *Battle) Confirm() bool {
	if b.current == nil || !b.current.IsSelected() {
		return false
	}
	return b.current.Confirm()
}

// onActionChosen moves input from the action menu to the enemy menu.
func (b *Battle) onActionChosen(index int) {
	b.action = combat.Action(index)
	b.current = b.enemyMenu
	if !b.enemyMenu.SelectAt(0) {
		b.logger.Warn("no enemy to target")
	}
}

// onTargetChosen closes the menus and hands the decision to the scheduler.
func (b *Battle) onTargetChosen(index int) {
	b.resetMenus()
	err := b.scheduler.ReceivePlayerAction(b.ctx, b.action, index)
	if errors.Is(err, combat.ErrNotAwaitingPlayer) {
		return
	}
	if err != nil {
		b.logger.Error("player action rejected",
			zap.Stringer("action", b.action),
			zap.Int("target", index),
			zap.Error(err),
		)
	}
}

// Message shows a banner that hides itself after the message duration.
func (b *Battle) Message(text string) {
	b.clearMessage()
	b.message = text
	gen := b.messageGen
	b.hideMessage = b.timer.AfterFunc(b.messageDuration, func() {
		if gen == b.messageGen {
			b.message = ""
			b.hideMessage = nil
		}
	})
}

// ActorIsPlayer highlights the acting hero and opens the action menu.
func (b *Battle) ActorIsPlayer(heroIndex int) {
	b.heroMenu.SelectAt(heroIndex)
	b.actionMenu.SelectAt(0)
	b.current = b.actionMenu
}

// BattleEnded closes the menus and reports the outcome to the host.
func (b *Battle) BattleEnded(outcome combat.Outcome) {
	b.resetMenus()
	b.heroMenu.Clear()
	b.enemyMenu.Clear()
	if b.onEnd != nil {
		b.onEnd(outcome)
	}
}

var _ combat.Listener = (*Battle)(nil)

func (b *Battle) resetMenus() {
	b.heroMenu.Deselect()
	b.actionMenu.Deselect()
	b.enemyMenu.Deselect()
	b.current = nil
}

func (b *Battle) clearMessage() {
	b.messageGen++
	if b.hideMessage != nil {
		b.hideMessage()
		b.hideMessage = nil
	}
	b.message = ""
}

// View returns the state the renderer draws.
func (b *Battle) View() ui.BattleView {
	actor := b.scheduler.Actor()
	view := ui.BattleView{
		Heroes:     b.scheduler.Heroes(),
		Enemies:    b.scheduler.Enemies(),
		Actor:      actor,
		HeroMenu:   b.heroMenu,
		ActionMenu: b.actionMenu,
		EnemyMenu:  b.enemyMenu,
		Current:    b.current,
		Message:    b.message,
	}
	if actor != nil && actor.IsPlayer() {
		view.ActionHint = func(index int) string {
			return fmt.Sprintf(" (%d)", combat.PreviewDamage(actor, combat.Action(index)))
		}
	}
	return view
}

// Scheduler returns the underlying state machine.
func (b *Battle) Scheduler() *combat.Scheduler { return b.scheduler }

// Current returns the menu taking input, or nil.
func (b *Battle) Current() *menu.Menu { return b.current }

// MessageText returns the banner currently shown, or "".
func (b *Battle) MessageText() string { return b.message }

// ChosenAction returns the action picked in the action menu this turn.
func (b *Battle) ChosenAction() combat.Action { return b.action }
