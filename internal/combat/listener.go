package combat

import "time"

// Listener receives the scheduler's outbound notifications. Calls are made
// synchronously from whichever goroutine drives the scheduler.
type Listener interface {
	// Message carries a banner line such as "Warrior attacks GrDragon for 70 damage!".
	Message(text string)
	// ActorIsPlayer reports that the hero at heroIndex must choose an action.
	ActorIsPlayer(heroIndex int)
	// BattleEnded reports the final outcome. The rosters are already released.
	BattleEnded(outcome Outcome)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) Message(string)      {}
func (NopListener) ActorIsPlayer(int)   {}
func (NopListener) BattleEnded(Outcome) {}

// Timer schedules a callback after a delay. The host decides where the
// callback runs; it must be the goroutine that drives the scheduler.
// stop cancels the callback if it has not run yet.
type Timer interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}
