package menu

// Action menu entries, in cursor order.
const (
	LabelAttack = "Attack"
	LabelMagic  = "Magic"
)

// NewHeroMenu creates the hero roster menu. It only highlights the acting
// hero and has no confirm behavior.
func NewHeroMenu() *Menu {
	return New("Heroes", nil)
}

// NewActionMenu creates the action menu with its two fixed entries.
// onAction receives 0 for Attack and 1 for Magic.
func NewActionMenu(onAction func(index int)) *Menu {
	m := New("Actions", onAction)
	m.Append(LabelAttack)
	m.Append(LabelMagic)
	return m
}

// NewEnemyMenu creates the enemy roster menu. onTarget receives the index of
// the chosen enemy.
func NewEnemyMenu(onTarget func(index int)) *Menu {
	return New("Enemies", onTarget)
}
