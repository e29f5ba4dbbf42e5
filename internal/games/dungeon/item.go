package dungeon

import (
	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// Item is a collectible placed in the active stage. Index is the item's
// position within the stage's item list, which is how visit memory
// remembers it across re-entries.
type Item struct {
	Index int
	Kind  string
	Pos   core.Vec2
}

// Effect returns what collecting this item does. Unknown kinds have an
// empty effect.
func (it *Item) Effect() ItemEffect {
	return itemKinds[it.Kind]
}
