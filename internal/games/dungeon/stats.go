package dungeon

// EnemyStats is the fixed profile of one enemy kind.
type EnemyStats struct {
	MaxHP  int
	Speed  float64
	Damage int
	XP     int
}

// enemyKinds maps enemy kind names from stage data to their stats.
var enemyKinds = map[string]EnemyStats{
	"basic":    {MaxHP: 30, Speed: 50, Damage: 10, XP: 10},
	"goblin":   {MaxHP: 40, Speed: 60, Damage: 12, XP: 15},
	"orc":      {MaxHP: 60, Speed: 40, Damage: 18, XP: 25},
	"skeleton": {MaxHP: 25, Speed: 70, Damage: 8, XP: 12},
}

// statsFor returns the stats for an enemy kind, falling back to basic
// for kinds the table does not know.
func statsFor(kind string) EnemyStats {
	if s, ok := enemyKinds[kind]; ok {
		return s
	}
	return enemyKinds["basic"]
}

// EnemyKinds returns the set of known enemy kind names, for stage
// validation.
func EnemyKinds() map[string]bool {
	kinds := make(map[string]bool, len(enemyKinds))
	for k := range enemyKinds {
		kinds[k] = true
	}
	return kinds
}

// ItemEffect describes what collecting an item does. Zero fields do
// nothing.
type ItemEffect struct {
	Heal        int
	XP          int
	AttackBonus int
	SpeedMult   float64
}

// itemKinds maps item kind names from stage data to their effects.
var itemKinds = map[string]ItemEffect{
	"health_potion":  {Heal: 50},
	"experience_gem": {XP: 25},
	"iron_sword":     {AttackBonus: 15},
	"speed_boots":    {SpeedMult: 1.5},
}

// ItemKinds returns the set of known item kind names, for stage
// validation.
func ItemKinds() map[string]bool {
	kinds := make(map[string]bool, len(itemKinds))
	for k := range itemKinds {
		kinds[k] = true
	}
	return kinds
}

// PickupRadius is how close the player must be to collect an item, in
// world units.
const PickupRadius = 16.0
