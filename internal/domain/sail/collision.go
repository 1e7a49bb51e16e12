package sail

import (
	"time"

	"tradewinds/internal/domain/world"
)

// MaxCollisionSteps bounds the NPC scan in HasCollision.
const MaxCollisionSteps = 10000

// HasCollision reports whether npc occupies userTile at any instant in
// [start, end]. The scan walks the NPC's path indexes from the one held at
// start to the one held at end, so an NPC arriving exactly at end collides.
func HasCollision(npc world.NPC, userTile world.TileID, start, end time.Time) (bool, error) {
	if npc.Speed <= 0 {
		return false, malformed("npc.speed", ErrInvalidSpeed)
	}
	if len(npc.Path) == 0 {
		return false, malformed("npc.path", ErrPathTooShort)
	}
	if end.Before(start) {
		return false, malformed("window", nil)
	}

	created := float64(npc.PathCreatedAt.UnixMilli())
	k0 := tilesMovedMs(created, float64(start.UnixMilli()), npc.Speed)
	k1 := tilesMovedMs(created, float64(end.UnixMilli()), npc.Speed)
	if k1-k0 >= MaxCollisionSteps {
		return false, ErrRunawayComputation
	}
	n := len(npc.Path)
	if k1-k0 >= n {
		k1 = k0 + n - 1
	}
	for k := k0; k <= k1; k++ {
		if npc.Path[((k%n)+n)%n] == userTile {
			return true, nil
		}
	}
	return false, nil
}
