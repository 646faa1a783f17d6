package engine

import (
	"fmt"
	"time"
)

// GameConfig holds configuration for creating a new game.
type GameConfig struct {
	TerrainSeed   string // empty picks terrain-<unix ms>
	TokenSeed     string // empty picks token-<unix ms>
	PortCount     int
	VictoryTarget int      // points needed to win (default 10)
	MaxPlayers    int      // seats per match (default 4)
	Colors        []string // seat colors in join order
	LogLimit      int      // entries kept in the rolling log

	Source Source           // dice, steals, card draws; nil uses math/rand
	Clock  func() time.Time // nil uses time.Now
}

// PlayerColors are handed out in join order.
var PlayerColors = []string{"#ef4444", "#3b82f6", "#22c55e", "#f59e0b"}

func DefaultConfig() GameConfig {
	return GameConfig{
		PortCount:     DefaultPortCount,
		VictoryTarget: 10,
		MaxPlayers:    len(PlayerColors),
		Colors:        PlayerColors,
		LogLimit:      100,
	}
}

func (c *GameConfig) fill() {
	def := DefaultConfig()
	if c.VictoryTarget <= 0 {
		c.VictoryTarget = def.VictoryTarget
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = def.MaxPlayers
	}
	if len(c.Colors) == 0 {
		c.Colors = def.Colors
	}
	if c.LogLimit <= 0 {
		c.LogLimit = def.LogLimit
	}
	if c.Source == nil {
		c.Source = runtimeSource{}
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

func defaultSeeds(now time.Time) (string, string) {
	ms := now.UnixMilli()
	return fmt.Sprintf("terrain-%d", ms), fmt.Sprintf("token-%d", ms)
}
