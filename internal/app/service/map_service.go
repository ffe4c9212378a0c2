package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"pyventure/internal/common"
	"pyventure/internal/game"
)

type MapService struct {
	dir string

	mu    sync.RWMutex
	cache map[int64]*LevelMap
}

func NewMapService(dir string) *MapService {
	return &MapService{dir: dir, cache: make(map[int64]*LevelMap)}
}

// LevelMap is the platformer layout of a level as served to the browser.
type LevelMap struct {
	LevelID         int64        `json:"level_id"`
	TileSize        int          `json:"tile_size"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	WidthInPixels   int          `json:"width_px"`
	HeightInPixels  int          `json:"height_px"`
	Tiles           [][]int      `json:"tiles"`
	Spawn           game.Point   `json:"spawn"`
	Checkpoint      *game.Tile   `json:"checkpoint,omitempty"`
	Hazards         []game.Tile  `json:"hazards"`
	SolidTiles      []int        `json:"solid_tiles"`
	DeadlyTiles     []int        `json:"deadly_tiles"`
	CheckpointTiles []int        `json:"checkpoint_tiles"`
	RespawnDelayMS  int64        `json:"respawn_delay_ms"`
	Physics         PhysicsHints `json:"physics"`
}

type PhysicsHints struct {
	Acceleration  float64 `json:"acceleration"`
	JumpVelocity  float64 `json:"jump_velocity"`
	StopThreshold float64 `json:"stop_threshold"`
	FallMargin    float64 `json:"fall_margin"`
}

// Map loads level<N>.csv from the maps directory. Parsed maps are kept in
// memory for the life of the process.
func (s *MapService) Map(_ context.Context, levelID int64) (*LevelMap, error) {
	if levelID <= 0 {
		return nil, fmt.Errorf("invalid level id %d: %w", levelID, common.ErrValidation)
	}

	s.mu.RLock()
	m, ok := s.cache[levelID]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}

	path := filepath.Join(s.dir, fmt.Sprintf("level%d.csv", levelID))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("map for level %d: %w", levelID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()

	tm, err := game.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse map for level %d: %w", levelID, err)
	}

	m = &LevelMap{
		LevelID:         levelID,
		TileSize:        game.TileSize,
		Width:           tm.Width(),
		Height:          tm.Height(),
		WidthInPixels:   tm.WidthInPixels(),
		HeightInPixels:  tm.HeightInPixels(),
		Tiles:           tm.Rows,
		Spawn:           game.DefaultSpawn,
		Hazards:         tm.FindClass(game.ClassDeadly),
		SolidTiles:      game.SolidTiles,
		DeadlyTiles:     game.DeadlyTiles,
		CheckpointTiles: game.CheckpointTiles,
		RespawnDelayMS:  game.RespawnDelay.Milliseconds(),
		Physics: PhysicsHints{
			Acceleration:  game.Acceleration,
			JumpVelocity:  game.JumpVelocity,
			StopThreshold: game.StopThreshold,
			FallMargin:    game.FallMargin,
		},
	}
	if cps := tm.FindClass(game.ClassCheckpoint); len(cps) > 0 {
		m.Checkpoint = &cps[0]
	}
	if m.Hazards == nil {
		m.Hazards = []game.Tile{}
	}

	s.mu.Lock()
	s.cache[levelID] = m
	s.mu.Unlock()
	return m, nil
}
