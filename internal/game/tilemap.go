// Package game models the platformer that gates each level: the tile map a
// level is drawn from and the character state machine that runs on top of a
// physics engine.
package game

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

const TileSize = 32

// Empty marks a cell with no tile.
const Empty = -1

type TileClass int

const (
	ClassEmpty TileClass = iota
	ClassDecor
	ClassSolid
	ClassDeadly
	ClassCheckpoint
)

func (c TileClass) String() string {
	switch c {
	case ClassEmpty:
		return "empty"
	case ClassDecor:
		return "decor"
	case ClassSolid:
		return "solid"
	case ClassDeadly:
		return "deadly"
	case ClassCheckpoint:
		return "checkpoint"
	}
	return "unknown"
}

var (
	SolidTiles      = []int{1, 3, 5, 12, 13, 14, 15}
	DeadlyTiles     = []int{4, 18}
	CheckpointTiles = []int{19}
)

// Classify returns the gameplay class of a tile index.
func Classify(index int) TileClass {
	switch {
	case index < 0:
		return ClassEmpty
	case slices.Contains(SolidTiles, index):
		return ClassSolid
	case slices.Contains(DeadlyTiles, index):
		return ClassDeadly
	case slices.Contains(CheckpointTiles, index):
		return ClassCheckpoint
	}
	return ClassDecor
}

var ErrEmptyMap = errors.New("tile map has no rows")

// TileMap is a grid of tile indices, row 0 at the top.
type TileMap struct {
	Rows [][]int
	cols int
}

// Tile is one placed tile together with its pixel center.
type Tile struct {
	Index   int     `json:"index"`
	Col     int     `json:"col"`
	Row     int     `json:"row"`
	CenterX float64 `json:"x"`
	CenterY float64 `json:"y"`
}

// ParseCSV reads the level format: one row of comma-separated tile indices
// per line, -1 for empty cells. Short rows are padded with empty cells.
func ParseCSV(r io.Reader) (*TileMap, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	m := &TileMap{}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tile map: %w", err)
		}
		row := make([]int, 0, len(rec))
		for i, field := range rec {
			field = strings.TrimSpace(field)
			if field == "" && i == len(rec)-1 {
				// trailing comma
				continue
			}
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("tile map line %d column %d: %w", line, i+1, err)
			}
			row = append(row, v)
		}
		if len(row) == 0 {
			continue
		}
		m.Rows = append(m.Rows, row)
		m.cols = max(m.cols, len(row))
	}
	if len(m.Rows) == 0 {
		return nil, ErrEmptyMap
	}
	for i, row := range m.Rows {
		for len(row) < m.cols {
			row = append(row, Empty)
		}
		m.Rows[i] = row
	}
	return m, nil
}

func (m *TileMap) Width() int  { return m.cols }
func (m *TileMap) Height() int { return len(m.Rows) }

func (m *TileMap) WidthInPixels() int  { return m.cols * TileSize }
func (m *TileMap) HeightInPixels() int { return len(m.Rows) * TileSize }

// At returns the tile index at a cell, or Empty outside the map.
func (m *TileMap) At(col, row int) int {
	if row < 0 || row >= len(m.Rows) || col < 0 || col >= m.cols {
		return Empty
	}
	return m.Rows[row][col]
}

// AtPixel returns the tile index under a world position.
func (m *TileMap) AtPixel(x, y float64) int {
	if x < 0 || y < 0 {
		return Empty
	}
	return m.At(int(x)/TileSize, int(y)/TileSize)
}

// Find returns the first tile with index in row-major order.
func (m *TileMap) Find(index int) (Tile, bool) {
	for r, row := range m.Rows {
		for c, v := range row {
			if v == index {
				return tileAt(v, c, r), true
			}
		}
	}
	return Tile{}, false
}

// FindClass returns every tile of a class in row-major order.
func (m *TileMap) FindClass(class TileClass) []Tile {
	var out []Tile
	for r, row := range m.Rows {
		for c, v := range row {
			if Classify(v) == class {
				out = append(out, tileAt(v, c, r))
			}
		}
	}
	return out
}

func tileAt(index, col, row int) Tile {
	return Tile{
		Index:   index,
		Col:     col,
		Row:     row,
		CenterX: float64(col*TileSize) + TileSize/2,
		CenterY: float64(row*TileSize) + TileSize/2,
	}
}
