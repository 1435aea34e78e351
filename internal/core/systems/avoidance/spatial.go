package avoidance

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/FaabB/auto-battle-1/internal/core/world"
)

// bucketCount is the fixed power-of-two bucket table size.
const bucketCount = 1024

type cellEntry struct {
	id   world.AgentID
	x, y int32
}

// SpatialHash is a uniform-grid index over agent positions: world space is
// cut into cellSize squares and each occupied cell's members land in an
// open-hashed bucket. It is cleared and fully repopulated once per tick,
// then read-only for the rest of the tick.
//
// Each entry carries its exact cell coordinate, so two cells colliding into
// one bucket never leak candidates into each other's queries. Queries return
// a superset of the agents within the radius; callers re-filter by exact
// distance or constraint relevance.
type SpatialHash struct {
	cellSize    float64
	invCellSize float64
	buckets     [bucketCount][]cellEntry
}

// NewSpatialHash builds an index with the given cell size. The cell size is
// fixed for the index's lifetime; it should be on the order of the neighbor
// query radius so queries touch few cells.
func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		panic("avoidance: spatial hash cell size must be positive")
	}
	return &SpatialHash{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
	}
}

// CellSize returns the configured cell size.
func (h *SpatialHash) CellSize() float64 {
	return h.cellSize
}

// Clear empties every bucket, keeping their capacity for the next rebuild.
func (h *SpatialHash) Clear() {
	for i := range h.buckets {
		h.buckets[i] = h.buckets[i][:0]
	}
}

// Insert places an agent into the bucket of the cell containing position.
// Inserting the same id twice keeps both entries; callers deduplicate if
// they care.
func (h *SpatialHash) Insert(id world.AgentID, position mgl64.Vec2) {
	x, y := h.cellCoords(position)
	b := bucketIndex(x, y)
	h.buckets[b] = append(h.buckets[b], cellEntry{id: id, x: x, y: y})
}

// QueryNeighbors returns the ids of every agent in the cells covering the
// axis-aligned square [position-radius, position+radius]. No distance
// filtering is done. For a fixed insert order the returned set is stable.
func (h *SpatialHash) QueryNeighbors(position mgl64.Vec2, radius float64) []world.AgentID {
	minX, minY := h.cellCoords(position.Sub(mgl64.Vec2{radius, radius}))
	maxX, maxY := h.cellCoords(position.Add(mgl64.Vec2{radius, radius}))

	var ids []world.AgentID
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for _, entry := range h.buckets[bucketIndex(x, y)] {
				if entry.x == x && entry.y == y {
					ids = append(ids, entry.id)
				}
			}
		}
	}
	return ids
}

// cellCoords maps a world position to integer cell coordinates. Floor keeps
// the mapping symmetric across cell boundaries: a point exactly on a
// boundary lands in the higher cell, and range queries cover both sides.
func (h *SpatialHash) cellCoords(position mgl64.Vec2) (int32, int32) {
	return int32(math.Floor(position.X() * h.invCellSize)),
		int32(math.Floor(position.Y() * h.invCellSize))
}

func bucketIndex(x, y int32) uint64 {
	var packed [8]byte
	binary.LittleEndian.PutUint32(packed[:4], uint32(x))
	binary.LittleEndian.PutUint32(packed[4:], uint32(y))
	return xxhash.Sum64(packed[:]) & (bucketCount - 1)
}
