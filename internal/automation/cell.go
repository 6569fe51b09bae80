package automation

import (
	"math"
	"sync"

	"github.com/san-kum/botcore/internal/sim"
	"github.com/san-kum/botcore/internal/storage"
)

// Sensor readings for what sits in front of the colour sensor.
var readings = map[storage.SlotContent][3]float64{
	storage.Open:   {0, 0.05, 0.05},
	storage.Green:  {155, 0.8, 0.6},
	storage.Purple: {180, 0.7, 0.5},
}

// cell is the physical storage: where the pieces really are, independent of
// what the controller believes. It feeds the colour sensor and removes the
// piece at the feeder once the feeder swings out.
type cell struct {
	mu      sync.Mutex
	slots   [storage.SlotCount]storage.SlotContent
	indexer *sim.Rig
	feeder  *storage.Feeder
	fired   bool
	ejected []storage.SlotContent
}

// physical is the slot offset from the front by the carousel's real angle.
func (c *cell) physical(offset int) int {
	idx := int64(math.Floor(c.indexer.Position()/storage.DegreesPerSlot + 0.5))
	m := int(idx % storage.SlotCount)
	if m < 0 {
		m += storage.SlotCount
	}
	return (m + offset) % storage.SlotCount
}

func (c *cell) HSV() (h, s, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := readings[c.slots[c.physical(0)]]
	return r[0], r[1], r[2]
}

// intake drops a piece into the front slot. It reports false when the slot
// is taken.
func (c *cell) intake(p storage.SlotContent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	front := c.physical(0)
	if c.slots[front] != storage.Open {
		return false
	}
	c.slots[front] = p
	return true
}

// Step runs after the rigs have moved.
func (c *cell) Step() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.feeder.State() {
	case storage.FeederReturning:
		if !c.fired {
			c.fired = true
			left := c.physical(1)
			c.ejected = append(c.ejected, c.slots[left])
			c.slots[left] = storage.Open
		}
	case storage.FeederResting:
		c.fired = false
	}
	return nil
}

func (c *cell) snapshot() [storage.SlotCount]storage.SlotContent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots
}

func (c *cell) ejections() []storage.SlotContent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]storage.SlotContent(nil), c.ejected...)
}
