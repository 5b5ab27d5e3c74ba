package source

import (
	"sync"

	"github.com/nexusgame/hydra/hydra"
)

// Store keeps the latest sample per slot. Feeders write to it from their own
// goroutines; the hydra.Manager reads it once per tick.
type Store struct {
	mu             sync.RWMutex
	samples        [hydra.SlotCount]hydra.Sample
	have           [hydra.SlotCount]bool
	managerEnabled bool
}

var _ hydra.Source = (*Store)(nil)

// NewStore returns an empty store with device-layer management enabled.
func NewStore() *Store {
	return &Store{managerEnabled: true}
}

// Put replaces the latest sample for slot. Samples for non-live slots are dropped.
func (s *Store) Put(slot hydra.Slot, sample hydra.Sample) {
	if !slot.Valid() {
		return
	}
	s.mu.Lock()
	s.samples[slot] = sample
	s.have[slot] = true
	s.mu.Unlock()
}

// PutFrame is Put for a decoded frame.
func (s *Store) PutFrame(f Frame) { s.Put(f.Slot, f.Sample) }

// Reset forgets all samples.
func (s *Store) Reset() {
	s.mu.Lock()
	s.samples = [hydra.SlotCount]hydra.Sample{}
	s.have = [hydra.SlotCount]bool{}
	s.mu.Unlock()
}

// Controller implements hydra.Source.
func (s *Store) Controller(slot hydra.Slot) (hydra.Sample, bool) {
	if !slot.Valid() {
		return hydra.Sample{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples[slot], s.have[slot]
}

// SetControllerManagerEnabled implements hydra.Source.
func (s *Store) SetControllerManagerEnabled(enabled bool) {
	s.mu.Lock()
	s.managerEnabled = enabled
	s.mu.Unlock()
}

// ControllerManagerEnabled reports whether the device layer currently owns
// controller management.
func (s *Store) ControllerManagerEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.managerEnabled
}
