package session

import (
	"sync"
	"time"

	"github.com/rmax-ai/smoglight/pkg/sim"
)

// Reading is the latest observable output of a session: the gas levels
// plus the control inputs that produced them. Collaborators (TUI, CLI,
// MCP) render readings; they never touch the state directly.
type Reading struct {
	State    sim.State `json:"state"`
	Phase    sim.Phase `json:"phase"`
	Vehicles int       `json:"vehicles"`
	Running  bool      `json:"running"`
	Tick     uint64    `json:"tick"`
	Ts       time.Time `json:"ts"`
}

// ReadingStore holds the single most recent reading for external
// consumers. Only the latest value is kept; there is no history.
type ReadingStore interface {
	Set(r Reading)
	Latest() (Reading, bool)
	Clear()
}

// MemoryReadingStore implements ReadingStore with a guarded value.
type MemoryReadingStore struct {
	mu     sync.RWMutex
	latest Reading
	ok     bool
}

func NewMemoryReadingStore() *MemoryReadingStore {
	return &MemoryReadingStore{}
}

func (s *MemoryReadingStore) Set(r Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = r
	s.ok = true
}

func (s *MemoryReadingStore) Latest() (Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.ok
}

func (s *MemoryReadingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = Reading{}
	s.ok = false
}

// Snapshot is a point-in-time capture of a session, written to the
// snapshot store on shutdown and restored on boot.
type Snapshot struct {
	State   sim.State  `json:"state"`
	Phase   sim.Phase  `json:"phase"`
	Config  sim.Config `json:"config"`
	Tick    uint64     `json:"tick"`
	TsSaved time.Time  `json:"ts_saved"`
}
