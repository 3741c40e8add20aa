// Package registry implements the Table Registry: a process-wide
// directory of live tables, keyed by table id, supporting filtered
// listing and quick-join. It owns no table state of its own — only the
// TableConfig each table was created with and the player count last
// pushed on membership change — grounded in a prior
// GameServer.tables map[string]*Table, generalized with filtering and
// pagination that design never needed.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"tablestakes/internal/ledger"
	"tablestakes/internal/table"
)

// Privacy is a table's join policy, an explicit variant instead of a
// boolean flag so invite-only and application-gated tables are not
// conflated.
type Privacy int

const (
	Public Privacy = iota
	InviteOnly
	Application
)

func (p Privacy) String() string {
	switch p {
	case Public:
		return "public"
	case InviteOnly:
		return "invite_only"
	case Application:
		return "application"
	default:
		return "unknown"
	}
}

// ParsePrivacy maps the RPC surface's string spelling onto a Privacy,
// defaulting to Public for an empty value.
func ParsePrivacy(s string) (Privacy, error) {
	switch s {
	case "", "public":
		return Public, nil
	case "invite_only":
		return InviteOnly, nil
	case "application":
		return Application, nil
	default:
		return Public, fmt.Errorf("registry: unknown privacy %q", s)
	}
}

// TableSummary is the directory's public view of a table: enough to
// list and filter on without taking the table's own lock.
type TableSummary struct {
	ID          table.TableID
	Config      table.TableConfig
	PlayerCount int
	MaxSeats    int
	Paused      bool
	Privacy     Privacy
}

// Filter narrows List by currency, stake range, privacy and game type.
// A zero-valued field is treated as "don't filter on this".
type Filter struct {
	Currency *ledger.Currency
	MinStake int64
	MaxStake int64
	Privacy  *Privacy
	GameType table.GameType
	Page     int // 0-based
	PageSize int // 0 means "all"
}

var (
	ErrTableExists   = fmt.Errorf("registry: table already exists")
	ErrTableNotFound = fmt.Errorf("registry: table not found")
	ErrNoMatch       = fmt.Errorf("registry: no matching table")
)

// Registry is the process-wide table directory (spec.md §4.4). Reads
// (List, QuickJoin, Get) take the read lock so they run concurrently;
// writes (Register, Remove, UpdatePlayerCount) take the write lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[table.TableID]*TableSummary
}

// New returns an empty table directory.
func New() *Registry {
	return &Registry{entries: make(map[table.TableID]*TableSummary)}
}

// Register adds a newly created table to the directory.
func (r *Registry) Register(id table.TableID, cfg table.TableConfig, privacy Privacy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[id]; exists {
		return ErrTableExists
	}
	r.entries[id] = &TableSummary{
		ID:       id,
		Config:   cfg,
		MaxSeats: cfg.SeatCount,
		Privacy:  privacy,
	}
	return nil
}

// Remove drops a table from the directory (the table itself has
// already been torn down by its owner).
func (r *Registry) Remove(id table.TableID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// UpdatePlayerCount is pushed by the table owner whenever seated-player
// count changes — the registry never polls a table directly.
func (r *Registry) UpdatePlayerCount(id table.TableID, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return ErrTableNotFound
	}
	e.PlayerCount = count
	return nil
}

// SetPaused records whether a table is currently paused (e.g. for a
// tournament addon break). QuickJoin skips paused tables; List still
// returns them, with Paused set.
func (r *Registry) SetPaused(id table.TableID, paused bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return ErrTableNotFound
	}
	e.Paused = paused
	return nil
}

// Get returns a single table's directory entry.
func (r *Registry) Get(id table.TableID) (TableSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return TableSummary{}, false
	}
	return *e, true
}

// List returns tables matching filter, sorted by player count
// descending, paginated.
func (r *Registry) List(f Filter) []TableSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]TableSummary, 0, len(r.entries))
	for _, e := range r.entries {
		if !matchesFilter(*e, f) {
			continue
		}
		matches = append(matches, *e)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].PlayerCount != matches[j].PlayerCount {
			return matches[i].PlayerCount > matches[j].PlayerCount
		}
		return matches[i].ID < matches[j].ID
	})

	if f.PageSize <= 0 {
		return matches
	}
	start := f.Page * f.PageSize
	if start >= len(matches) {
		return nil
	}
	end := start + f.PageSize
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end]
}

func matchesFilter(e TableSummary, f Filter) bool {
	if f.Currency != nil && e.Config.Rake.Currency.Kind != f.Currency.Kind {
		return false
	}
	if f.MinStake > 0 && e.Config.BigBlind < f.MinStake {
		return false
	}
	if f.MaxStake > 0 && e.Config.BigBlind > f.MaxStake {
		return false
	}
	if f.Privacy != nil && e.Privacy != *f.Privacy {
		return false
	}
	if f.GameType != "" && e.Config.GameType != f.GameType {
		return false
	}
	return true
}

// QuickJoin picks a non-full, non-paused public table matching currency
// and stake, preferring 1-3 seated players (avoids heads-up and
// nearly-full tables), then any table with at least one player, then an
// empty table (spec.md §4.4).
func (r *Registry) QuickJoin(currency ledger.Currency, stake int64) (table.TableID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sweetSpot, anyOccupied, empty []*TableSummary
	for _, e := range r.entries {
		if e.Paused || e.Privacy != Public {
			continue
		}
		if e.Config.Rake.Currency.Kind != currency.Kind {
			continue
		}
		if e.Config.BigBlind != stake {
			continue
		}
		if e.PlayerCount >= e.MaxSeats {
			continue
		}
		switch {
		case e.PlayerCount >= 1 && e.PlayerCount <= 3:
			sweetSpot = append(sweetSpot, e)
		case e.PlayerCount > 3:
			anyOccupied = append(anyOccupied, e)
		default:
			empty = append(empty, e)
		}
	}

	for _, bucket := range [][]*TableSummary{sweetSpot, anyOccupied, empty} {
		if len(bucket) == 0 {
			continue
		}
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ID < bucket[j].ID })
		return bucket[0].ID, nil
	}
	return "", ErrNoMatch
}
