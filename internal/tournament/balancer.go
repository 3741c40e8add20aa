// Table balancing: redistributing seated players across a tournament's
// running tables as they bust out, grounded in cmd/pokerd's table-count
// bookkeeping (Server.tables) and in
// original_source/libraries/tournaments/src/tournaments/tests/balance_moves.rs's
// TableBalancer, which this package reimplements as a pure Go function
// instead of a struct with internal mutable state.
package tournament

import (
	"sort"
	"time"
)

// TableSnapshot is the balancer's read-only view of one table: how many
// players it currently holds and when it was last touched by a balance
// move (the zero Time means "never balanced", so it is never exempt from
// being a source or destination).
type TableSnapshot struct {
	ID            string
	PlayerCount   int
	LastRebalance time.Time
}

// Move instructs the director to relocate one player from one table to
// another via C3.leaveTableForMove / C3.addUser. A single balancing pass
// can return multiple Move values naming the same (From, To) pair — one
// per player that must make that hop.
type Move struct {
	From string
	To   string
}

// Balance computes the moves needed to keep every running table's
// occupancy within [minPerTable, maxPerTable], or to consolidate down to
// fewer tables when the tournament's player count no longer justifies the
// current table count (spec.md §4.6). Balance is pure: it never mutates
// tables, it only returns the moves the caller must apply.
//
// cooldown exempts any table whose LastRebalance is within cooldown of
// now from being a source OR a destination — freshly-moved players get a
// hand to settle in before being shuffled again.
func Balance(tables []TableSnapshot, minPerTable, maxPerTable int, cooldown time.Duration, now time.Time) []Move {
	counts := make(map[string]int, len(tables))
	order := make([]string, 0, len(tables))
	for _, snap := range tables {
		counts[snap.ID] = snap.PlayerCount
		order = append(order, snap.ID)
	}
	sort.Strings(order)

	onCooldown := make(map[string]bool, len(tables))
	for _, snap := range tables {
		if !snap.LastRebalance.IsZero() && now.Sub(snap.LastRebalance) < cooldown {
			onCooldown[snap.ID] = true
		}
	}

	var moves []Move
	active := make([]string, len(order))
	copy(active, order)

	if shouldConsolidate(active, counts, maxPerTable) {
		moves = append(moves, consolidate(active, counts, onCooldown, maxPerTable)...)
	} else {
		moves = append(moves, equalize(active, counts, onCooldown, minPerTable, maxPerTable)...)
	}
	return moves
}

func shouldConsolidate(active []string, counts map[string]int, maxPerTable int) bool {
	if len(active) <= 1 {
		return false
	}
	total := 0
	for _, id := range active {
		total += counts[id]
	}
	return total <= maxPerTable*(len(active)-1)
}

// consolidate empties out the least-populated table(s), one table at a
// time, distributing its players round-robin to the remaining tables'
// spare capacity, preferring the emptiest destination first (rule 3).
func consolidate(active []string, counts map[string]int, onCooldown map[string]bool, maxPerTable int) []Move {
	var moves []Move

	for {
		remaining := remove(active, func(id string) bool { return counts[id] == 0 })
		if len(remaining) <= 1 {
			break
		}

		src, ok := leastPopulated(remaining, counts, onCooldown)
		if !ok {
			break
		}
		total := 0
		for _, id := range remaining {
			total += counts[id]
		}
		if total > maxPerTable*(len(remaining)-1) {
			break
		}

		dests := remove(remaining, func(id string) bool { return id == src })
		for counts[src] > 0 {
			dest, ok := emptiestWithCapacity(dests, counts, onCooldown, maxPerTable)
			if !ok {
				break
			}
			moves = append(moves, Move{From: src, To: dest})
			counts[src]--
			counts[dest]++
		}
		active = remaining
	}
	return moves
}

// equalize moves one player at a time from the fullest non-cooldowned
// table to the emptiest table with spare capacity, until the spread
// between the fullest and emptiest active table is under 2 (rule 4).
func equalize(active []string, counts map[string]int, onCooldown map[string]bool, minPerTable, maxPerTable int) []Move {
	var moves []Move
	for {
		if spread(active, counts) < 2 {
			break
		}
		src, srcOK := fullestEligibleSource(active, counts, onCooldown)
		dest, destOK := emptiestWithCapacity(active, counts, onCooldown, maxPerTable)
		if !srcOK || !destOK || src == dest {
			break
		}
		moves = append(moves, Move{From: src, To: dest})
		counts[src]--
		counts[dest]++
	}
	return moves
}

func spread(active []string, counts map[string]int) int {
	if len(active) == 0 {
		return 0
	}
	min, max := counts[active[0]], counts[active[0]]
	for _, id := range active {
		if counts[id] < min {
			min = counts[id]
		}
		if counts[id] > max {
			max = counts[id]
		}
	}
	return max - min
}

// leastPopulated returns the non-cooldowned table with the fewest
// players, breaking ties by id (rule 5).
func leastPopulated(ids []string, counts map[string]int, onCooldown map[string]bool) (string, bool) {
	best := ""
	bestCount := -1
	found := false
	for _, id := range sortedCopy(ids) {
		if onCooldown[id] {
			continue
		}
		c := counts[id]
		if !found || c < bestCount {
			best, bestCount, found = id, c, true
		}
	}
	return best, found
}

// fullestEligibleSource returns the non-cooldowned, non-empty table with
// the most players, breaking ties by id.
func fullestEligibleSource(ids []string, counts map[string]int, onCooldown map[string]bool) (string, bool) {
	best := ""
	bestCount := -1
	found := false
	for _, id := range sortedCopy(ids) {
		if onCooldown[id] || counts[id] == 0 {
			continue
		}
		if !found || counts[id] > bestCount {
			best, bestCount, found = id, counts[id], true
		}
	}
	return best, found
}

// emptiestWithCapacity returns the non-cooldowned table with the fewest
// players that still has room below maxPerTable, breaking ties by id
// (rule 1: a table already at maxPerTable is never a target).
func emptiestWithCapacity(ids []string, counts map[string]int, onCooldown map[string]bool, maxPerTable int) (string, bool) {
	best := ""
	bestCount := -1
	found := false
	for _, id := range sortedCopy(ids) {
		if onCooldown[id] || counts[id] >= maxPerTable {
			continue
		}
		if !found || counts[id] < bestCount {
			best, bestCount, found = id, counts[id], true
		}
	}
	return best, found
}

func sortedCopy(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}

func remove(ids []string, drop func(string) bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop(id) {
			out = append(out, id)
		}
	}
	return out
}
