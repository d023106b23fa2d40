package ledger

import "sync"

// groupLocks hands out one mutex per group. Groups never share a lock, so
// writes to different groups proceed in parallel.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*sync.Mutex)}
}

func (g *groupLocks) get(groupID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.locks[groupID]; !ok {
		g.locks[groupID] = &sync.Mutex{}
	}
	return g.locks[groupID]
}

// lock acquires the group's mutex and returns its unlock function.
func (g *groupLocks) lock(groupID string) func() {
	m := g.get(groupID)
	m.Lock()
	return m.Unlock
}
