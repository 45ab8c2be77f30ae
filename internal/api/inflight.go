package api

import "sync"

// inflightGuard rejects a second concurrent run of the same slow engine
// action for the same user. State mutations stay last-write-wins; only the
// expensive generation calls are serialized.
type inflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{active: make(map[string]struct{})}
}

// acquire claims the user+action pair. The release func must be called
// exactly once when the work finishes.
func (g *inflightGuard) acquire(email, action string) (func(), bool) {
	key := email + ":" + action
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, false
	}
	g.active[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.active, key)
		g.mu.Unlock()
	}, true
}
