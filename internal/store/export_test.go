package store

// Hold takes the backend lock and returns its release function, so tests can
// simulate a concurrent caller.
func (g *guard) Hold() (release func()) {
	g.mu.Lock()

	return g.mu.Unlock
}
