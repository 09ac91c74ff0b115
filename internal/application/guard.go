package application

import "sync"

type opKind string

const (
	opJoin  opKind = "join"
	opLeave opKind = "leave"
)

// flightGuard admits at most one execution per operation kind. Callers that
// find their kind in flight are turned away rather than queued.
type flightGuard struct {
	mu       sync.Mutex
	inFlight map[opKind]struct{}
}

func newFlightGuard() *flightGuard {
	return &flightGuard{inFlight: make(map[opKind]struct{})}
}

func (g *flightGuard) tryAcquire(kind opKind) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[kind]; busy {
		return nil, false
	}
	g.inFlight[kind] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, kind)
			g.mu.Unlock()
		})
	}, true
}
