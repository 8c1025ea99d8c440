package market

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// State is the process-wide registry of per-coin states.
// The ingestion path is the only writer; the query path reads concurrently.
type State struct {
	mu        sync.RWMutex
	coins     map[string]*CoinState
	windowCap int

	connected atomic.Bool
	startTime time.Time
}

// NewState creates an empty registry. windowCap <= 0 uses DefaultWindowCap.
func NewState(windowCap int) *State {
	if windowCap <= 0 {
		windowCap = DefaultWindowCap
	}
	return &State{
		coins:     make(map[string]*CoinState),
		windowCap: windowCap,
		startTime: time.Now(),
	}
}

// EnsureCoin returns the state for coin, creating it on first sight.
func (s *State) EnsureCoin(coin string) *CoinState {
	s.mu.RLock()
	cs, ok := s.coins[coin]
	s.mu.RUnlock()
	if ok {
		return cs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.coins[coin]; ok {
		return cs
	}
	cs = NewCoinState(coin, s.windowCap)
	s.coins[coin] = cs
	return cs
}

// Lookup returns the state for coin if it has been seen.
func (s *State) Lookup(coin string) (*CoinState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.coins[coin]
	return cs, ok
}

// Coins returns all tracked coin identifiers sorted for stable output.
func (s *State) Coins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.coins))
	for c := range s.coins {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SetConnected flips the connection-health flag. True only while the
// streaming session is live; false during connect attempts and backoff.
func (s *State) SetConnected(up bool) {
	s.connected.Store(up)
}

// Connected reports the current connection-health flag.
func (s *State) Connected() bool {
	return s.connected.Load()
}

// UptimeSec returns seconds since the registry was constructed.
func (s *State) UptimeSec() float64 {
	return time.Since(s.startTime).Seconds()
}
