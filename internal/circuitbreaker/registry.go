package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one Breaker per key, created on first use.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*Breaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*Breaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

func (r *Registry) Get(key string) *Breaker {
	r.mutex.RLock()
	b, exists := r.breakers[key]
	r.mutex.RUnlock()

	if exists {
		return b
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if b, exists = r.breakers[key]; exists {
		return b
	}

	b = New(r.threshold, r.timeout)
	r.breakers[key] = b
	return b
}

// Stats reports the state of every breaker handed out so far.
func (r *Registry) Stats() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]State, len(r.breakers))
	for key, b := range r.breakers {
		stats[key] = b.State()
	}
	return stats
}
