package breaker

import (
	"sync"
	"time"

	"bazaar/internal/pkg/config"
)

// Registry owns one breaker per capability name. Capabilities never share
// a breaker: the inventory availability check and the stock decrease are
// tracked independently even though they hit the same service.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	configs  map[string]Settings
}

// NewRegistry builds a registry; configs provides per-capability overrides,
// missing capabilities use package defaults.
func NewRegistry(configs map[string]config.BreakerConfig) *Registry {
	settings := make(map[string]Settings, len(configs))
	for name, c := range configs {
		settings[name] = fromConfig(c)
	}
	return &Registry{
		breakers: make(map[string]*Breaker),
		configs:  settings,
	}
}

// Get returns the breaker for a capability, creating it on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := New(name, r.configs[name])
	r.breakers[name] = b
	return b
}

func fromConfig(c config.BreakerConfig) Settings {
	return Settings{
		FailureRateThreshold: c.FailureRateThreshold,
		WindowSize:           c.WindowSize,
		MinimumCalls:         c.MinimumCalls,
		OpenTimeout:          time.Duration(c.OpenTimeout),
		HalfOpenMaxCalls:     c.HalfOpenMaxCalls,
		CallTimeout:          time.Duration(c.CallTimeout),
	}
}
