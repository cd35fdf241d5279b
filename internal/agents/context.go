package agents

import "sync"

// SharedContext is the per-run store through which pipeline steps pass
// intermediate results. Keys are namespaced by the producing agent
// ("{agent}_output"); agents may read any key but write only their own.
// Guarded by a mutex because parallel groups in the adaptive engine write
// from multiple goroutines.
type SharedContext struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewSharedContext creates an empty shared context for one workflow run.
func NewSharedContext() *SharedContext {
	return &SharedContext{data: make(map[string]any)}
}

// Set stores a value under key.
func (sc *SharedContext) Set(key string, value any) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.data[key] = value
}

// Get returns the value for key, if present.
func (sc *SharedContext) Get(key string) (any, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	v, ok := sc.data[key]
	return v, ok
}

// Output returns a prior agent's output payload, or nil when the agent has
// not run (or failed). Downstream agents must tolerate a nil here.
func (sc *SharedContext) Output(agent string) map[string]any {
	v, ok := sc.Get(agent + "_output")
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// Snapshot returns a shallow copy of the current contents.
func (sc *SharedContext) Snapshot() map[string]any {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make(map[string]any, len(sc.data))
	for k, v := range sc.data {
		out[k] = v
	}
	return out
}
