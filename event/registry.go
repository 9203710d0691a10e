package event

import "sync"

// registry holds the live triggers in registration order plus a name index.
// Dispatch iterates over a snapshot, so actions are free to add and remove
// triggers mid-pass; mutations take effect for the next envelope.
type registry struct {
	mu       sync.RWMutex
	triggers []*Trigger
	byName   map[string]*Trigger
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]*Trigger)}
}

// add registers a trigger, preserving registration order. Named triggers
// must be unique; on conflict the registry is left unchanged.
func (r *registry) add(t *Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.Name != "" {
		if _, exists := r.byName[t.Name]; exists {
			return ErrDuplicateTriggerName
		}
		r.byName[t.Name] = t
	}
	r.triggers = append(r.triggers, t)
	return nil
}

// remove unregisters the exact trigger instance.
func (r *registry) remove(t *Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(t)
}

// removeByName unregisters the trigger registered under name.
func (r *registry) removeByName(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byName[name]
	if !ok {
		return ErrTriggerNotFound
	}
	return r.removeLocked(t)
}

func (r *registry) removeLocked(t *Trigger) error {
	for i, candidate := range r.triggers {
		if candidate == t {
			r.triggers = append(r.triggers[:i], r.triggers[i+1:]...)
			if t.Name != "" {
				delete(r.byName, t.Name)
			}
			return nil
		}
	}
	return ErrTriggerNotFound
}

// get returns the trigger registered under name.
func (r *registry) get(name string) (*Trigger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// len returns the number of registered triggers.
func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.triggers)
}

// matching returns the triggers whose filters pass the envelope, in
// registration order. The returned slice is a snapshot owned by the caller.
func (r *registry) matching(e Envelope) []*Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Trigger
	for _, t := range r.triggers {
		if t.matches(e) {
			out = append(out, t)
		}
	}
	return out
}

// snapshot returns all triggers in registration order.
func (r *registry) snapshot() []*Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Trigger, len(r.triggers))
	copy(out, r.triggers)
	return out
}
