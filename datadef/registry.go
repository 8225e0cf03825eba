package datadef

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the layouts known to the agent, keyed by definition ID.
type Registry struct {
	mu      sync.RWMutex
	layouts map[DefinitionID]Layout
}

func NewRegistry() *Registry {
	return &Registry{layouts: make(map[DefinitionID]Layout)}
}

// Register stores l, replacing any layout previously held under l.ID.
func (r *Registry) Register(l Layout) {
	fields := make([]FieldSpec, len(l.Fields))
	copy(fields, l.Fields)
	l.Fields = fields

	r.mu.Lock()
	r.layouts[l.ID] = l
	r.mu.Unlock()
}

func (r *Registry) Layout(id DefinitionID) (Layout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[id]
	return l, ok
}

// Decode decodes buf with the layout registered under id.
func (r *Registry) Decode(id DefinitionID, buf []byte) (*Snapshot, error) {
	l, ok := r.Layout(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, id)
	}
	return l.Decode(buf)
}

// Layouts returns all registered layouts ordered by ID.
func (r *Registry) Layouts() []Layout {
	r.mu.RLock()
	out := make([]Layout, 0, len(r.layouts))
	for _, l := range r.layouts {
		out = append(out, l)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
