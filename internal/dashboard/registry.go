package dashboard

import (
	"sync"
	"time"

	"orderdesk/internal/logx"
)

// Registry keeps workspaces by session id and forgets the ones idle for
// longer than its ttl. Expired entries are swept on access.
type Registry struct {
	idle    time.Duration
	factory func(id string) *Workspace
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(idle time.Duration, factory func(id string) *Workspace) *Registry {
	return &Registry{
		idle:    idle,
		factory: factory,
		now:     time.Now,
		items:   map[string]*Workspace{},
	}
}

// Get returns the live workspace for id.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	w, ok := r.items[id]
	if ok {
		w.Touch(now)
	}
	return w, ok
}

// Open returns the workspace for id, creating it when needed.
func (r *Registry) Open(id string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	w, ok := r.items[id]
	if !ok {
		w = r.factory(id)
		r.items[id] = w
		logx.Debug().Str("workspace", id).Msg("workspace opened")
	}
	w.Touch(now)
	return w
}

func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Registry) sweep(now time.Time) {
	if r.idle <= 0 {
		return
	}
	for id, w := range r.items {
		if now.Sub(w.IdleSince()) > r.idle {
			delete(r.items, id)
			logx.Debug().Str("workspace", id).Msg("workspace expired")
		}
	}
}
