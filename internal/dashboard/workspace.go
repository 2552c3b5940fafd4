package dashboard

import (
	"sync"
	"time"

	"orderdesk/internal/backend"
	"orderdesk/internal/consent"
	"orderdesk/internal/session"
	"orderdesk/internal/storage"
	"orderdesk/internal/validation"
)

// Workspace is everything one browser session sees.
type Workspace struct {
	ID      string
	Session *session.Session
	Consent *consent.Manager

	Overrides  *Overrides
	Brands     *Brands
	Categories *Categories
	Products   *Products
	Customers  *Customers
	Agents     *Agents
	Orders     *Orders

	mu       sync.Mutex
	lastSeen time.Time
}

// NewWorkspace namespaces store under the session id and gives every screen
// a client that authenticates with this session's token.
func NewWorkspace(id string, store storage.Store, client *backend.Client, v *validation.Validator, opts Options) *Workspace {
	kv := storage.Prefixed(store, "session:"+id)
	sess := session.New(kv)
	c := client.WithTokens(sess)
	return &Workspace{
		ID:         id,
		Session:    sess,
		Consent:    consent.New(kv),
		Overrides:  NewOverrides(c, v, opts),
		Brands:     NewBrands(c, v, opts),
		Categories: NewCategories(c, v, opts),
		Products:   NewProducts(c, v, opts),
		Customers:  NewCustomers(c, v, opts),
		Agents:     NewAgents(c, v, opts),
		Orders:     NewOrders(c, v, opts),
		lastSeen:   time.Now(),
	}
}

// Touch records activity at now.
func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeen = now
}

// IdleSince reports the last recorded activity.
func (w *Workspace) IdleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}
