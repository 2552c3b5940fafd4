// Package consent stores the cookie-consent choice of a dashboard session.
package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/logx"
	"orderdesk/internal/storage"
)

const (
	Key = "cookieConsent"
	// Expiry is how long a decision stays valid.
	Expiry = 365 * 24 * time.Hour
)

type Status string

const (
	Accepted Status = "accepted"
	Rejected Status = "rejected"
)

type Categories struct {
	Necessary bool `json:"necessary"`
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

type Record struct {
	Status     Status     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
	Categories Categories `json:"categories"`
}

// ExpiresAt is the moment the record stops counting as a decision.
func (r Record) ExpiresAt() time.Time {
	return r.Timestamp.Add(Expiry)
}

type Manager struct {
	store storage.Store
	now   func() time.Time
}

func New(store storage.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Load returns the stored record. Expired or unreadable records are removed
// and reported as absent.
func (m *Manager) Load(ctx context.Context) (*Record, error) {
	raw, ok, err := m.store.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load consent: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || !rec.valid() {
		logx.Warn().Err(err).Msg("discarding unreadable consent record")
		return nil, m.clear(ctx)
	}
	if !m.now().Before(rec.ExpiresAt()) {
		logx.Info().Time("decidedAt", rec.Timestamp).Msg("consent record expired")
		return nil, m.clear(ctx)
	}
	return &rec, nil
}

func (r Record) valid() bool {
	return (r.Status == Accepted || r.Status == Rejected) && !r.Timestamp.IsZero()
}

func (m *Manager) clear(ctx context.Context) error {
	if err := m.store.Remove(ctx, Key); err != nil {
		return fmt.Errorf("remove consent: %w", err)
	}
	return nil
}

func (m *Manager) ShouldShowBanner(ctx context.Context) (bool, error) {
	rec, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	return rec == nil, nil
}

// Accept records the chosen categories. Necessary cookies cannot be refused.
func (m *Manager) Accept(ctx context.Context, cats Categories) (Record, error) {
	cats.Necessary = true
	return m.save(ctx, Accepted, cats)
}

// Reject keeps only necessary cookies.
func (m *Manager) Reject(ctx context.Context) (Record, error) {
	return m.save(ctx, Rejected, Categories{Necessary: true})
}

// Decide dispatches on a status received from a client.
func (m *Manager) Decide(ctx context.Context, status Status, cats Categories) (Record, error) {
	switch status {
	case Accepted:
		return m.Accept(ctx, cats)
	case Rejected:
		return m.Reject(ctx)
	}
	return Record{}, fmt.Errorf("%w: unknown consent status %q", domain.ErrValidation, status)
}

func (m *Manager) save(ctx context.Context, status Status, cats Categories) (Record, error) {
	rec := Record{Status: status, Timestamp: m.now().UTC(), Categories: cats}
	raw, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode consent: %w", err)
	}
	if err := m.store.Set(ctx, Key, string(raw)); err != nil {
		return Record{}, fmt.Errorf("store consent: %w", err)
	}
	return rec, nil
}
