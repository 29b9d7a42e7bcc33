// Package registry resolves offer slugs to their issuance configuration.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/aptos-community/offer-service/internal/app/domain/offer"
)

var (
	// ErrNotFound is returned when a slug has no configuration entry.
	// Callers translate it into a user-visible 404.
	ErrNotFound = errors.New("offer not found")
	// ErrOfferDisabled is returned when a resolved offer has been disabled.
	ErrOfferDisabled = errors.New("offer is disabled")
)

// Registry maps offer slugs to their records. Records are built once from
// configuration; only the enabled flag is mutable afterwards.
type Registry struct {
	mu      sync.RWMutex
	records map[string]offer.Record
}

// New builds a registry from resolved offer records. Later records with a
// duplicate slug are rejected upstream by config validation, so the map is
// populated verbatim.
func New(records []offer.Record) *Registry {
	bySlug := make(map[string]offer.Record, len(records))
	for _, rec := range records {
		bySlug[rec.Slug] = rec
	}
	return &Registry{records: bySlug}
}

// Resolve returns the record for slug or ErrNotFound. It is a pure lookup
// with no side effects; repeated calls return equal records.
func (r *Registry) Resolve(slug string) (offer.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[slug]
	if !ok {
		return offer.Record{}, ErrNotFound
	}
	return rec, nil
}

// Slugs returns the known offer slugs in stable order.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slugs := make([]string, 0, len(r.records))
	for slug := range r.records {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// SetEnabled toggles the enabled flag on a registered offer.
func (r *Registry) SetEnabled(slug string, enabled bool) (offer.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[slug]
	if !ok {
		return offer.Record{}, ErrNotFound
	}
	rec.Enabled = enabled
	r.records[slug] = rec
	return rec, nil
}
