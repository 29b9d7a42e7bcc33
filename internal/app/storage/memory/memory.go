package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
	"github.com/aptos-community/offer-service/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development.
type Store struct {
	mu               sync.RWMutex
	nextID           int64
	claims           map[string]claim.Claim
	claimByOfferUser map[string]string
}

var _ storage.ClaimStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:           1,
		claims:           make(map[string]claim.Claim),
		claimByOfferUser: make(map[string]string),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func offerUserKey(offerSlug, recipient string) string {
	return offerSlug + "\x00" + recipient
}

func (s *Store) CreateClaim(_ context.Context, c claim.Claim) (claim.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := offerUserKey(c.OfferSlug, c.Recipient)
	if _, exists := s.claimByOfferUser[key]; exists {
		return claim.Claim{}, fmt.Errorf("claim for offer %s by %s: %w", c.OfferSlug, c.Recipient, storage.ErrDuplicate)
	}

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	} else if _, exists := s.claims[c.ID]; exists {
		return claim.Claim{}, fmt.Errorf("claim %s: %w", c.ID, storage.ErrDuplicate)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.claims[c.ID] = c
	s.claimByOfferUser[key] = c.ID
	return c, nil
}

func (s *Store) UpdateClaim(_ context.Context, c claim.Claim) (claim.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.claims[c.ID]
	if !ok {
		return claim.Claim{}, storage.ErrNotFound
	}

	c.OfferSlug = original.OfferSlug
	c.Recipient = original.Recipient
	c.CreatedAt = original.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	s.claims[c.ID] = c
	return c, nil
}

func (s *Store) GetClaim(_ context.Context, id string) (claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[id]
	if !ok {
		return claim.Claim{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetClaimByOfferRecipient(_ context.Context, offerSlug, recipient string) (claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.claimByOfferUser[offerUserKey(offerSlug, recipient)]
	if !ok {
		return claim.Claim{}, storage.ErrNotFound
	}
	return s.claims[id], nil
}

func (s *Store) ListClaimsByOffer(_ context.Context, offerSlug string) ([]claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []claim.Claim
	for _, c := range s.claims {
		if c.OfferSlug == offerSlug {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *Store) ListClaimsByRecipient(_ context.Context, recipient string) ([]claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []claim.Claim
	for _, c := range s.claims {
		if c.Recipient == recipient {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *Store) ListSubmittedClaims(_ context.Context) ([]claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []claim.Claim
	for _, c := range s.claims {
		if c.Status == claim.StatusSubmitted {
			result = append(result, c)
		}
	}
	return result, nil
}
