// Package claims implements the promotional offer claim flow: resolve the
// offer, persist the claim, hand the mint to the external submitter and track
// it to confirmation.
package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
	"github.com/aptos-community/offer-service/internal/app/domain/offer"
	"github.com/aptos-community/offer-service/internal/app/metrics"
	"github.com/aptos-community/offer-service/internal/app/registry"
	"github.com/aptos-community/offer-service/internal/app/storage"
	"github.com/aptos-community/offer-service/pkg/logger"
)

var (
	// ErrAlreadyClaimed is returned when the recipient already holds a claim
	// for the offer.
	ErrAlreadyClaimed = errors.New("offer already claimed by recipient")
	// ErrNoSigningKey is returned when the offer has no signing key
	// configured and therefore cannot mint.
	ErrNoSigningKey = errors.New("offer has no signing key configured")
)

// Minter submits a mint transaction for a resolved offer. Implementations
// receive the signing key through the offer record; this is the only point
// where the secret leaves the process.
type Minter interface {
	Mint(ctx context.Context, rec offer.Record, recipient string) (txHash string, err error)
}

// Service coordinates claim issuance.
type Service struct {
	registry *registry.Registry
	store    storage.ClaimStore
	minter   Minter
	log      *logger.Logger
}

// New constructs a claims service.
func New(reg *registry.Registry, store storage.ClaimStore, minter Minter, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("claims")
	}
	return &Service{
		registry: reg,
		store:    store,
		minter:   minter,
		log:      log,
	}
}

// Submit issues a claim for slug on behalf of recipient. The claim is
// persisted as pending before the mint is submitted, so a submitter failure
// leaves a failed claim behind rather than nothing.
func (s *Service) Submit(ctx context.Context, slug, recipient string) (claim.Claim, error) {
	slug = strings.TrimSpace(slug)
	recipient = strings.TrimSpace(recipient)

	if recipient == "" {
		return claim.Claim{}, fmt.Errorf("recipient is required")
	}
	if !strings.HasPrefix(recipient, "0x") {
		return claim.Claim{}, fmt.Errorf("recipient must be a 0x-prefixed address")
	}

	rec, err := s.registry.Resolve(slug)
	if err != nil {
		return claim.Claim{}, err
	}
	if !rec.Enabled {
		return claim.Claim{}, registry.ErrOfferDisabled
	}
	if rec.SigningKey == "" {
		return claim.Claim{}, ErrNoSigningKey
	}

	if _, err := s.store.GetClaimByOfferRecipient(ctx, rec.Slug, recipient); err == nil {
		return claim.Claim{}, ErrAlreadyClaimed
	} else if !errors.Is(err, storage.ErrNotFound) {
		return claim.Claim{}, err
	}

	created, err := s.store.CreateClaim(ctx, claim.Claim{
		OfferSlug: rec.Slug,
		Recipient: recipient,
		Status:    claim.StatusPending,
	})
	if err != nil {
		// A concurrent Submit can win the race between the miss check above
		// and the insert; surface it as the same conflict.
		if errors.Is(err, storage.ErrDuplicate) {
			return claim.Claim{}, ErrAlreadyClaimed
		}
		return claim.Claim{}, err
	}

	start := time.Now()
	txHash, mintErr := s.minter.Mint(ctx, rec, recipient)
	if mintErr != nil {
		created.Status = claim.StatusFailed
		created.Error = mintErr.Error()
		if updated, err := s.store.UpdateClaim(ctx, created); err == nil {
			created = updated
		} else {
			s.log.WithError(err).Warnf("record mint failure for claim %s", created.ID)
		}
		metrics.RecordClaimSubmission(rec.Slug, string(claim.StatusFailed), time.Since(start))
		s.log.WithError(mintErr).
			WithField("offer", rec.Slug).
			WithField("claim_id", created.ID).
			Warn("mint submission failed")
		return created, fmt.Errorf("submit mint: %w", mintErr)
	}

	created.Status = claim.StatusSubmitted
	created.TxHash = txHash
	updated, err := s.store.UpdateClaim(ctx, created)
	if err != nil {
		return claim.Claim{}, err
	}
	metrics.RecordClaimSubmission(rec.Slug, string(claim.StatusSubmitted), time.Since(start))
	s.log.WithField("offer", rec.Slug).
		WithField("claim_id", updated.ID).
		WithField("tx_hash", txHash).
		Info("claim submitted")
	return updated, nil
}

// Settle finalizes a submitted claim as confirmed or failed.
func (s *Service) Settle(ctx context.Context, id string, success bool, message string) (claim.Claim, error) {
	c, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return claim.Claim{}, err
	}
	if c.Status != claim.StatusSubmitted {
		return claim.Claim{}, fmt.Errorf("claim %s is %s, not submitted", id, c.Status)
	}

	if success {
		c.Status = claim.StatusConfirmed
		c.Error = ""
	} else {
		c.Status = claim.StatusFailed
		c.Error = message
	}
	return s.store.UpdateClaim(ctx, c)
}

// Get returns a claim by ID.
func (s *Service) Get(ctx context.Context, id string) (claim.Claim, error) {
	return s.store.GetClaim(ctx, id)
}

// ListByOffer returns claims recorded against an offer. The offer must exist.
func (s *Service) ListByOffer(ctx context.Context, slug string) ([]claim.Claim, error) {
	if _, err := s.registry.Resolve(strings.TrimSpace(slug)); err != nil {
		return nil, err
	}
	return s.store.ListClaimsByOffer(ctx, strings.TrimSpace(slug))
}

// ListByRecipient returns the claims held by a recipient address.
func (s *Service) ListByRecipient(ctx context.Context, recipient string) ([]claim.Claim, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	return s.store.ListClaimsByRecipient(ctx, recipient)
}
