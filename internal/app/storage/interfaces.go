package storage

import (
	"context"
	"errors"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, such as a second claim for the same (offer, recipient).
	ErrDuplicate = errors.New("record already exists")
)

// ClaimStore persists offer claims.
type ClaimStore interface {
	CreateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error)
	UpdateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error)
	GetClaim(ctx context.Context, id string) (claim.Claim, error)
	GetClaimByOfferRecipient(ctx context.Context, offerSlug, recipient string) (claim.Claim, error)
	ListClaimsByOffer(ctx context.Context, offerSlug string) ([]claim.Claim, error)
	ListClaimsByRecipient(ctx context.Context, recipient string) ([]claim.Claim, error)
	ListSubmittedClaims(ctx context.Context) ([]claim.Claim, error)
}
