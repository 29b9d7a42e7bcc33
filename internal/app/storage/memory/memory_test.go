package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
	"github.com/aptos-community/offer-service/internal/app/storage"
)

func TestCreateClaimDuplicate(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, err := store.CreateClaim(ctx, claim.Claim{
		OfferSlug: "aptos-zero",
		Recipient: "0xabc",
		Status:    claim.StatusPending,
	})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}

	// Same (offer, recipient) pair conflicts.
	if _, err := store.CreateClaim(ctx, claim.Claim{
		OfferSlug: "aptos-zero",
		Recipient: "0xabc",
		Status:    claim.StatusPending,
	}); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated pair, got %v", err)
	}

	// Reusing an existing ID conflicts too.
	if _, err := store.CreateClaim(ctx, claim.Claim{
		ID:        first.ID,
		OfferSlug: "launch-week",
		Recipient: "0xdef",
		Status:    claim.StatusPending,
	}); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused id, got %v", err)
	}

	// A different recipient is fine.
	if _, err := store.CreateClaim(ctx, claim.Claim{
		OfferSlug: "aptos-zero",
		Recipient: "0xdef",
		Status:    claim.StatusPending,
	}); err != nil {
		t.Fatalf("create second claim: %v", err)
	}
}

func TestGetClaimNotFound(t *testing.T) {
	store := New()

	if _, err := store.GetClaim(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetClaimByOfferRecipient(context.Background(), "aptos-zero", "0xabc"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
