package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/lib/pq"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
	"github.com/aptos-community/offer-service/internal/app/storage"
	"github.com/aptos-community/offer-service/internal/platform/migrations"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM offer_claims WHERE recipient = '0xabc'"); err != nil {
		t.Fatalf("reset claims table: %v", err)
	}

	store := New(db)

	created, err := store.CreateClaim(ctx, claim.Claim{
		OfferSlug: "aptos-zero",
		Recipient: "0xabc",
		Status:    claim.StatusPending,
	})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	created.Status = claim.StatusSubmitted
	created.TxHash = "0xtx"
	if _, err := store.UpdateClaim(ctx, created); err != nil {
		t.Fatalf("update claim: %v", err)
	}

	got, err := store.GetClaimByOfferRecipient(ctx, "aptos-zero", "0xabc")
	if err != nil {
		t.Fatalf("get by offer/recipient: %v", err)
	}
	if got.Status != claim.StatusSubmitted || got.TxHash != "0xtx" {
		t.Fatalf("unexpected claim: %+v", got)
	}

	submitted, err := store.ListSubmittedClaims(ctx)
	if err != nil {
		t.Fatalf("list submitted: %v", err)
	}
	if len(submitted) == 0 {
		t.Fatalf("expected submitted claim in listing")
	}

	if _, err := store.GetClaim(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
