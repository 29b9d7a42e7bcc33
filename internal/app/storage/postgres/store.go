package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
	"github.com/aptos-community/offer-service/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.ClaimStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offer_claims (id, offer_slug, recipient, status, tx_hash, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.OfferSlug, c.Recipient, string(c.Status), c.TxHash, c.Error, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return claim.Claim{}, storage.ErrDuplicate
		}
		return claim.Claim{}, err
	}
	return c, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505), e.g. from the offer_claims_offer_recipient index.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *Store) UpdateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	existing, err := s.GetClaim(ctx, c.ID)
	if err != nil {
		return claim.Claim{}, err
	}

	c.OfferSlug = existing.OfferSlug
	c.Recipient = existing.Recipient
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE offer_claims
		SET status = $2, tx_hash = $3, error = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, string(c.Status), c.TxHash, c.Error, c.UpdatedAt)
	if err != nil {
		return claim.Claim{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return claim.Claim{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetClaim(ctx context.Context, id string) (claim.Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, offer_slug, recipient, status, tx_hash, error, created_at, updated_at
		FROM offer_claims
		WHERE id = $1
	`, id)
	return scanClaim(row)
}

func (s *Store) GetClaimByOfferRecipient(ctx context.Context, offerSlug, recipient string) (claim.Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, offer_slug, recipient, status, tx_hash, error, created_at, updated_at
		FROM offer_claims
		WHERE offer_slug = $1 AND recipient = $2
	`, offerSlug, recipient)
	return scanClaim(row)
}

func (s *Store) ListClaimsByOffer(ctx context.Context, offerSlug string) ([]claim.Claim, error) {
	return s.listClaims(ctx, `
		SELECT id, offer_slug, recipient, status, tx_hash, error, created_at, updated_at
		FROM offer_claims
		WHERE offer_slug = $1
		ORDER BY created_at
	`, offerSlug)
}

func (s *Store) ListClaimsByRecipient(ctx context.Context, recipient string) ([]claim.Claim, error) {
	return s.listClaims(ctx, `
		SELECT id, offer_slug, recipient, status, tx_hash, error, created_at, updated_at
		FROM offer_claims
		WHERE recipient = $1
		ORDER BY created_at
	`, recipient)
}

func (s *Store) ListSubmittedClaims(ctx context.Context) ([]claim.Claim, error) {
	return s.listClaims(ctx, `
		SELECT id, offer_slug, recipient, status, tx_hash, error, created_at, updated_at
		FROM offer_claims
		WHERE status = $1
		ORDER BY created_at
	`, string(claim.StatusSubmitted))
}

func (s *Store) listClaims(ctx context.Context, query string, args ...any) ([]claim.Claim, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []claim.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (claim.Claim, error) {
	var (
		c      claim.Claim
		status string
	)
	if err := row.Scan(&c.ID, &c.OfferSlug, &c.Recipient, &status, &c.TxHash, &c.Error, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return claim.Claim{}, storage.ErrNotFound
		}
		return claim.Claim{}, err
	}
	c.Status = claim.Status(status)
	return c, nil
}
