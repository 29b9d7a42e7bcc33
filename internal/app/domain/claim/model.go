package claim

import "time"

// Status tracks a claim through the mint lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Claim records a single recipient claiming a promotional offer. One claim
// exists per (offer, recipient) pair.
type Claim struct {
	ID        string    `json:"id"`
	OfferSlug string    `json:"offer_slug"`
	Recipient string    `json:"recipient"`
	Status    Status    `json:"status"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
