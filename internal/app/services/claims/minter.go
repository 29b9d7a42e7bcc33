package claims

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/aptos-community/offer-service/internal/app/domain/offer"
	"github.com/aptos-community/offer-service/pkg/logger"
)

// MockMinter returns a deterministic pseudo transaction hash without touching
// any external service. Used in tests and local development.
type MockMinter struct {
	log *logger.Logger
}

var _ Minter = (*MockMinter)(nil)

// NewMockMinter constructs a mock minter.
func NewMockMinter(log *logger.Logger) *MockMinter {
	if log == nil {
		log = logger.NewDefault("mock-minter")
	}
	return &MockMinter{log: log}
}

func (m *MockMinter) Mint(_ context.Context, rec offer.Record, recipient string) (string, error) {
	sum := sha256.Sum256([]byte(rec.Slug + "|" + rec.ModuleAddress + "|" + recipient))
	hash := "0x" + hex.EncodeToString(sum[:])
	m.log.WithField("offer", rec.Slug).Debugf("mock mint for %s", recipient)
	return hash, nil
}
