package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aptos-community/offer-service/internal/app/domain/offer"
	"github.com/aptos-community/offer-service/internal/app/registry"
	"github.com/aptos-community/offer-service/internal/app/services/claims"
	"github.com/aptos-community/offer-service/internal/app/storage"
	"github.com/aptos-community/offer-service/internal/app/storage/memory"
	"github.com/aptos-community/offer-service/internal/app/system"
	"github.com/aptos-community/offer-service/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Claims storage.ClaimStore
}

// MinterOptions selects the mint submitter. Mode is "http" or "mock"; empty
// means http when Endpoint is set, otherwise mock.
type MinterOptions struct {
	Mode     string
	Endpoint string
	APIKey   string
}

// ConfirmOptions configures confirmation of submitted claims. An empty
// endpoint selects the timeout fallback.
type ConfirmOptions struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Options carries the resolved process configuration into the application.
// Offer records arrive fully materialized so tests can inject fakes.
type Options struct {
	Offers  []offer.Record
	Minter  MinterOptions
	Confirm ConfirmOptions
}

// Application ties the registry and claim services together and manages
// their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Registry *registry.Registry
	Claims   *claims.Service
}

// New builds a fully initialised application with the provided stores.
func New(opts Options, stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Claims == nil {
		stores.Claims = memory.New()
	}

	reg := registry.New(opts.Offers)
	manager := system.NewManager()
	httpClient := &http.Client{Timeout: 10 * time.Second}

	minter, err := buildMinter(opts.Minter, httpClient, log)
	if err != nil {
		return nil, err
	}

	claimService := claims.New(reg, stores.Claims, minter, log)

	var resolver claims.ConfirmationResolver
	if endpoint := strings.TrimSpace(opts.Confirm.Endpoint); endpoint != "" {
		httpResolver, err := claims.NewHTTPConfirmationResolver(httpClient, endpoint, opts.Confirm.APIKey, log)
		if err != nil {
			log.WithError(err).Warn("configure confirmation resolver; falling back to timeout")
		} else {
			resolver = httpResolver
		}
	}
	if resolver == nil {
		resolver = claims.NewTimeoutResolver(opts.Confirm.Timeout)
	}

	poller := claims.NewConfirmationPoller(stores.Claims, claimService, resolver, log)
	if err := manager.Register(poller); err != nil {
		return nil, fmt.Errorf("register %s: %w", poller.Name(), err)
	}

	return &Application{
		manager:  manager,
		log:      log,
		Registry: reg,
		Claims:   claimService,
	}, nil
}

func buildMinter(opts MinterOptions, client *http.Client, log *logger.Logger) (claims.Minter, error) {
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	endpoint := strings.TrimSpace(opts.Endpoint)

	switch mode {
	case "mock", "disabled", "off":
		log.Warn("minter mode set to mock; mints will not reach any chain")
		return claims.NewMockMinter(log), nil
	case "", "http":
		if endpoint == "" {
			if mode == "http" {
				return nil, fmt.Errorf("minter endpoint required in http mode")
			}
			log.Warn("no minter endpoint configured; using mock minter")
			return claims.NewMockMinter(log), nil
		}
		return claims.NewHTTPMinter(client, endpoint, opts.APIKey, log)
	default:
		return nil, fmt.Errorf("unknown minter mode %q", opts.Mode)
	}
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
