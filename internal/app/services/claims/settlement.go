package claims

import (
	"context"
	"sync"
	"time"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
	"github.com/aptos-community/offer-service/internal/app/storage"
	"github.com/aptos-community/offer-service/internal/app/system"
	"github.com/aptos-community/offer-service/pkg/logger"
)

// ConfirmationResolver decides whether a submitted claim has landed on-chain.
type ConfirmationResolver interface {
	Resolve(ctx context.Context, c claim.Claim) (done bool, success bool, message string, retryAfter time.Duration, err error)
}

// TimeoutResolver fails submitted claims that stay unconfirmed past a
// deadline. It is the fallback when no confirmation endpoint is configured.
type TimeoutResolver struct {
	timeout time.Duration
	seen    sync.Map // claimID -> time.Time
}

func NewTimeoutResolver(timeout time.Duration) *TimeoutResolver {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &TimeoutResolver{timeout: timeout}
}

func (r *TimeoutResolver) Resolve(ctx context.Context, c claim.Claim) (bool, bool, string, time.Duration, error) {
	if value, ok := r.seen.Load(c.ID); ok {
		if time.Since(value.(time.Time)) >= r.timeout {
			r.seen.Delete(c.ID)
			return true, false, "timeout waiting for mint confirmation", 0, nil
		}
		return false, false, "", r.timeout / 4, nil
	}
	r.seen.Store(c.ID, time.Now())
	return false, false, "", r.timeout / 4, nil
}

// ConfirmationPoller watches submitted claims and settles them using the
// resolver.
type ConfirmationPoller struct {
	store    storage.ClaimStore
	service  *Service
	resolver ConfirmationResolver
	interval time.Duration
	log      *logger.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
	nextAttempt map[string]time.Time
}

var _ system.Service = (*ConfirmationPoller)(nil)

func NewConfirmationPoller(store storage.ClaimStore, service *Service, resolver ConfirmationResolver, log *logger.Logger) *ConfirmationPoller {
	if log == nil {
		log = logger.NewDefault("claim-confirmation")
	}
	if resolver == nil {
		resolver = NewTimeoutResolver(2 * time.Minute)
	}
	return &ConfirmationPoller{
		store:       store,
		service:     service,
		resolver:    resolver,
		interval:    15 * time.Second,
		log:         log,
		nextAttempt: make(map[string]time.Time),
	}
}

func (p *ConfirmationPoller) Name() string { return "claim-confirmation" }

// WithInterval overrides the poll interval. Call before Start.
func (p *ConfirmationPoller) WithInterval(interval time.Duration) *ConfirmationPoller {
	if interval > 0 {
		p.interval = interval
	}
	return p
}

func (p *ConfirmationPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				p.tick(runCtx)
			}
		}
	}()

	p.log.Info("claim confirmation poller started")
	return nil
}

func (p *ConfirmationPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (p *ConfirmationPoller) tick(ctx context.Context) {
	submitted, err := p.store.ListSubmittedClaims(ctx)
	if err != nil {
		p.log.WithError(err).Warn("list submitted claims failed")
		return
	}

	now := time.Now()
	for _, c := range submitted {
		if !p.shouldAttempt(c.ID, now) {
			continue
		}

		done, success, message, retryAfter, err := p.resolver.Resolve(ctx, c)
		if err != nil {
			p.log.WithError(err).Warnf("resolver error for claim %s", c.ID)
			p.scheduleNext(c.ID, retryAfter)
			continue
		}

		if !done {
			p.scheduleNext(c.ID, retryAfter)
			continue
		}

		if _, err := p.service.Settle(ctx, c.ID, success, message); err != nil {
			p.log.WithError(err).Warnf("settle claim %s failed", c.ID)
			p.scheduleNext(c.ID, retryAfter)
			continue
		}
		p.log.Infof("claim %s settled (success=%t)", c.ID, success)
		p.clearSchedule(c.ID)
	}
}

func (p *ConfirmationPoller) shouldAttempt(id string, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, ok := p.nextAttempt[id]
	if !ok || now.After(next) {
		return true
	}
	return false
}

func (p *ConfirmationPoller) scheduleNext(id string, after time.Duration) {
	if after <= 0 {
		after = p.interval
	}
	p.mu.Lock()
	p.nextAttempt[id] = time.Now().Add(after)
	p.mu.Unlock()
}

func (p *ConfirmationPoller) clearSchedule(id string) {
	p.mu.Lock()
	delete(p.nextAttempt, id)
	p.mu.Unlock()
}
