package license

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// State tracks resolution progress. Every path through Resolve, including
// every failure branch, ends in StateResolved.
type State int

const (
	StateUninitialized State = iota
	StateResolving
	StateResolved
)

// Resolved is the entitlement of this installation for the rest of the
// session. It is constructed once by the Resolver and handed to every
// dependent; nothing reads plan state from a global.
type Resolved struct {
	Plan      Plan   `json:"plan"`
	LicenseID string `json:"licenseID,omitempty"`
	OwnerID   string `json:"ownerID,omitempty"`
}

// Resolver determines the installation's plan by reading the license record
// and checking it against the verification service. Resolution happens at
// most once per process; verification failures are absorbed and logged, and
// the plan degrades to community.
type Resolver struct {
	store    Store
	verifier Verifier
	logger   zerolog.Logger

	once sync.Once

	mu       sync.Mutex
	state    State
	resolved Resolved
	subs     []chan Resolved
}

func NewResolver(store Store, verifier Verifier, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

// Resolve returns the session's entitlement, performing the store lookup
// and remote verification on the first call. Concurrent callers block until
// the first resolution completes; later callers get the cached result.
func (r *Resolver) Resolve(ctx context.Context) Resolved {
	r.once.Do(func() {
		r.mu.Lock()
		r.state = StateResolving
		r.mu.Unlock()

		resolved := r.resolve(ctx)

		r.mu.Lock()
		r.resolved = resolved
		r.state = StateResolved
		subs := r.subs
		r.subs = nil
		r.mu.Unlock()

		for _, ch := range subs {
			ch <- resolved
			close(ch)
		}
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Current returns the resolved entitlement, or a community-plan placeholder
// and false while resolution has not completed. Callers gating features
// must treat false as "no features".
func (r *Resolver) Current() (Resolved, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateResolved {
		return Resolved{Plan: PlanCommunity}, false
	}
	return r.resolved, true
}

// Subscribe returns a channel that delivers the resolved entitlement once
// and is then closed. Subscribing after resolution delivers the cached
// value immediately.
func (r *Resolver) Subscribe() <-chan Resolved {
	ch := make(chan Resolved, 1)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateResolved {
		ch <- r.resolved
		close(ch)
		return ch
	}
	r.subs = append(r.subs, ch)
	return ch
}

func (r *Resolver) resolve(ctx context.Context) Resolved {
	license, err := r.store.GetLicense()
	if err != nil {
		r.logger.Error().Msgf("failed to read license record, defaulting to community plan: %s", err.Error())
		return Resolved{Plan: PlanCommunity}
	}
	if license == nil {
		// No license means community; the verification service is not
		// contacted at all.
		r.logger.Info().Msg("no license record found, running on community plan")
		return Resolved{Plan: PlanCommunity}
	}

	resolved := Resolved{
		Plan:      PlanCommunity,
		LicenseID: license.ID,
		OwnerID:   license.OwnerID,
	}

	result, err := r.verifier.Verify(ctx, license.ID, license.OwnerID)
	if err != nil {
		r.logger.Error().Msgf("license verification failed, defaulting to community plan: %s", err.Error())
		return resolved
	}

	if result.Status != "active" {
		r.logger.Info().Msgf("license %s is not active (status: %s), running on community plan", license.ID, result.Status)
		return resolved
	}

	resolved.Plan = PlanFromRemote(result.Plan)
	r.logger.Info().Msgf("license %s resolved to plan: %s", license.ID, resolved.Plan)
	return resolved
}
