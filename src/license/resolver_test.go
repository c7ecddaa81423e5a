package license

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeStore struct {
	license *License
	err     error
	calls   int
}

func (s *fakeStore) GetLicense() (*License, error) {
	s.calls++
	return s.license, s.err
}

func (s *fakeStore) GetLicenseByStripeID(string) (*License, error) {
	return nil, nil
}

func (s *fakeStore) InsertLicense(*License) error {
	return nil
}

type fakeVerifier struct {
	result *VerificationResult
	err    error
	calls  int
}

func (v *fakeVerifier) Verify(context.Context, string, string) (*VerificationResult, error) {
	v.calls++
	return v.result, v.err
}

func testLicense() *License {
	return &License{
		ID:      "7d2f1c3a-7547-49c2-acfb-fa7b8357ab03",
		OwnerID: "owner-1",
	}
}

func TestResolveFailClosed(t *testing.T) {
	t.Run("no license record resolves community without verifying", func(t *testing.T) {
		verifier := &fakeVerifier{}
		r := NewResolver(&fakeStore{}, verifier, zerolog.Nop())

		resolved := r.Resolve(context.Background())
		if resolved.Plan != PlanCommunity {
			t.Errorf("expected community plan, got %s", resolved.Plan)
		}
		if verifier.calls != 0 {
			t.Errorf("expected no verification calls, got %d", verifier.calls)
		}
		if _, ok := r.Current(); !ok {
			t.Error("expected resolver to end in resolved state")
		}
	})

	t.Run("store error resolves community", func(t *testing.T) {
		store := &fakeStore{err: errors.New("connection refused")}
		r := NewResolver(store, &fakeVerifier{}, zerolog.Nop())

		if resolved := r.Resolve(context.Background()); resolved.Plan != PlanCommunity {
			t.Errorf("expected community plan, got %s", resolved.Plan)
		}
	})

	t.Run("verification error resolves community but keeps license identity", func(t *testing.T) {
		store := &fakeStore{license: testLicense()}
		verifier := &fakeVerifier{err: errors.New("network timeout")}
		r := NewResolver(store, verifier, zerolog.Nop())

		resolved := r.Resolve(context.Background())
		if resolved.Plan != PlanCommunity {
			t.Errorf("expected community plan, got %s", resolved.Plan)
		}
		if resolved.LicenseID != store.license.ID {
			t.Errorf("expected license ID %s, got %s", store.license.ID, resolved.LicenseID)
		}
	})

	t.Run("non-active status resolves community", func(t *testing.T) {
		store := &fakeStore{license: testLicense()}
		verifier := &fakeVerifier{result: &VerificationResult{Status: "expired", Plan: "ai-pro"}}
		r := NewResolver(store, verifier, zerolog.Nop())

		if resolved := r.Resolve(context.Background()); resolved.Plan != PlanCommunity {
			t.Errorf("expected community plan, got %s", resolved.Plan)
		}
	})

	t.Run("unrecognized plan string resolves community", func(t *testing.T) {
		store := &fakeStore{license: testLicense()}
		verifier := &fakeVerifier{result: &VerificationResult{Status: "active", Plan: "platinum"}}
		r := NewResolver(store, verifier, zerolog.Nop())

		if resolved := r.Resolve(context.Background()); resolved.Plan != PlanCommunity {
			t.Errorf("expected community plan, got %s", resolved.Plan)
		}
	})
}

func TestResolveActiveLicense(t *testing.T) {
	tests := []struct {
		remote string
		expect Plan
	}{
		{"community", PlanCommunity},
		{"pro", PlanPro},
		{"ai-pro", PlanAIPro},
	}

	for _, test := range tests {
		t.Run(test.remote, func(t *testing.T) {
			store := &fakeStore{license: testLicense()}
			verifier := &fakeVerifier{result: &VerificationResult{Status: "active", Plan: test.remote}}
			r := NewResolver(store, verifier, zerolog.Nop())

			resolved := r.Resolve(context.Background())
			if resolved.Plan != test.expect {
				t.Errorf("expected plan %s, got %s", test.expect, resolved.Plan)
			}
			if resolved.OwnerID != "owner-1" {
				t.Errorf("expected owner ID to carry through, got %q", resolved.OwnerID)
			}
		})
	}
}

func TestResolveRunsOnce(t *testing.T) {
	store := &fakeStore{license: testLicense()}
	verifier := &fakeVerifier{result: &VerificationResult{Status: "active", Plan: "ai-pro"}}
	r := NewResolver(store, verifier, zerolog.Nop())

	first := r.Resolve(context.Background())
	second := r.Resolve(context.Background())

	if first != second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
	if store.calls != 1 {
		t.Errorf("expected one store lookup, got %d", store.calls)
	}
	if verifier.calls != 1 {
		t.Errorf("expected one verification call, got %d", verifier.calls)
	}
}

func TestCurrentBeforeResolve(t *testing.T) {
	r := NewResolver(&fakeStore{}, &fakeVerifier{}, zerolog.Nop())

	resolved, ok := r.Current()
	if ok {
		t.Error("expected Current to report unresolved")
	}
	if resolved.Plan != PlanCommunity {
		t.Errorf("expected community placeholder while resolving, got %s", resolved.Plan)
	}
}

func TestSubscribe(t *testing.T) {
	store := &fakeStore{license: testLicense()}
	verifier := &fakeVerifier{result: &VerificationResult{Status: "active", Plan: "pro"}}
	r := NewResolver(store, verifier, zerolog.Nop())

	t.Run("before resolution", func(t *testing.T) {
		ch := r.Subscribe()
		go r.Resolve(context.Background())

		select {
		case resolved := <-ch:
			if resolved.Plan != PlanPro {
				t.Errorf("expected pro plan, got %s", resolved.Plan)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for subscription")
		}
	})

	t.Run("after resolution", func(t *testing.T) {
		select {
		case resolved := <-r.Subscribe():
			if resolved.Plan != PlanPro {
				t.Errorf("expected pro plan, got %s", resolved.Plan)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for cached value")
		}
	})
}
