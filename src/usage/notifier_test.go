package usage

import (
	"context"
	"testing"
	"time"

	"inkwell-entitlement/src/license"

	"github.com/rs/zerolog"
)

func TestShouldWarn(t *testing.T) {
	const quota = 5_000_000

	tests := []struct {
		name   string
		plan   license.Plan
		total  int64
		quota  int64
		expect bool
	}{
		{"at threshold", license.PlanAIPro, 3_750_000, quota, true},
		{"one token below threshold", license.PlanAIPro, 3_749_999, quota, false},
		{"over quota", license.PlanAIPro, 6_000_000, quota, true},
		{"zero usage", license.PlanAIPro, 0, quota, false},
		{"pro plan never warns", license.PlanPro, 5_000_000, quota, false},
		{"community plan never warns", license.PlanCommunity, 5_000_000, quota, false},
		{"zero quota never warns", license.PlanAIPro, 5_000_000, 0, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ShouldWarn(test.plan, test.total, test.quota, 75); got != test.expect {
				t.Errorf("ShouldWarn(%s, %d, %d, 75) = %v, expected %v", test.plan, test.total, test.quota, got, test.expect)
			}
		})
	}
}

type fakeStreamer struct {
	totals []int64
	calls  int
}

func (s *fakeStreamer) Stream(context.Context, string) (<-chan int64, error) {
	s.calls++
	ch := make(chan int64, len(s.totals))
	for _, total := range s.totals {
		ch <- total
	}
	close(ch)
	return ch, nil
}

func TestWatcher(t *testing.T) {
	t.Run("fires once on the first crossing", func(t *testing.T) {
		streamer := &fakeStreamer{totals: []int64{100, 3_750_000, 4_000_000}}
		warns := make([]int64, 0)
		w := NewWatcher(streamer, 5_000_000, 75, func(total int64) {
			warns = append(warns, total)
		}, zerolog.Nop())

		resolved := license.Resolved{Plan: license.PlanAIPro, LicenseID: "lic-1"}
		done := make(chan error, 1)
		go func() { done <- w.Watch(context.Background(), resolved) }()

		select {
		case err := <-done:
			if err != nil {
				t.Fatal(err)
			}
		case <-time.After(time.Second):
			t.Fatal("watcher did not finish")
		}

		if len(warns) != 1 {
			t.Fatalf("expected one warning, got %d", len(warns))
		}
		if warns[0] != 3_750_000 {
			t.Errorf("expected the crossing total, got %d", warns[0])
		}
	})

	t.Run("never fires below the threshold", func(t *testing.T) {
		streamer := &fakeStreamer{totals: []int64{100, 200}}
		fired := false
		w := NewWatcher(streamer, 5_000_000, 75, func(int64) { fired = true }, zerolog.Nop())

		if err := w.Watch(context.Background(), license.Resolved{Plan: license.PlanAIPro, LicenseID: "lic-1"}); err != nil {
			t.Fatal(err)
		}
		if fired {
			t.Error("expected no warning")
		}
	})

	t.Run("ignores plans without metered AI", func(t *testing.T) {
		streamer := &fakeStreamer{totals: []int64{9_999_999}}
		w := NewWatcher(streamer, 5_000_000, 75, func(int64) {
			t.Error("callback should not fire")
		}, zerolog.Nop())

		if err := w.Watch(context.Background(), license.Resolved{Plan: license.PlanPro, LicenseID: "lic-1"}); err != nil {
			t.Fatal(err)
		}
		if streamer.calls != 0 {
			t.Errorf("expected no stream subscription, got %d", streamer.calls)
		}
	})
}
