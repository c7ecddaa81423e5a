package usage

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestRecordValidation(t *testing.T) {
	m := NewMeter(nil, zerolog.Nop())

	t.Run("rejects an empty license ID", func(t *testing.T) {
		if err := m.Record(context.Background(), "", 10); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("rejects non-positive deltas", func(t *testing.T) {
		for _, delta := range []int64{0, -1, -120} {
			if err := m.Record(context.Background(), "lic-1", delta); err == nil {
				t.Errorf("expected an error for delta %d", delta)
			}
		}
	})
}

func TestParseNotification(t *testing.T) {
	t.Run("parses a well-formed payload", func(t *testing.T) {
		id, total, err := parseNotification("7d2f1c3a-7547-49c2-acfb-fa7b8357ab03:1200")
		if err != nil {
			t.Fatal(err)
		}
		if id != "7d2f1c3a-7547-49c2-acfb-fa7b8357ab03" {
			t.Errorf("unexpected license ID: %q", id)
		}
		if total != 1200 {
			t.Errorf("unexpected total: %d", total)
		}
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		for _, payload := range []string{"", "lic-1", ":5", "lic-1:", "lic-1:abc"} {
			if _, _, err := parseNotification(payload); err == nil {
				t.Errorf("expected an error for %q", payload)
			}
		}
	})
}
