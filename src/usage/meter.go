package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/rs/zerolog"
)

// notifyChannel is the postgres NOTIFY channel carrying usage updates as
// "licenseID:total" payloads.
const notifyChannel = "inkwell_usage"

// Meter durably accumulates tokens consumed through the remote proxy.
type Meter struct {
	db     *pg.DB
	logger zerolog.Logger
}

func NewMeter(db *pg.DB, logger zerolog.Logger) *Meter {
	return &Meter{
		db:     db,
		logger: logger,
	}
}

// Record adds delta tokens to the license's stored total. The increment is
// a single upsert statement, so concurrent sessions writing the same
// license land on the server-side sum and never lose updates.
func (m *Meter) Record(ctx context.Context, licenseID string, delta int64) error {
	if licenseID == "" {
		return errors.New("licenseID cannot be empty")
	}
	if delta <= 0 {
		return fmt.Errorf("usage delta must be positive, got %d", delta)
	}

	record := &Record{
		LicenseID:   licenseID,
		TotalTokens: delta,
		LastUpdated: time.Now(),
	}
	_, err := m.db.ModelContext(ctx, record).
		OnConflict("(license_id) DO UPDATE").
		Set("total_tokens = usage_record.total_tokens + EXCLUDED.total_tokens").
		Set("last_updated = EXCLUDED.last_updated").
		Returning("total_tokens").
		Insert()
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	// Listeners missing a notification is tolerable; the stored total is
	// already committed and the next update carries the running sum.
	payload := fmt.Sprintf("%s:%d", licenseID, record.TotalTokens)
	if _, err := m.db.ExecContext(ctx, "SELECT pg_notify(?, ?)", notifyChannel, payload); err != nil {
		m.logger.Debug().Msgf("failed to notify usage listeners: %s", err.Error())
	}

	return nil
}

// Total returns the license's current stored total, zero when no usage has
// been recorded yet.
func (m *Meter) Total(ctx context.Context, licenseID string) (int64, error) {
	record := new(Record)
	err := m.db.ModelContext(ctx, record).Where("license_id = ?", licenseID).Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return record.TotalTokens, nil
}

// Stream delivers the license's running token total: first the current
// stored value, then every committed increment, including ones written by
// other processes. The feed rides on LISTEN/NOTIFY, not polling. The
// channel closes when ctx is done.
func (m *Meter) Stream(ctx context.Context, licenseID string) (<-chan int64, error) {
	if licenseID == "" {
		return nil, errors.New("licenseID cannot be empty")
	}

	total, err := m.Total(ctx, licenseID)
	if err != nil {
		return nil, err
	}

	listener := m.db.Listen(ctx, notifyChannel)
	out := make(chan int64, 1)
	out <- total

	go func() {
		defer close(out)
		defer listener.Close()

		notifications := listener.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-notifications:
				if !ok {
					return
				}
				id, total, err := parseNotification(n.Payload)
				if err != nil {
					m.logger.Debug().Msgf("dropping usage notification: %s", err.Error())
					continue
				}
				if id != licenseID {
					continue
				}
				select {
				case out <- total:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func parseNotification(payload string) (string, int64, error) {
	i := strings.LastIndex(payload, ":")
	if i < 1 {
		return "", 0, fmt.Errorf("malformed usage notification: %q", payload)
	}
	total, err := strconv.ParseInt(payload[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed usage notification: %q", payload)
	}
	return payload[:i], total, nil
}
