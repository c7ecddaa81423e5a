package usage

import (
	"context"

	"inkwell-entitlement/src/license"

	"github.com/rs/zerolog"
)

// ShouldWarn reports whether the installation should surface a usage
// warning: ai_pro plans only, once consumption reaches thresholdPercent of
// the quota. The derivation is pure; it is recomputed on every update.
func ShouldWarn(plan license.Plan, totalTokens, quota int64, thresholdPercent float64) bool {
	if plan != license.PlanAIPro {
		return false
	}
	if quota <= 0 {
		return false
	}
	percentage := float64(totalTokens) / float64(quota) * 100
	return percentage >= thresholdPercent
}

// Streamer is the slice of Meter that Watcher needs.
type Streamer interface {
	Stream(ctx context.Context, licenseID string) (<-chan int64, error)
}

// Watcher follows a license's usage stream and fires the callback once when
// the total first crosses the warning threshold. Totals are monotonic, so
// one crossing per session is all there is.
type Watcher struct {
	meter            Streamer
	quota            int64
	thresholdPercent float64
	onWarn           func(totalTokens int64)
	logger           zerolog.Logger
}

func NewWatcher(meter Streamer, quota int64, thresholdPercent float64, onWarn func(totalTokens int64), logger zerolog.Logger) *Watcher {
	return &Watcher{
		meter:            meter,
		quota:            quota,
		thresholdPercent: thresholdPercent,
		onWarn:           onWarn,
		logger:           logger,
	}
}

// Watch blocks consuming the stream until ctx is done or the stream closes.
// Plans other than ai_pro have nothing to watch.
func (w *Watcher) Watch(ctx context.Context, resolved license.Resolved) error {
	if resolved.Plan != license.PlanAIPro || resolved.LicenseID == "" {
		return nil
	}

	stream, err := w.meter.Stream(ctx, resolved.LicenseID)
	if err != nil {
		return err
	}

	warned := false
	for total := range stream {
		if !warned && ShouldWarn(resolved.Plan, total, w.quota, w.thresholdPercent) {
			w.logger.Info().Msgf("license %s crossed %.0f%% of its token quota (%d of %d)", resolved.LicenseID, w.thresholdPercent, total, w.quota)
			w.onWarn(total)
			warned = true
		}
	}
	return nil
}
