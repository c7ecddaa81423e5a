package src

import (
	"context"
	"os"
	"strconv"

	"inkwell-entitlement/src/ai"
	"inkwell-entitlement/src/config"
	"inkwell-entitlement/src/license"
	"inkwell-entitlement/src/mail"
	"inkwell-entitlement/src/server"
	"inkwell-entitlement/src/usage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger zerolog.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

// InitServer wires the entitlement subsystem and starts the API server.
// Plan resolution kicks off in the background; gated routes stay closed
// until it completes.
func InitServer() {
	if err := config.Init(); err != nil {
		logger.Fatal().Msgf("failed to load config: %s", err.Error())
	}

	if level, err := strconv.Atoi(config.LogLevel); err == nil {
		zerolog.SetGlobalLevel(zerolog.Level(level))
	}

	conn, err := InitDB()
	if err != nil {
		logger.Fatal().Msgf("failed to connect to database: %s", err.Error())
	}
	defer conn.Close()

	licenseStore := license.NewPGStore(conn)
	verifier := license.NewVerifyClient(config.VerifyURL)
	resolver := license.NewResolver(licenseStore, verifier, logger)

	meter := usage.NewMeter(conn, logger)
	proxy := ai.NewProxyClient(config.ProxyURL)

	// The editor's generation pipeline registers itself here when running
	// embedded; standalone the local path reports itself unconfigured.
	router := ai.NewRouter(ai.UnconfiguredLocalBackend, proxy, meter, logger)

	ctx := context.Background()
	go resolver.Resolve(ctx)

	go watchUsage(ctx, resolver, licenseStore, meter)

	serve := server.NewServe(logger, licenseStore, resolver, router, meter)
	if err := serve.Init(config.DefaultPort); err != nil {
		logger.Fatal().Msg(err.Error())
	}
}

// watchUsage waits for resolution and, on ai_pro installs, follows the
// usage stream to mail the owner when the warning threshold is crossed.
func watchUsage(ctx context.Context, resolver *license.Resolver, licenseStore license.Store, meter *usage.Meter) {
	resolved := <-resolver.Subscribe()
	if resolved.Plan != license.PlanAIPro {
		return
	}

	onWarn := func(totalTokens int64) {
		lic, err := licenseStore.GetLicense()
		if err != nil || lic == nil || lic.Email == "" {
			logger.Error().Msgf("cannot send usage warning mail for license %s", resolved.LicenseID)
			return
		}
		if err := mail.SendUsageWarningMail(lic.Email, totalTokens, config.AIQuotaTokens); err != nil {
			logger.Error().Msgf("failed to send usage warning mail: %s", err.Error())
		}
	}

	watcher := usage.NewWatcher(meter, config.AIQuotaTokens, config.WarnThresholdPercent, onWarn, logger)
	if err := watcher.Watch(ctx, resolved); err != nil {
		logger.Error().Msgf("usage watcher stopped: %s", err.Error())
	}
}
