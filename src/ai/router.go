package ai

import (
	"context"

	"inkwell-entitlement/src/license"

	"github.com/rs/zerolog"
)

// Request is a single generation request. The prompt arrives already
// rendered from one of the editor's templates.
type Request struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

// Response is the generated text plus, for proxy generations, the token
// count the proxy charged for it.
type Response struct {
	Text        string `json:"text"`
	TotalTokens int64  `json:"totalTokens,omitempty"`
}

// Recorder commits tokens consumed through the proxy. Satisfied by
// usage.Meter.
type Recorder interface {
	Record(ctx context.Context, licenseID string, delta int64) error
}

// Router dispatches generation requests to the backend the resolved plan
// pays for: the in-process pipeline for pro, the metered proxy for ai_pro.
type Router struct {
	local  LocalBackend
	proxy  *ProxyClient
	meter  Recorder
	logger zerolog.Logger
}

func NewRouter(local LocalBackend, proxy *ProxyClient, meter Recorder, logger zerolog.Logger) *Router {
	return &Router{
		local:  local,
		proxy:  proxy,
		meter:  meter,
		logger: logger,
	}
}

// Generate runs the request against the plan's backend. Community plans
// (and anything unrecognized) are rejected before any backend or network
// call; that short-circuit is a cost control, not cosmetics.
func (rt *Router) Generate(ctx context.Context, resolved license.Resolved, req Request) (*Response, error) {
	switch resolved.Plan {
	case license.PlanPro:
		text, err := rt.local.Generate(ctx, req.Prompt, req.Context)
		if err != nil {
			return nil, &LocalError{Err: err}
		}
		return &Response{Text: text}, nil

	case license.PlanAIPro:
		res, err := rt.performGeneration(ctx, resolved, req)
		if err != nil {
			return nil, err
		}
		rt.commitUsage(ctx, resolved.LicenseID, res.TotalTokens)
		return res, nil

	default:
		return nil, ErrEntitlement
	}
}

// performGeneration is the first phase of the proxy path: the call itself,
// with no metering side effects.
func (rt *Router) performGeneration(ctx context.Context, resolved license.Resolved, req Request) (*Response, error) {
	body, err := rt.proxy.Generate(ctx, resolved.LicenseID, resolved.OwnerID, req.Prompt)
	if err != nil {
		return nil, err
	}
	return &Response{
		Text:        body.Response,
		TotalTokens: body.Usage.TotalTokens,
	}, nil
}

// commitUsage is the second phase: record the tokens a successful response
// reported, exactly once. A failed commit is logged rather than returned;
// the generation already succeeded and a caller retry would double-charge
// the license.
func (rt *Router) commitUsage(ctx context.Context, licenseID string, tokens int64) {
	if tokens <= 0 {
		return
	}
	if err := rt.meter.Record(ctx, licenseID, tokens); err != nil {
		rt.logger.Error().Msgf("failed to record %d tokens for license %s: %s", tokens, licenseID, err.Error())
	}
}
