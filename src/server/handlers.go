package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"inkwell-entitlement/src/ai"
	"inkwell-entitlement/src/config"
	"inkwell-entitlement/src/feature"
	"inkwell-entitlement/src/license"
	"inkwell-entitlement/src/mail"
	"inkwell-entitlement/src/usage"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/customer"
	"github.com/stripe/stripe-go/v74/webhook"
)

func handleHealth(_ appContext, w http.ResponseWriter, _ *http.Request) (int, error) {
	w.WriteHeader(200)
	w.Write([]byte("All Good 🖋️"))
	return http.StatusOK, nil
}

// EntitlementRes reports the session's resolved plan and features. While
// resolution is still running it reports the community plan with no
// features and resolved=false.
type EntitlementRes struct {
	Plan     license.Plan      `json:"plan"`
	Resolved bool              `json:"resolved"`
	Features []feature.Feature `json:"features"`
}

func handleEntitlement(ctx appContext, w http.ResponseWriter, _ *http.Request) (int, error) {
	resolved, ok := ctx.resolver.Current()

	res := EntitlementRes{
		Plan:     resolved.Plan,
		Resolved: ok,
		Features: []feature.Feature{},
	}
	if ok {
		res.Features = feature.For(resolved.Plan)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
	return http.StatusOK, nil
}

func handleGenerate(ctx appContext, w http.ResponseWriter, req *http.Request) (int, error) {
	var genReq ai.Request

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&genReq); err != nil {
		return http.StatusBadRequest, errors.New("JSON body missing or malformed")
	}

	if genReq.Prompt == "" {
		return http.StatusBadRequest, errors.New("prompt cannot be empty")
	}

	resolved, ok := ctx.resolver.Current()
	if !ok {
		return http.StatusServiceUnavailable, errors.New("entitlement is still resolving")
	}

	res, err := ctx.router.Generate(req.Context(), resolved, genReq)
	if err != nil {
		var proxyErr *ai.ProxyError
		var localErr *ai.LocalError
		switch {
		case errors.Is(err, ai.ErrEntitlement):
			return http.StatusPaymentRequired, err
		case errors.As(err, &proxyErr):
			return http.StatusBadGateway, err
		case errors.As(err, &localErr):
			return http.StatusInternalServerError, err
		default:
			return http.StatusInternalServerError, err
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
	return http.StatusOK, nil
}

// UsageRes is the point-in-time usage report for a license.
type UsageRes struct {
	LicenseID   string `json:"licenseID"`
	TotalTokens int64  `json:"totalTokens"`
	Quota       int64  `json:"quota"`
	Warn        bool   `json:"warn"`
}

func handleGetUsage(ctx appContext, w http.ResponseWriter, req *http.Request) (int, error) {
	vars := mux.Vars(req)
	licenseID := vars["licenseID"]

	if licenseID == "" {
		return http.StatusBadRequest, errors.New("licenseID path parameter was empty")
	}

	total, err := ctx.meter.Total(req.Context(), licenseID)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to get usage: %v", err)
	}

	resolved, _ := ctx.resolver.Current()
	res := UsageRes{
		LicenseID:   licenseID,
		TotalTokens: total,
		Quota:       config.AIQuotaTokens,
		Warn:        usage.ShouldWarn(resolved.Plan, total, config.AIQuotaTokens, config.WarnThresholdPercent),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
	return http.StatusOK, nil
}

func handleStreamUsage(ctx appContext, w http.ResponseWriter, req *http.Request) (int, error) {
	vars := mux.Vars(req)
	licenseID := vars["licenseID"]

	if licenseID == "" {
		return http.StatusBadRequest, errors.New("licenseID path parameter was empty")
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		return http.StatusInternalServerError, errors.New("streaming is not supported")
	}

	stream, err := ctx.meter.Stream(req.Context(), licenseID)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to open usage stream: %v", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for total := range stream {
		fmt.Fprintf(w, "data: %d\n\n", total)
		flusher.Flush()
	}

	return http.StatusOK, nil
}

// handleWebhook provisions the installation's license from Stripe events.
// Creation happens exactly once, at checkout completion; later events never
// rewrite the record this subsystem resolves from.
func handleWebhook(ctx appContext, w http.ResponseWriter, req *http.Request) (int, error) {
	const MaxBodyBytes = int64(65536)
	req.Body = http.MaxBytesReader(w, req.Body, MaxBodyBytes)
	payload, err := io.ReadAll(req.Body)
	if err != nil {
		return http.StatusServiceUnavailable, fmt.Errorf("error reading request body: %v", err)
	}

	endpointSecret := config.StripeWebhookSecret
	event, err := webhook.ConstructEvent(payload, req.Header.Get("Stripe-Signature"), endpointSecret)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("error verifying webhook signature: %v", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return http.StatusBadRequest, fmt.Errorf("error parsing webhook JSON: %v", err)
		}

		stripeID := session.Customer.ID
		email := session.CustomerDetails.Email

		existing, err := ctx.licenseStore.GetLicenseByStripeID(stripeID)
		if err != nil {
			return http.StatusInternalServerError, fmt.Errorf("error fetching license: %v", err)
		}
		if existing != nil {
			ctx.logger.Debug().Msgf("license %s already provisioned for customer %s", existing.ID, stripeID)
			return http.StatusOK, nil
		}

		licenseID := license.GenerateKey()
		ctx.logger.Info().Msgf("generating new license: %s", licenseID)

		lic := &license.License{
			ID:        licenseID,
			OwnerID:   stripeID,
			Email:     email,
			StripeID:  stripeID,
			CreatedAt: time.Now(),
		}

		if err := ctx.licenseStore.InsertLicense(lic); err != nil {
			return http.StatusInternalServerError, fmt.Errorf("error creating license: %v", err)
		}

		stripe.Key = config.StripeKey
		metadata := map[string]string{
			"license": licenseID,
		}
		if _, err := customer.Update(stripeID, &stripe.CustomerParams{
			Params: stripe.Params{Metadata: metadata},
		}); err != nil {
			return http.StatusInternalServerError, fmt.Errorf("error adding license to customer metadata: %v", err)
		}

		if err := mail.SendLicenseMail(lic.Email, lic.ID); err != nil {
			// TODO: retry sending email so the owner can get their license.
			return http.StatusInternalServerError, fmt.Errorf("error sending license email: %v", err)
		}
	case "customer.subscription.updated":
		// Plan changes take effect at the next session's resolution; there
		// is nothing to rewrite here.
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return http.StatusBadRequest, fmt.Errorf("error parsing webhook JSON: %v", err)
		}
		ctx.logger.Info().Msgf("subscription %s for customer %s updated (status: %s)", sub.ID, sub.Customer.ID, sub.Status)
	default:
		ctx.logger.Debug().Msgf("unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
	return http.StatusOK, nil
}
