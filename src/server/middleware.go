package server

import (
	"net/http"

	"inkwell-entitlement/src/feature"
	"inkwell-entitlement/src/license"
)

// featureGateMiddleware guards AI routes. While the plan is still
// resolving every request is rejected (fail-closed), and once resolved
// only plans carrying the required feature pass through.
func featureGateMiddleware(resolver *license.Resolver, required feature.Feature) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolved, ok := resolver.Current()
			if !ok {
				http.Error(w, "entitlement is still resolving", http.StatusServiceUnavailable)
				return
			}

			if !feature.Has(resolved.Plan, required) {
				http.Error(w, "current plan does not include this feature", http.StatusPaymentRequired)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

var addCorsHeaders = func(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedHeaders := "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-CSRF-Token"
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
