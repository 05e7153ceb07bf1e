package api

import "net/http"

// flakyHandler fails at the registry's configured flaky rate regardless
// of the global failure percentage. It exists so clients can exercise
// retry handling against a predictable failure distribution.
func flakyHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		if reg.inject.FailWith(reg.flakyPct) {
			w.Header().Set("Retry-After", "1")
			reg.logResponse(r, http.StatusServiceUnavailable)
			writeError(w, http.StatusServiceUnavailable, "flaky endpoint failure")
			return
		}
		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
