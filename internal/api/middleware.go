package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"panel/internal/auth"
	"panel/internal/faultinject"
	"panel/internal/models"
	"panel/internal/ratelimit"
)

type contextKey string

const userContextKey contextKey = "user"

var defaultRateRules = struct {
	Reads    ratelimit.Rule
	Writes   ratelimit.Rule
	Payments ratelimit.Rule
}{
	Reads:    ratelimit.Rule{Name: "reads", Limit: 600, Window: time.Minute},
	Writes:   ratelimit.Rule{Name: "writes", Limit: 120, Window: time.Minute},
	Payments: ratelimit.Rule{Name: "payments", Limit: 10, Window: time.Minute},
}

// authRequired resolves the bearer token to a user before anything else
// runs; a missing or unknown credential is a uniform 401.
func (reg *Registry) authRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			reg.logResponse(r, http.StatusUnauthorized)
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, ok := reg.sessions.Resolve(token)
		if !ok {
			reg.logResponse(r, http.StatusUnauthorized)
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		user, ok := reg.userByID(userID)
		if !ok {
			reg.logResponse(r, http.StatusUnauthorized)
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(ctx context.Context) *models.User {
	v := ctx.Value(userContextKey)
	user, _ := v.(*models.User)
	return user
}

func (reg *Registry) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "missing auth context")
			return
		}

		now := time.Now().UTC()
		for _, rule := range classifyRateRules(r) {
			key := user.ID + ":" + rule.Name
			res := reg.limiter.Allow(key, rule, now)
			res.ApplyHeaders(w.Header())
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter(now)))
				reg.logResponse(r, http.StatusTooManyRequests)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded: "+rule.Name)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func classifyRateRules(r *http.Request) []ratelimit.Rule {
	rules := make([]ratelimit.Rule, 0, 2)
	if r.Method == http.MethodGet {
		rules = append(rules, defaultRateRules.Reads)
		return rules
	}
	rules = append(rules, defaultRateRules.Writes)
	if r.Method == http.MethodPost && r.URL.Path == "/api/payment-methods" {
		rules = append(rules, defaultRateRules.Payments)
	}
	return rules
}

// withDelay suspends the request for the fault injector's randomized
// latency before the handler runs, per the request's cost class.
func (reg *Registry) withDelay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := reg.inject.Wait(r.Context(), classifyCost(r)); err != nil {
			// Client gave up while we were simulating latency.
			reg.logResponse(r, http.StatusGatewayTimeout)
			writeError(w, http.StatusGatewayTimeout, "request timed out")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func classifyCost(r *http.Request) faultinject.Class {
	if r.Method == http.MethodGet {
		return faultinject.ClassRead
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/payment-methods" {
		return faultinject.ClassPayment
	}
	if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/tickets/") && strings.HasSuffix(r.URL.Path, "/reply") {
		// Uploads carry attachment payloads.
		return faultinject.ClassPayment
	}
	return faultinject.ClassWrite
}

func (reg *Registry) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("mock request")
		next.ServeHTTP(w, r)
	})
}
