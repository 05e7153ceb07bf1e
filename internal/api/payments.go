package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"panel/internal/models"
)

type addPaymentMethodRequest struct {
	CardNumber string `json:"cardNumber"`
	ExpMonth   int    `json:"expMonth"`
	ExpYear    int    `json:"expYear"`
	CVC        string `json:"cvc"`
	HolderName string `json:"holderName"`
}

func paymentsCollectionHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if reg.injectFailure(w, r) {
				return
			}
			reg.mu.Lock()
			items := append([]models.PaymentMethod(nil), reg.payments...)
			reg.mu.Unlock()
			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, map[string]any{"paymentMethods": items})
		case http.MethodPost:
			var req addPaymentMethodRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			fe := fieldErrors{}
			if checkRequired(fe, "cardNumber", req.CardNumber) {
				checkCardNumber(fe, "cardNumber", req.CardNumber)
			}
			checkRequired(fe, "cvc", req.CVC)
			checkCVC(fe, "cvc", req.CVC)
			if checkRequired(fe, "holderName", req.HolderName) {
				checkMinLen(fe, "holderName", req.HolderName, 2)
				checkMaxLen(fe, "holderName", req.HolderName, 100)
			}
			if req.ExpMonth < 1 || req.ExpMonth > 12 {
				fe.add("expMonth", "expMonth must be between 1 and 12")
			}
			now := time.Now().UTC()
			if req.ExpYear < now.Year() || req.ExpYear > now.Year()+20 {
				fe.add("expYear", "expYear must be a valid future year")
			} else if req.ExpYear == now.Year() && req.ExpMonth >= 1 && req.ExpMonth <= 12 && time.Month(req.ExpMonth) < now.Month() {
				fe.add("expMonth", "card is already expired")
			}
			if !fe.empty() {
				reg.logResponse(r, http.StatusUnprocessableEntity)
				writeValidation(w, fe)
				return
			}
			if reg.injectFailure(w, r) {
				return
			}

			digits := strings.ReplaceAll(strings.ReplaceAll(req.CardNumber, " ", ""), "-", "")
			method := models.PaymentMethod{
				ID:       "pm_" + uuid.NewString()[:8],
				Type:     "card",
				Brand:    cardBrand(digits),
				Last4:    digits[len(digits)-4:],
				ExpMonth: req.ExpMonth,
				ExpYear:  req.ExpYear,
				AddedAt:  nowRFC3339(),
			}
			reg.mu.Lock()
			method.IsDefault = len(reg.payments) == 0
			reg.payments = append(reg.payments, method)
			reg.mu.Unlock()

			reg.logResponse(r, http.StatusCreated)
			writeJSON(w, http.StatusCreated, method)
		default:
			methodNotAllowed(w)
		}
	})
}

func paymentsScopedHandler(reg *Registry) http.Handler {
	setDefault := paymentSetDefaultHandler(reg)
	remove := paymentDeleteHandler(reg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/default") {
			setDefault.ServeHTTP(w, r)
			return
		}
		remove.ServeHTTP(w, r)
	})
}

func paymentDeleteHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/payment-methods/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		for i := range reg.payments {
			if reg.payments[i].ID != id {
				continue
			}
			if reg.payments[i].IsDefault {
				reg.logResponse(r, http.StatusConflict)
				writeError(w, http.StatusConflict, "cannot delete the default payment method")
				return
			}
			reg.payments = append(reg.payments[:i], reg.payments[i+1:]...)
			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
		reg.logResponse(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, "no payment method with id "+id)
	})
}

func paymentSetDefaultHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		id := pathTail(r.URL.Path, "/api/payment-methods/")
		id = strings.TrimSuffix(id, "/default")
		id = strings.Trim(id, "/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing payment method id")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}

		reg.mu.Lock()
		defer reg.mu.Unlock()
		found := -1
		for i := range reg.payments {
			if reg.payments[i].ID == id {
				found = i
				break
			}
		}
		if found < 0 {
			reg.logResponse(r, http.StatusNotFound)
			writeError(w, http.StatusNotFound, "no payment method with id "+id)
			return
		}
		for i := range reg.payments {
			reg.payments[i].IsDefault = i == found
		}
		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, reg.payments[found])
	})
}

// cardBrand guesses the network from the leading digits, enough for a
// display label.
func cardBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return "mastercard"
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "amex"
	default:
		return "card"
	}
}
