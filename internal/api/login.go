package api

import (
	"encoding/json"
	"net/http"

	"panel/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func loginHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}

		fe := fieldErrors{}
		if checkRequired(fe, "email", req.Email) {
			checkEmail(fe, "email", req.Email)
		}
		checkRequired(fe, "password", req.Password)
		if !fe.empty() {
			reg.logResponse(r, http.StatusUnprocessableEntity)
			writeValidation(w, fe)
			return
		}

		token, user, ok := reg.Login(req.Email, req.Password)
		if !ok {
			reg.logResponse(r, http.StatusUnauthorized)
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if reg.injectFailure(w, r) {
			return
		}
		reg.logResponse(r, http.StatusOK)
		writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
	})
}
