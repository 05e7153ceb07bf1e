package api

import (
	"encoding/json"
	"net/http"
)

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

func profileHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "missing auth context")
			return
		}

		switch r.Method {
		case http.MethodGet:
			if reg.injectFailure(w, r) {
				return
			}
			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, user)
		case http.MethodPut:
			var req updateProfileRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			fe := fieldErrors{}
			if checkRequired(fe, "firstName", req.FirstName) {
				checkMinLen(fe, "firstName", req.FirstName, 2)
				checkMaxLen(fe, "firstName", req.FirstName, 50)
			}
			if checkRequired(fe, "lastName", req.LastName) {
				checkMinLen(fe, "lastName", req.LastName, 2)
				checkMaxLen(fe, "lastName", req.LastName, 50)
			}
			checkMaxLen(fe, "company", req.Company, 100)
			checkPhone(fe, "phone", req.Phone)
			if !fe.empty() {
				reg.logResponse(r, http.StatusUnprocessableEntity)
				writeValidation(w, fe)
				return
			}
			if reg.injectFailure(w, r) {
				return
			}

			reg.mu.Lock()
			for i := range reg.users {
				if reg.users[i].user.ID == user.ID {
					reg.users[i].user.FirstName = req.FirstName
					reg.users[i].user.LastName = req.LastName
					reg.users[i].user.Company = req.Company
					reg.users[i].user.Phone = req.Phone
					*user = reg.users[i].user
					break
				}
			}
			reg.mu.Unlock()

			reg.logResponse(r, http.StatusOK)
			writeJSON(w, http.StatusOK, user)
		default:
			methodNotAllowed(w)
		}
	})
}
