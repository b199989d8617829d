package store

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/multistore/adminkit/pkg/tenant"
	"github.com/multistore/adminkit/pkg/tenantdb"
)

// Router exposes the administrative store-lifecycle API. Mount it outside
// the tenant gateway: these endpoints operate on stores, they do not run
// inside one.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/stores", createStore(svc))
	r.Get("/stores/{id}", getStore(svc))
	r.Post("/stores/{id}/suspend", suspendStore(svc))
	r.Post("/stores/{id}/reactivate", reactivateStore(svc))
	r.Put("/stores/{id}/plan", changePlan(svc))
	r.Put("/stores/{id}/maintenance", setMaintenance(svc))
	r.Delete("/stores/{id}", deleteStore(svc))

	return r
}

func createStore(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params CreateStoreParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
			return
		}

		record, err := svc.CreateStore(r.Context(), params)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, record)
	}
}

func getStore(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.GetStore(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func suspendStore(svc *Service) http.HandlerFunc {
	type request struct {
		Reason string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		_ = json.NewDecoder(r.Body).Decode(&req)

		if err := svc.SuspendStore(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func reactivateStore(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ReactivateStore(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func changePlan(svc *Service) http.HandlerFunc {
	type request struct {
		PlanType string `json:"plan_type"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
			return
		}

		if err := svc.ChangePlan(r.Context(), chi.URLParam(r, "id"), req.PlanType); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setMaintenance(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var mc tenant.MaintenanceConfig
		if err := json.NewDecoder(r.Body).Decode(&mc); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
			return
		}

		if err := svc.SetMaintenance(r.Context(), chi.URLParam(r, "id"), mc); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteStore(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteStore(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrStoreNotFound):
		writeError(w, http.StatusNotFound, "STORE_NOT_FOUND", "store not found")
	case errors.Is(err, ErrDomainTaken):
		writeError(w, http.StatusConflict, "DOMAIN_EXISTS", "domain is already in use")
	case errors.Is(err, ErrUnknownPlan):
		writeError(w, http.StatusBadRequest, "UNKNOWN_PLAN", "unknown plan type")
	case errors.Is(err, ErrMissingField):
		writeError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "store_name, domain and subdomain are required")
	case errors.Is(err, tenantdb.ErrProvisioningFailed):
		writeError(w, http.StatusInternalServerError, "PROVISIONING_FAILED", "failed to provision store database")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
