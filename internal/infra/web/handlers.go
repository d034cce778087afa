package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/infra/logging"
	"isp-subscription-billing/internal/infra/metrics"
)

type subscriptionView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PackageID  string    `json:"package_id"`
	StartDate  time.Time `json:"start_date"`
	ExpiryDate time.Time `json:"expiry_date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toSubscriptionView(s *model.Subscription) subscriptionView {
	return subscriptionView{
		ID:         s.ID,
		UserID:     s.UserID,
		PackageID:  s.PackageID,
		StartDate:  s.StartDate,
		ExpiryDate: s.ExpiryDate,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "operation failed"})
	}
}

type createSubscriptionRequest struct {
	UserID    string     `json:"user_id"`
	PackageID string     `json:"package_id"`
	StartDate *time.Time `json:"start_date,omitempty"`
	Method    string     `json:"method"`
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sub, err := s.subUC.Create(r.Context(), req.UserID, req.PackageID, req.StartDate, model.PaymentMethod(req.Method))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.IncPaymentsRecorded(req.Method)
	writeJSON(w, http.StatusCreated, toSubscriptionView(sub))
}

type renewSubscriptionRequest struct {
	PackageID string `json:"package_id"`
	Method    string `json:"method"`
}

func (s *Server) handleRenewSubscription(w http.ResponseWriter, r *http.Request) {
	var req renewSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sub, err := s.subUC.Renew(r.Context(), chi.URLParam(r, "id"), req.PackageID, model.PaymentMethod(req.Method))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.IncRenewals()
	metrics.IncPaymentsRecorded(req.Method)
	writeJSON(w, http.StatusOK, toSubscriptionView(sub))
}

type updateSubscriptionRequest struct {
	PackageID string    `json:"package_id"`
	StartDate time.Time `json:"start_date"`
	Status    string    `json:"status"`
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sub, err := s.subUC.Update(r.Context(), chi.URLParam(r, "id"), req.PackageID, req.StartDate, model.SubscriptionStatus(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.IncAdminOverride("correction")
	writeJSON(w, http.StatusOK, toSubscriptionView(sub))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.subUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.IncAdminOverride("delete")
	w.WriteHeader(http.StatusNoContent)
}

type extendExpiryRequest struct {
	ExpiryDate time.Time `json:"expiry_date"`
}

func (s *Server) handleExtendExpiry(w http.ResponseWriter, r *http.Request) {
	var req extendExpiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.subUC.ExtendExpiry(r.Context(), chi.URLParam(r, "id"), req.ExpiryDate); err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.IncAdminOverride("extend_expiry")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := s.subUC.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	subs := make([]subscriptionView, 0, len(data.Subscriptions))
	for _, sub := range data.Subscriptions {
		subs = append(subs, toSubscriptionView(sub))
	}
	writeJSON(w, http.StatusOK, struct {
		Subscriptions []subscriptionView `json:"subscriptions"`
		Users         []*model.User      `json:"users"`
		Packages      []*model.Package   `json:"packages"`
	}{subs, data.Users, data.Packages})
}

func (s *Server) handleUserPayments(w http.ResponseWriter, r *http.Request) {
	pays, err := s.subUC.UserPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Payments []*model.Payment `json:"payments"`
	}{pays})
}

// handleStats serves the business metrics snapshot. An optional `at` query
// parameter (RFC3339) pins the instant; it defaults to the injected clock.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'at' timestamp"})
			return
		}
		now = at
	}

	m, err := s.statsUC.Snapshot(r.Context(), now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		At             time.Time `json:"at"`
		ActiveCount    int       `json:"active_count"`
		TotalRevenue   int64     `json:"total_revenue"`
		MonthlyRevenue int64     `json:"monthly_revenue"`
	}{now, m.ActiveCount, m.TotalRevenue, m.MonthlyRevenue})
}

type packageRequest struct {
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	ValidityDays int    `json:"validity_days"`
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := s.pkgUC.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Packages []*model.Package `json:"packages"`
	}{pkgs})
}

func (s *Server) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	pkg, err := s.pkgUC.Create(r.Context(), req.Name, req.Price, req.ValidityDays)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

func (s *Server) handleUpdatePackage(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	pkg, err := s.pkgUC.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Price, req.ValidityDays)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	if err := s.pkgUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
