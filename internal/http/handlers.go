package http

import (
	"context"
	"net/http"
	"time"

	"finfinance/internal/core"
	applog "finfinance/internal/log"
)

const defaultHistoryMonths = 11

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Ping(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
		return
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

// Profile

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProfile(r.Context())
	if err != nil {
		FromError(r.Context(), applog.OpRead, err).Write(w)
		return
	}
	NewJSONResponse().Data(p).Write(w)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p core.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		FromError(r.Context(), applog.OpUpdate, err).Write(w)
		return
	}
	p.Name = sanitizeInput(p.Name)
	saved, err := s.svc.SaveProfile(r.Context(), p)
	if err != nil {
		FromError(r.Context(), applog.OpUpdate, err).Write(w)
		return
	}
	NewJSONResponse().Data(saved).Write(w)
}

// Analysis

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		FromError(r.Context(), applog.OpRead, err).Write(w)
		return
	}
	d, err := s.svc.Dashboard(r.Context(), params.Year, params.Month)
	if err != nil {
		FromError(r.Context(), applog.OpRead, err).Write(w)
		return
	}
	NewJSONResponse().Data(d).Write(w)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		FromError(r.Context(), applog.OpAnalyze, err).Write(w)
		return
	}
	a, err := s.svc.Analysis(r.Context(), params.Year, params.Month)
	if err != nil {
		FromError(r.Context(), applog.OpAnalyze, err).Write(w)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Period analysed",
		applog.NewFields().WithPeriod(a.Period.String()).WithScore(a.Score, string(a.Diagnosis.Tier)).ToSlice()...)
	NewJSONResponse().Data(a).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	months, err := ParseMonthsParam(r.URL.Query(), defaultHistoryMonths)
	if err != nil {
		FromError(r.Context(), applog.OpRead, err).Write(w)
		return
	}
	h, err := s.svc.History(r.Context(), months)
	if err != nil {
		FromError(r.Context(), applog.OpRead, err).Write(w)
		return
	}
	NewJSONResponse().Data(h).Write(w)
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.svc.Engine().Targets()).Write(w)
}

// Alerts

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.ListAlerts(r.Context())
	if err != nil {
		FromError(r.Context(), applog.OpList, err).Write(w)
		return
	}
	if alerts == nil {
		alerts = []core.Alert{}
	}
	NewJSONResponse().Data(alerts).Write(w)
}

func (s *Server) handleMarkAlertsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.MarkAlertsRead(r.Context()); err != nil {
		FromError(r.Context(), applog.OpUpdate, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
