package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/store"
)

// DashboardHandler serves KPIs, series and statistics of the loaded dataset.
type DashboardHandler struct {
	svc *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Health handles GET /health
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":         "healthy",
		"time":           time.Now().Format(time.RFC3339),
		"dataset_loaded": false,
	}
	if ds, err := h.svc.Snapshot(); err == nil {
		resp["dataset_loaded"] = true
		resp["rows"] = ds.Len()
	}
	middleware.WriteJSON(w, r, http.StatusOK, resp)
}

// Dataset handles GET /api/dataset
func (h *DashboardHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.Snapshot()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, r, http.StatusOK, toDataset(h.svc.Location(), ds))
}

// Dashboard handles GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFromRequest(w, r)
	if !ok {
		return
	}
	g, err := ParseGranularity(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.svc.View(r.Context(), f, g)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, r, http.StatusOK, toDashboard(v))
}

// KPIs handles GET /api/kpis
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	ds, f, ok := h.filtered(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"filter": toFilter(f),
		"rows":   ds.Len(),
		"kpis":   toKPIs(analyser.ComputeKPIs(ds)),
	})
}

// RevenueSeries handles GET /api/series/revenue
func (h *DashboardHandler) RevenueSeries(w http.ResponseWriter, r *http.Request) {
	g, err := ParseGranularity(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ds, _, ok := h.filtered(w, r)
	if !ok {
		return
	}

	series := toRevenue(analyser.RevenueTimeSeries(ds, g))
	if series == nil {
		series = &RevenueSeriesResponse{Granularity: string(g), Points: []RevenuePointResponse{}}
	}
	middleware.WriteJSON(w, r, http.StatusOK, series)
}

// ExpenseSeries handles GET /api/series/expenses
func (h *DashboardHandler) ExpenseSeries(w http.ResponseWriter, r *http.Request) {
	ds, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	totals := toExpenses(analyser.ExpenseBreakdown(ds))
	middleware.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"categories": totals,
		"count":      len(totals),
	})
}

// CostDrivers handles GET /api/series/cost-drivers
func (h *DashboardHandler) CostDrivers(w http.ResponseWriter, r *http.Request) {
	ds, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	m := toCostDrivers(analyser.CostDriversByDepartment(ds))
	if m == nil {
		m = &CostDriversResponse{
			Departments: []string{},
			Categories:  []string{},
			Values:      [][]float64{},
			Totals:      []float64{},
		}
	}
	middleware.WriteJSON(w, r, http.StatusOK, m)
}

// Summary handles GET /api/summary
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ds, _, ok := h.filtered(w, r)
	if !ok {
		return
	}
	s := toSummary(analyser.GetSummaryStats(ds))
	if s == nil {
		s = &SummaryResponse{ByRegion: []GroupStatsResponse{}, ByDepartment: []GroupStatsResponse{}}
	}
	middleware.WriteJSON(w, r, http.StatusOK, s)
}

// filtered parses the filter and applies it to the snapshot, writing the error
// response itself when it returns false.
func (h *DashboardHandler) filtered(w http.ResponseWriter, r *http.Request) (*domain.Dataset, analyser.Filter, bool) {
	f, ok := filterFromRequest(w, r)
	if !ok {
		return nil, analyser.Filter{}, false
	}
	ds, err := h.svc.Filtered(f)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, analyser.Filter{}, false
	}
	return ds, f, true
}

func filterFromRequest(w http.ResponseWriter, r *http.Request) (analyser.Filter, bool) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
		return analyser.Filter{}, false
	}
	return f, true
}

// writeServiceError answers 503 with the regenerate hint while no usable dataset is
// loaded, and 500 otherwise.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrDataNotFound) || errors.Is(err, store.ErrMalformedData) {
		middleware.WriteError(w, r, http.StatusServiceUnavailable, store.UserMessage(err))
		return
	}
	log := logger.FromContext(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	middleware.WriteError(w, r, http.StatusInternalServerError, "Internal server error")
}
