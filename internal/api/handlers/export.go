package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/render"
	"github.com/dvloznov/finance-dashboard/internal/report"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/go-chi/chi/v5"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePNG  = "image/png"
)

// ExportCSV handles GET /api/export.csv
// The filtered rows are written in the store's CSV format.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ds, _, ok := h.filtered(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := store.WriteCSV(&buf, ds); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, contentTypeCSV, "financial_data.csv", buf.Bytes())
}

// ExportXLSX handles GET /api/export.xlsx
func (h *DashboardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	ds, _, ok := h.filtered(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, ds, analyser.ComputeKPIs(ds), analyser.GetSummaryStats(ds)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, contentTypeXLSX, "financial_data.xlsx", buf.Bytes())
}

// Chart handles GET /api/charts/{chart}.png
// An empty selection yields 204 since there is nothing to draw.
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	name := render.ChartName(chi.URLParam(r, "chart"))
	if !isChart(name) {
		middleware.WriteError(w, r, http.StatusNotFound, "Unknown chart "+strconv.Quote(string(name)))
		return
	}
	g, err := ParseGranularity(r.URL.Query())
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ds, _, ok := h.filtered(w, r)
	if !ok {
		return
	}

	p, found, err := render.ForDataset(name, ds, g)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, p, render.DefaultWidth, render.DefaultHeight); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Msg("Failed to write chart")
	}
}

func isChart(name render.ChartName) bool {
	for _, c := range render.Charts {
		if c == name {
			return true
		}
	}
	return false
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
