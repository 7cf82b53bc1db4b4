package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	defaults  generator.Config
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler. defaults supplies the seed and date
// range for fields a generate request leaves out.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, defaults generator.Config, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store:     store,
		publisher: publisher,
		defaults:  defaults,
		log:       log,
	}
}

// GenerateRequest is the body of POST /api/jobs/generate. Every field is optional.
type GenerateRequest struct {
	Seed      *uint64 `json:"seed"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// Generate handles POST /api/jobs/generate
func (h *JobsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	job := &jobs.GenerateDatasetJob{
		Seed:      h.defaults.Seed,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Seed != nil {
		job.Seed = *req.Seed
	}

	cfg, err := dashboard.GenerationConfig(h.defaults, job)
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job.StartDate = cfg.Start.String()
	job.EndDate = cfg.End.String()

	if err := h.publisher.PublishGenerate(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue generate job")
		middleware.WriteError(w, r, http.StatusServiceUnavailable, "Failed to enqueue generate job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Uint64("seed", job.Seed).
		Str("start_date", job.StartDate).
		Str("end_date", job.EndDate).
		Msg("Generate job enqueued")

	middleware.WriteJSON(w, r, http.StatusAccepted, map[string]interface{}{
		"job_id":        job.JobID,
		"status":        job.Status,
		"seed":          job.Seed,
		"start_date":    job.StartDate,
		"end_date":      job.EndDate,
		"expected_rows": cfg.ExpectedRows(),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, r, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, r, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, r, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
