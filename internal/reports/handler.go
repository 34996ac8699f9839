package reports

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencivic/infrawatch/internal/storage"
	"github.com/opencivic/infrawatch/pkg/logging"
)

// Handler handles HTTP requests for reports.
type Handler struct {
	service *Service
	blobs   *storage.BlobStore
	logger  *logging.Logger
}

// NewHandler creates a reports handler.
func NewHandler(service *Service, blobs *storage.BlobStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, blobs: blobs, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

// Submit handles POST /submit-report.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	report, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCategory),
			errors.Is(err, ErrMissingDescription),
			errors.Is(err, ErrMissingLocation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("submission failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":          "success",
		"id":              report.ID,
		"risk_assessment": report.RiskAssessment,
	})
}

// List handles GET /reports.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []*Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "reports": reports})
}

// UpdateStatus handles POST /reports/{reportID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	if reportID == "" {
		writeError(w, http.StatusBadRequest, "missing report id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	if err := h.service.UpdateStatus(r.Context(), reportID, body.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrReportNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("failed to update status", "error", err, "report_id", reportID)
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Status updated"})
}

// AddFeedback handles POST /reports/{reportID}/feedback.
func (h *Handler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	if reportID == "" {
		writeError(w, http.StatusBadRequest, "missing report id")
		return
	}

	var fb Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	fb.ReportID = reportID

	if err := h.service.AddFeedback(r.Context(), &fb); err != nil {
		switch {
		case errors.Is(err, ErrMissingFeedbackType), errors.Is(err, ErrMissingReportID):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrReportNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("failed to add feedback", "error", err, "report_id", reportID)
			writeError(w, http.StatusInternalServerError, "failed to record feedback")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

// GetImage handles GET /image/{fileID}, proxying blob bytes so browsers
// never talk to the storage backend directly.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "missing file id")
		return
	}

	data, contentType, err := h.blobs.Read(r.Context(), fileID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrNotConfigured):
			writeError(w, http.StatusNotFound, "image not found")
		default:
			h.logger.Error("image proxy error", "error", err, "file_id", fileID)
			writeError(w, http.StatusInternalServerError, "failed to fetch image")
		}
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
