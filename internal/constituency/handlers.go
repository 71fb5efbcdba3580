package constituency

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type handlers struct {
	svc *Service
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes.
func (h *handlers) writeError(w http.ResponseWriter, action string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, "Invalid input: "+verr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrReportNotFound):
		http.Error(w, "Report not found", http.StatusNotFound)
	case errors.Is(err, ErrAssignmentPending):
		http.Error(w, "Constituency assignment pending manual review", http.StatusConflict)
	case errors.Is(err, ErrReprocessRunning):
		http.Error(w, "Reprocess already running", http.StatusConflict)
	default:
		h.svc.log.Error("request failed", zap.String("action", action), zap.Error(err))
		http.Error(w, "Failed to "+action+": "+err.Error(), http.StatusInternalServerError)
	}
}

func reportID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid report ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

type resolveRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Resolve re-triggers automatic resolution. Without a body the report's
// stored coordinates are used.
func (h *handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		http.Error(w, "latitude and longitude must be given together", http.StatusBadRequest)
		return
	}

	var (
		res Result
		err error
	)
	if req.Latitude == nil {
		res, err = h.svc.ResolveStored(r.Context(), id)
	} else {
		res, err = h.svc.Resolve(r.Context(), id, *req.Latitude, *req.Longitude)
	}
	if err != nil {
		h.writeError(w, "resolve constituency", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Created is called by the report intake flow once a report row exists.
// Resolution runs in the background so intake never waits on it.
func (h *handlers) Created(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		http.Error(w, "latitude and longitude are required", http.StatusBadRequest)
		return
	}

	h.svc.ResolveInBackground(id, *req.Latitude, *req.Longitude)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *handlers) Override(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Override(r.Context(), id, req)
	if err != nil {
		h.writeError(w, "override constituency", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeError(w, "fetch stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Reprocess accepts ?dry_run=true and ?limit=N.
func (h *handlers) Reprocess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := ReprocessOptions{DryRun: q.Get("dry_run") == "true"}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		opts.Limit = n
	}

	sum, err := h.svc.Reprocess(r.Context(), opts)
	if err != nil {
		h.writeError(w, "reprocess reports", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *handlers) Approvable(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}

	status, err := h.svc.CheckApprovable(r.Context(), id)
	if err != nil {
		h.writeError(w, "check approval", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"approvable":        true,
		"assignment_status": status,
	})
}

func (h *handlers) Locate(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		http.Error(w, "lat and lng query parameters are required", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Locate(r.Context(), lat, lng)
	if err != nil {
		h.writeError(w, "locate", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) BoundaryStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, boundary.CurrentStatus())
}
