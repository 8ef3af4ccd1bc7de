package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/assetdesk/internal/lifecycle"
	"github.com/erazemk/assetdesk/internal/model"
)

// AssignmentsHandler handles assignment endpoints.
type AssignmentsHandler struct {
	Service *lifecycle.Service
}

type createAssignmentRequest struct {
	AssetID      string `json:"asset_id"`
	AssignedToID string `json:"assigned_to_id"`
	AssignedDate string `json:"assigned_date"`
	Note         string `json:"note"`
}

type respondRequest struct {
	Accept *bool `json:"accept"`
}

// List handles GET /api/assignments. Optional ?state= filters may repeat.
func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	filter := model.AssignmentFilter{Location: claims.Location}
	for _, s := range r.URL.Query()["state"] {
		filter.States = append(filter.States, model.AssignmentState(s))
	}
	h.list(w, r, filter)
}

// Mine handles GET /api/assignments/mine.
func (h *AssignmentsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	h.list(w, r, model.AssignmentFilter{AssignedToID: claims.UserID})
}

func (h *AssignmentsHandler) list(w http.ResponseWriter, r *http.Request, filter model.AssignmentFilter) {
	assignments, err := h.Service.ListAssignments(r.Context(), filter)
	if err != nil {
		writeError(w, err, "list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, assignments)
}

// Create handles POST /api/assignments.
func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := model.NewAssignment{
		AssetID:      req.AssetID,
		AssignedToID: req.AssignedToID,
		Note:         req.Note,
	}
	if req.AssignedDate != "" {
		d, err := parseDate(req.AssignedDate)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.AssignedDate = d
	}

	claims := GetClaims(r.Context())
	assignment, err := h.Service.CreateAssignment(r.Context(), in, claims.UserID)
	if err != nil {
		writeError(w, err, "create assignment")
		return
	}
	slog.Info("asset assigned", "user", claims.Username, "asset", assignment.AssetCode, "assigned_to", assignment.AssignedToName)
	jsonResponse(w, http.StatusCreated, assignment)
}

// Respond handles PUT /api/assignments/{id}/response.
func (h *AssignmentsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil || req.Accept == nil {
		jsonError(w, http.StatusBadRequest, "accept required")
		return
	}

	claims := GetClaims(r.Context())
	assignment, err := h.Service.RespondToAssignment(r.Context(), r.PathValue("id"), claims.UserID, *req.Accept)
	if err != nil {
		writeError(w, err, "respond to assignment")
		return
	}
	slog.Info("assignment answered", "user", claims.Username, "assignment", assignment.ID, "state", assignment.State)
	jsonResponse(w, http.StatusOK, assignment)
}

// Delete handles DELETE /api/assignments/{id}.
func (h *AssignmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if err := h.Service.DeleteAssignment(r.Context(), r.PathValue("id"), claims.UserID); err != nil {
		writeError(w, err, "delete assignment")
		return
	}
	slog.Info("assignment deleted", "user", claims.Username, "assignment", r.PathValue("id"))
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
