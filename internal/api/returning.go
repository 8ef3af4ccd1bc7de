package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/assetdesk/internal/lifecycle"
	"github.com/erazemk/assetdesk/internal/model"
)

// ReturningHandler handles returning request endpoints.
type ReturningHandler struct {
	Service *lifecycle.Service
}

type createReturningRequest struct {
	AssignmentID string `json:"assignment_id"`
}

// List handles GET /api/returning-requests.
func (h *ReturningHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	filter := model.ReturningFilter{Location: claims.Location}
	for _, s := range r.URL.Query()["state"] {
		filter.States = append(filter.States, model.ReturningState(s))
	}

	requests, err := h.Service.ListReturningRequests(r.Context(), filter)
	if err != nil {
		writeError(w, err, "list returning requests")
		return
	}
	if requests == nil {
		requests = []model.ReturningRequest{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Create handles POST /api/returning-requests.
func (h *ReturningHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReturningRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AssignmentID == "" {
		jsonError(w, http.StatusBadRequest, "assignment_id required")
		return
	}

	claims := GetClaims(r.Context())
	request, err := h.Service.CreateReturningRequest(r.Context(), req.AssignmentID, claims.UserID)
	if err != nil {
		writeError(w, err, "create returning request")
		return
	}
	slog.Info("return requested", "user", claims.Username, "assignment", request.AssignmentID)
	jsonResponse(w, http.StatusCreated, request)
}

// Complete handles PUT /api/returning-requests/{id}/completion.
func (h *ReturningHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil || req.Accept == nil {
		jsonError(w, http.StatusBadRequest, "accept required")
		return
	}

	claims := GetClaims(r.Context())
	request, err := h.Service.CompleteReturningRequest(r.Context(), r.PathValue("id"), claims.UserID, *req.Accept)
	if err != nil {
		writeError(w, err, "complete returning request")
		return
	}
	slog.Info("returning request completed", "user", claims.Username, "request", request.ID, "state", request.State)
	jsonResponse(w, http.StatusOK, request)
}
