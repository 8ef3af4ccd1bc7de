package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/assetdesk/internal/lifecycle"
	"github.com/erazemk/assetdesk/internal/model"
)

// AssetsHandler handles asset endpoints.
type AssetsHandler struct {
	Service *lifecycle.Service
}

type createAssetRequest struct {
	Name          string `json:"name"`
	CategoryID    string `json:"category_id"`
	Specification string `json:"specification"`
	InstalledDate string `json:"installed_date"`
	State         string `json:"state"`
}

type updateAssetRequest struct {
	Name          *string `json:"name"`
	Specification *string `json:"specification"`
	InstalledDate *string `json:"installed_date"`
	State         *string `json:"state"`
}

type transitionAssetRequest struct {
	State string `json:"state"`
}

// List handles GET /api/assets. Only assets at the caller's location are listed.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	claims := GetClaims(r.Context())

	filter := model.AssetFilter{
		Search:      strings.TrimSpace(q.Get("search")),
		CategoryIDs: q["category"],
		Location:    claims.Location,
		SortBy:      q.Get("sort"),
		Descending:  strings.EqualFold(q.Get("order"), "desc"),
	}
	for _, s := range q["state"] {
		filter.States = append(filter.States, model.AssetState(s))
	}

	var err error
	if filter.Page, err = queryInt(q.Get("page")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid page")
		return
	}
	if filter.PageSize, err = queryInt(q.Get("pageSize")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid pageSize")
		return
	}

	page, err := h.Service.FilterAssets(r.Context(), filter)
	if err != nil {
		writeError(w, err, "list assets")
		return
	}
	if page.Items == nil {
		page.Items = []model.Asset{}
	}
	jsonResponse(w, http.StatusOK, page)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := model.NewAsset{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Specification: req.Specification,
		State:         model.AssetState(req.State),
	}
	if req.InstalledDate != "" {
		d, err := parseDate(req.InstalledDate)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.InstalledDate = d
	}

	claims := GetClaims(r.Context())
	asset, err := h.Service.CreateAsset(r.Context(), in, claims.UserID)
	if err != nil {
		writeError(w, err, "create asset")
		return
	}
	slog.Info("asset created", "user", claims.Username, "asset", asset.Code, "location", asset.Location)
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	asset, err := h.Service.GetAsset(r.Context(), r.PathValue("id"), claims.UserID)
	if err != nil {
		writeError(w, err, "get asset")
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Update handles PUT /api/assets/{id}.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := model.AssetPatch{
		Name:          req.Name,
		Specification: req.Specification,
	}
	if req.InstalledDate != nil {
		d, err := parseDate(*req.InstalledDate)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.InstalledDate = &d
	}
	if req.State != nil {
		state := model.AssetState(*req.State)
		patch.State = &state
	}

	claims := GetClaims(r.Context())
	asset, err := h.Service.UpdateAsset(r.Context(), r.PathValue("id"), patch, claims.UserID)
	if err != nil {
		writeError(w, err, "update asset")
		return
	}
	slog.Info("asset updated", "user", claims.Username, "asset", asset.Code)
	jsonResponse(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if err := h.Service.DeleteAsset(r.Context(), r.PathValue("id"), claims.UserID); err != nil {
		writeError(w, err, "delete asset")
		return
	}
	slog.Info("asset deleted", "user", claims.Username, "asset_id", r.PathValue("id"))
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Transition handles PUT /api/assets/{id}/state.
func (h *AssetsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req transitionAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	asset, err := h.Service.TransitionAsset(r.Context(), r.PathValue("id"), model.AssetState(req.State), claims.UserID)
	if err != nil {
		writeError(w, err, "change asset state")
		return
	}
	slog.Info("asset state changed", "user", claims.Username, "asset", asset.Code, "state", asset.State)
	jsonResponse(w, http.StatusOK, asset)
}

// queryInt parses an optional integer query parameter. Empty means zero.
func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
