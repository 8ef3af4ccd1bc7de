package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

// CategoriesHandler handles asset category endpoints.
type CategoriesHandler struct {
	DB *sql.DB
}

type createCategoryRequest struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Prefix = strings.TrimSpace(req.Prefix)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if err := model.ValidatePrefix(req.Prefix); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := store.CategoryExists(r.Context(), h.DB, req.Name, req.Prefix)
	if err != nil {
		slog.Error("failed to check category", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	if exists {
		jsonError(w, http.StatusConflict, "category name or prefix already exists")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, req.Name, req.Prefix)
	if err != nil {
		slog.Error("failed to create category", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("category created", "user", claims.Username, "category", category.Name, "prefix", category.Prefix)
	jsonResponse(w, http.StatusCreated, category)
}
