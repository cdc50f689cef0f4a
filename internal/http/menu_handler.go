package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/service"
	"github.com/go-chi/chi/v5"
)

type MenuAPI interface {
	Menu(ctx context.Context) ([]domain.MenuItem, string, error)
	Item(ctx context.Context, id string) (*domain.MenuItem, error)
	All(ctx context.Context) ([]domain.MenuItem, error)
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, id string, patch service.MenuPatch) (*domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) (*domain.MenuItem, error)
}

type MenuHandler struct {
	menu    MenuAPI
	timeout time.Duration
}

func NewMenuHandler(menu MenuAPI, timeout time.Duration) *MenuHandler {
	return &MenuHandler{
		menu:    menu,
		timeout: timeout,
	}
}

type SetStockRequestDTO struct {
	Stock *int `json:"stock"`
}

// GET /api/v1/menu
func (h *MenuHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, etag, err := h.menu.Menu(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// GET /api/v1/menu/{id}
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	item, err := h.menu.Item(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// GET /api/v1/admin/menu
func (h *MenuHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.All(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// POST /api/v1/admin/menu
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	item.ID = ""

	if err := h.menu.Create(ctx, &item); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// PATCH /api/v1/admin/menu/{id}
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var patch service.MenuPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	item, err := h.menu.Update(ctx, chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// DELETE /api/v1/admin/menu/{id}
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.menu.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /api/v1/admin/menu/{id}/stock
func (h *MenuHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SetStockRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Stock == nil {
		respondError(w, http.StatusBadRequest, "invalid_stock", "stock is required")
		return
	}

	item, err := h.menu.SetStock(ctx, chi.URLParam(r, "id"), *req.Stock)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}
