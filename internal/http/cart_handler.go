package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/ShiLuis/KapePOS/internal/pricing"
	"github.com/go-chi/chi/v5"
)

type CartAPI interface {
	GetCart(ctx context.Context, terminalID string) (*domain.Cart, error)
	AddItem(ctx context.Context, terminalID, menuItemID string, sel pricing.Selection, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, terminalID, key string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, terminalID, key string) (*domain.Cart, error)
	SetDiscount(ctx context.Context, terminalID string, t domain.DiscountType, value float64) (*domain.Cart, error)
	ClearDiscount(ctx context.Context, terminalID string) (*domain.Cart, error)
	Clear(ctx context.Context, terminalID string) error
	Totals(cart *domain.Cart) domain.Totals
}

type CartHandler struct {
	carts   CartAPI
	timeout time.Duration
}

func NewCartHandler(carts CartAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	MenuItemID string            `json:"menu_item_id"`
	Options    map[string]string `json:"options"`
	Addons     []string          `json:"addons"`
	Note       string            `json:"note"`
	Quantity   int               `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type DiscountRequestDTO struct {
	Type  domain.DiscountType `json:"type"`
	Value float64             `json:"value"`
}

type CartResponseDTO struct {
	TerminalID string            `json:"terminal_id"`
	Items      []domain.LineItem `json:"items"`
	Discount   *domain.Discount  `json:"discount,omitempty"`
	ItemCount  int               `json:"item_count"`
	Totals     domain.Totals     `json:"totals"`
}

func (h *CartHandler) toDTO(cart *domain.Cart) CartResponseDTO {
	dto := CartResponseDTO{
		TerminalID: cart.TerminalID,
		Items:      cart.Items,
		Totals:     h.carts.Totals(cart).Rounded(),
	}
	if dto.Items == nil {
		dto.Items = []domain.LineItem{}
	}
	if cart.Discount.Type != "" {
		d := cart.Discount
		dto.Discount = &d
	}
	for _, it := range cart.Items {
		dto.ItemCount += it.Quantity
	}
	return dto
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, getTerminalID(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toDTO(cart))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.MenuItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_menu_item_id", "menu_item_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > domain.MaxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	sel := pricing.Selection{Options: req.Options, Addons: req.Addons, Note: req.Note}
	cart, err := h.carts.AddItem(ctx, getTerminalID(r.Context()), req.MenuItemID, sel, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.toDTO(cart))
}

// PUT /api/v1/cart/items/{key}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := lineKeyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_line_key", "line key is not properly escaped")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// zero or less removes the line
	if req.Quantity == nil || *req.Quantity > domain.MaxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, getTerminalID(r.Context()), key, *req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toDTO(cart))
}

// DELETE /api/v1/cart/items/{key}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key, ok := lineKeyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_line_key", "line key is not properly escaped")
		return
	}

	cart, err := h.carts.RemoveItem(ctx, getTerminalID(r.Context()), key)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toDTO(cart))
}

// PUT /api/v1/cart/discount
func (h *CartHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req DiscountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.SetDiscount(ctx, getTerminalID(r.Context()), req.Type, req.Value)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toDTO(cart))
}

// DELETE /api/v1/cart/discount
func (h *CartHandler) ClearDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.ClearDiscount(ctx, getTerminalID(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toDTO(cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	terminalID := getTerminalID(r.Context())
	if err := h.carts.Clear(ctx, terminalID); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toDTO(domain.NewCart(terminalID)))
}

// lineKeyParam returns the decoded {key} segment. chi matches on RawPath when
// the request carries one, so the segment is still escaped in that case.
func lineKeyParam(r *http.Request) (string, bool) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, key != ""
	}
	decoded, err := url.PathUnescape(key)
	if err != nil || decoded == "" {
		return "", false
	}
	return decoded, true
}
