package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikolayk812/cartstore/internal/checkout"
	"github.com/nikolayk812/cartstore/internal/coupon"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
	"github.com/nikolayk812/cartstore/internal/store"
	"go.uber.org/zap"
)

type Handler struct {
	registry  *store.Registry
	coupons   *coupon.Validator
	submitter port.OrderSubmitter
	logger    *zap.Logger
}

func NewHandler(registry *store.Registry, coupons *coupon.Validator, submitter port.OrderSubmitter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: registry, coupons: coupons, submitter: submitter, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Cart: toCartView(s.Snapshot())})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is empty")
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price is negative")
		return
	}
	if req.MaxQuantity < 1 {
		writeError(w, http.StatusBadRequest, "maxQuantity must be at least 1")
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}

	ev, err := s.AddItem(r.Context(), domain.NewLineItem{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Image:       req.Image,
		Price:       req.Price,
		Size:        req.Size,
		Color:       req.Color,
		MaxQuantity: req.MaxQuantity,
	})
	h.writeEvent(w, ev, err)
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is empty")
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}

	key := domain.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	ev, err := s.UpdateQuantity(r.Context(), key, req.Quantity)
	h.writeEvent(w, ev, err)
}

// RemoveItem takes the line key from the productId, size and color query parameters.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := domain.LineKey{ProductID: q.Get("productId"), Size: q.Get("size"), Color: q.Get("color")}
	if key.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is empty")
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}

	ev, err := s.RemoveItem(r.Context(), key)
	h.writeEvent(w, ev, err)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	ev, err := s.Clear(r.Context())
	h.writeEvent(w, ev, err)
}

func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	svc, ok := h.checkout(w, r)
	if !ok {
		return
	}

	ev, err := svc.ApplyCoupon(req.Code)
	switch {
	case errors.Is(err, coupon.ErrUnknownCoupon), errors.Is(err, coupon.ErrEmptyCode):
		writeError(w, http.StatusBadRequest, "invalid coupon code")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to apply coupon")
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(ev))
}

func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.checkout(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(svc.RemoveCoupon()))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	svc, ok := h.checkout(w, r)
	if !ok {
		return
	}

	confirmation, err := svc.PlaceOrder(r.Context(), req.Shipping, req.Payment)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	case err != nil:
		h.logger.Warn("checkout failed", zap.String("owner_id", ownerFromContext(r.Context())), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to create order")
		return
	}

	writeJSON(w, http.StatusCreated, confirmation)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	s, err := h.registry.Get(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to open cart", zap.String("owner_id", ownerFromContext(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return nil, false
	}
	return s, true
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) (*checkout.Service, bool) {
	s, ok := h.store(w, r)
	if !ok {
		return nil, false
	}

	svc, err := checkout.NewService(s, h.submitter, h.coupons, h.logger)
	if err != nil {
		h.logger.Error("failed to build checkout", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "checkout unavailable")
		return nil, false
	}
	return svc, true
}

// writeEvent reports a persistence failure as 500; the in-memory cart already changed.
func (h *Handler) writeEvent(w http.ResponseWriter, ev domain.Event, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(ev))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}
