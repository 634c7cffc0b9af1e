package handler

import (
	"net/http"

	"github.com/go-faster/errors"
)

type addCartItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartLineResponse struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id"`
	Name      string `json:"name"`
	PriceEach string `json:"price_each"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total string             `json:"total"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(r)

	lines, err := h.carts.Lines(ctx, uid)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := cartResponse{Lines: make([]cartLineResponse, len(lines))}
	var total int64
	for i, l := range lines {
		it, err := h.catalog.GetItem(ctx, l.ItemID)
		if err != nil {
			respondDomainError(w, r, errors.Wrapf(err, "resolve cart item %d", l.ItemID))
			return
		}
		lineTotal := int64(l.Quantity) * it.PriceCents
		total += lineTotal
		out.Lines[i] = cartLineResponse{
			ID:        l.ID,
			ItemID:    l.ItemID,
			Name:      it.Name,
			PriceEach: money(it.PriceCents),
			Quantity:  l.Quantity,
			LineTotal: money(lineTotal),
		}
	}
	out.Total = money(total)

	respond(w, http.StatusOK, out)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusUnprocessableEntity, "quantity must be greater than 0")
		return
	}

	// Reject unknown items up front instead of surfacing a storage
	// constraint violation.
	if _, err := h.catalog.GetItem(r.Context(), req.ItemID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	if err := h.carts.UpsertLine(r.Context(), userID(r), req.ItemID, req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart line id")
		return
	}

	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.carts.SetQuantity(r.Context(), userID(r), id, req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart line id")
		return
	}

	if err := h.carts.DeleteLine(r.Context(), userID(r), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), userID(r)); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
