package handler

import (
	"net/http"
	"time"

	"github.com/xenking/akasa-feast/internal/domain/order"
)

type orderResponse struct {
	ID            int64     `json:"id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Total         string    `json:"total"`
	TrackingID    string    `json:"tracking_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type orderLineResponse struct {
	ItemID    int64  `json:"item_id"`
	Quantity  int    `json:"quantity"`
	PriceEach string `json:"price_each"`
}

type orderDetailResponse struct {
	orderResponse

	Lines   []orderLineResponse `json:"lines"`
	Payment *paymentResponse    `json:"payment,omitempty"`
}

func orderToResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Total:         money(o.TotalCents),
		TrackingID:    o.TrackingID,
		CreatedAt:     o.CreatedAt,
	}
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, order.ModeImmediate)
}

func (h *Handler) draft(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, order.ModeDeferred)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, mode order.Mode) {
	o, err := h.orders.Checkout(r.Context(), userID(r), mode)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, orderToResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context(), userID(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]orderResponse, len(list))
	for i := range list {
		out[i] = orderToResponse(&list[i])
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, lines, err := h.orders.Get(r.Context(), userID(r), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	latest, err := h.payments.LatestByOrder(r.Context(), o.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	detail := orderDetailResponse{
		orderResponse: orderToResponse(o),
		Lines:         make([]orderLineResponse, len(lines)),
	}
	for i, l := range lines {
		detail.Lines[i] = orderLineResponse{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			PriceEach: money(l.PriceCentsEach),
		}
	}
	if latest != nil {
		p := paymentToResponse(latest)
		detail.Payment = &p
	}

	respond(w, http.StatusOK, detail)
}
