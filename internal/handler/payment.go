package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/akasa-feast/internal/domain/payment"
)

type paymentRequest struct {
	Method         string `json:"method"`
	CardNumber     string `json:"card_number,omitempty"`
	CardName       string `json:"card_name,omitempty"`
	CardExpiry     string `json:"card_expiry,omitempty"`
	CardCVV        string `json:"card_cvv,omitempty"`
	UPIID          string `json:"upi_id,omitempty"`
	WalletProvider string `json:"wallet_provider,omitempty"`
}

type paymentResponse struct {
	ID            int64      `json:"id"`
	OrderID       int64      `json:"order_id"`
	Amount        string     `json:"amount"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func paymentToResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        money(p.AmountCents),
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
		CompletedAt:   p.CompletedAt,
	}
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	p, err := h.payments.Process(r.Context(), userID(r), orderID, method, payment.Details{
		CardNumber:     req.CardNumber,
		CardName:       req.CardName,
		CardExpiry:     req.CardExpiry,
		CardCVV:        req.CardCVV,
		UPIID:          req.UPIID,
		WalletProvider: req.WalletProvider,
	})
	if err != nil {
		// A decline still produced a persisted attempt; return it so the
		// client sees the transaction id alongside the 402.
		if errors.Is(err, payment.ErrDeclined) && p != nil {
			respond(w, http.StatusPaymentRequired, paymentToResponse(p))
			return
		}
		respondDomainError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, paymentToResponse(p))
}
