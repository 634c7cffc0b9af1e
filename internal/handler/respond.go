package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/akasa-feast/internal/auth"
	"github.com/xenking/akasa-feast/internal/domain/cart"
	"github.com/xenking/akasa-feast/internal/domain/catalog"
	"github.com/xenking/akasa-feast/internal/domain/inventory"
	"github.com/xenking/akasa-feast/internal/domain/order"
	"github.com/xenking/akasa-feast/internal/domain/payment"
	"github.com/xenking/akasa-feast/internal/domain/user"
)

// errorResponse is the uniform error body for every non-2xx answer.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, errorResponse{Code: status, Message: message})
}

// respondDomainError maps domain errors onto HTTP statuses. Unknown errors
// are logged and hidden behind a generic 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		policyErr  *auth.PasswordPolicyError
		detailsErr *payment.InvalidDetailsError
		unavailErr *order.ItemUnavailableError
		stockErr   *inventory.InsufficientStockError
	)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.As(err, &policyErr),
		errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, payment.ErrStockConflict),
		errors.Is(err, inventory.ErrStockMoved):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &stockErr):
		respondError(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, payment.ErrDeclined):
		respondError(w, http.StatusPaymentRequired, "payment declined")
	case errors.As(err, &detailsErr), errors.As(err, &unavailErr):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, user.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// money renders integer minor units as a fixed two-decimal amount, so
// 1050 cents becomes "10.50".
func money(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}
