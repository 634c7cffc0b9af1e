package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/akasa-feast/internal/domain/inventory"
	"github.com/xenking/akasa-feast/internal/domain/order"
)

// Method is one of the accepted payment instruments. The set is closed;
// anything else is rejected before a Payment record exists.
type Method string

const (
	MethodCreditCard Method = "CREDIT_CARD"
	MethodDebitCard  Method = "DEBIT_CARD"
	MethodUPI        Method = "UPI"
	MethodWallet     Method = "WALLET"
)

// Status is the outcome state of a single payment attempt.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

var (
	// ErrAlreadyPaid is returned when processing an order that already has a
	// successful payment.
	ErrAlreadyPaid = errors.New("order is already paid")
	// ErrDeclined is the business outcome of a refused gateway charge. The
	// failed attempt is persisted and the order stays payable.
	ErrDeclined = errors.New("payment declined")
	// ErrStockConflict is fatal: inventory moved between order creation and
	// payment success, so the success transaction rolled back entirely.
	ErrStockConflict = errors.New("stock reconciliation failed")
)

// InvalidDetailsError rejects a malformed method or incomplete method
// details. No Payment record is produced for it.
type InvalidDetailsError struct {
	Reason string
}

func (e *InvalidDetailsError) Error() string {
	return "invalid payment details: " + e.Reason
}

// Payment records one gateway attempt against an order. Completed attempts
// are never mutated or deleted.
type Payment struct {
	ID            int64
	OrderID       int64
	AmountCents   int64
	Method        Method
	Status        Status
	TransactionID string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// Details carries the method-specific fields submitted with an attempt. Only
// the fields relevant to the chosen method are inspected.
type Details struct {
	CardNumber     string
	CardName       string
	CardExpiry     string
	CardCVV        string
	UPIID          string
	WalletProvider string
}

const minCardDigits = 13

// ParseMethod validates a raw method string against the closed set.
func ParseMethod(raw string) (Method, error) {
	switch m := Method(raw); m {
	case MethodCreditCard, MethodDebitCard, MethodUPI, MethodWallet:
		return m, nil
	default:
		return "", &InvalidDetailsError{Reason: fmt.Sprintf("unknown payment method %q", raw)}
	}
}

// ValidateDetails checks completeness and shape of the details for a method.
func ValidateDetails(m Method, d Details) error {
	switch m {
	case MethodCreditCard, MethodDebitCard:
		if d.CardNumber == "" || d.CardName == "" || d.CardExpiry == "" || d.CardCVV == "" {
			return &InvalidDetailsError{Reason: "all card fields are required"}
		}
		if len(strings.ReplaceAll(d.CardNumber, " ", "")) < minCardDigits {
			return &InvalidDetailsError{Reason: "card number is too short"}
		}
	case MethodUPI:
		if d.UPIID == "" || !strings.Contains(d.UPIID, "@") {
			return &InvalidDetailsError{Reason: "UPI id must look like name@bank"}
		}
	case MethodWallet:
		if d.WalletProvider == "" {
			return &InvalidDetailsError{Reason: "wallet provider is required"}
		}
	default:
		return &InvalidDetailsError{Reason: fmt.Sprintf("unknown payment method %q", m)}
	}
	return nil
}

// Tx is the transactional storage view one payment attempt runs against.
type Tx interface {
	inventory.StockTx

	// OrderForUpdate loads the user's order and locks its row for the rest
	// of the transaction, serializing concurrent attempts on the same order.
	OrderForUpdate(ctx context.Context, userID, orderID int64) (*order.Order, error)
	// InsertPayment persists the attempt and fills its ID and CreatedAt.
	InsertPayment(ctx context.Context, p *Payment) error
	// MarkOrderPaid transitions the order to PAID/PLACED only if it is not
	// already paid, reporting whether the transition happened.
	MarkOrderPaid(ctx context.Context, orderID int64) (bool, error)
	OrderLines(ctx context.Context, orderID int64) ([]order.Line, error)
	ClearCart(ctx context.Context, userID int64) error
}

// Store provides transactional attempt execution and read-only payment
// projections.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// LatestByOrder returns the most recent attempt for the order by
	// creation time, or nil when none exists.
	LatestByOrder(ctx context.Context, orderID int64) (*Payment, error)
}
