// Package ledger is the durable record of committed orders and of the gift
// code inventory. Once a draft order is created here it becomes the single
// source of truth; conversation state is forgotten.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks the payment lifecycle of an order. Transitions only move
// forward: pending -> manual_submitted -> paid, with pending -> paid legal
// for methods that confirm out of band.
type Status string

const (
	StatusPending         Status = "pending"
	StatusManualSubmitted Status = "manual_submitted"
	StatusPaid            Status = "paid"
)

// CanAdvance reports whether moving from s to next is a legal forward step.
// Re-confirming a paid order counts as a no-op advance.
func (s Status) CanAdvance(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusManualSubmitted || next == StatusPaid
	case StatusManualSubmitted:
		return next == StatusPaid
	case StatusPaid:
		return next == StatusPaid
	}
	return false
}

// PaymentMethod identifies how the user intends to pay.
type PaymentMethod string

const (
	MethodBank            PaymentMethod = "bank"
	MethodCryptoUSDT      PaymentMethod = "crypto-usdt"
	MethodTelegramInvoice PaymentMethod = "telegram-invoice"
	MethodTON             PaymentMethod = "ton"
)

// KnownMethod reports whether m is one of the supported payment methods.
func KnownMethod(m PaymentMethod) bool {
	switch m {
	case MethodBank, MethodCryptoUSDT, MethodTelegramInvoice, MethodTON:
		return true
	}
	return false
}

// Manual reports whether the method requires user-submitted payment proof.
func (m PaymentMethod) Manual() bool {
	return m == MethodBank
}

// DraftOrder is the immutable result of a completed conversation, handed to
// the ledger exactly once and never retained by the conversation layer.
type DraftOrder struct {
	UserID       int64
	Username     string
	ProductID    string
	ProductTitle string
	Variant      string
	Region       string
	PriceUSD     decimal.Decimal
	PriceDisplay string
	Currency     string
	Method       PaymentMethod
	CreatedAt    time.Time
}

// Order is a persisted order. Everything except Status and PaymentProof is
// immutable after creation; orders are never deleted.
type Order struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	Username     string          `db:"username"`
	ProductID    string          `db:"product_id"`
	ProductTitle string          `db:"product_title"`
	Variant      string          `db:"variant"`
	Region       string          `db:"region"`
	PriceUSD     decimal.Decimal `db:"price_usd"`
	PriceDisplay string          `db:"price_display"`
	Currency     string          `db:"currency"`
	Status       Status          `db:"status"`
	CreatedAt    string          `db:"created_at"`
	Method       PaymentMethod   `db:"payment_method"`
	PaymentProof string          `db:"payment_proof"`
}

// Summary renders the one-line admin listing for the order.
func (o Order) Summary() string {
	return fmt.Sprintf("#%d — %s %s — %s — %s — %s",
		o.ID, o.ProductTitle, o.Variant, o.PriceDisplay, o.Status, o.CreatedAt)
}

// GiftCode is a redeemable code held in inventory. Codes are unique and
// flip to used exactly once.
type GiftCode struct {
	ID           int64  `db:"id"`
	Code         string `db:"code"`
	Denomination string `db:"denomination"`
	Region       string `db:"region"`
	Used         bool   `db:"used"`
	AddedAt      string `db:"added_at"`
}
