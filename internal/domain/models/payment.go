package models

import (
	"time"

	"carrental/internal/domain"

	"github.com/shopspring/decimal"
)

const PaymentMethodCreditCard = "CREDIT_CARD"

// Payment is one row of the payment ledger, 1:1 with a booking.
type Payment struct {
	ID            int64                `json:"id"`
	BookingID     int64                `json:"bookingId"`
	Amount        decimal.Decimal      `json:"amount"`
	Status        domain.PaymentStatus `json:"status"`
	PaymentMethod string               `json:"paymentMethod"`
	TransactionID string               `json:"transactionId"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}
