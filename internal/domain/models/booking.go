package models

import (
	"time"

	"carrental/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	InsuranceBasic   = "basic"
	InsurancePremium = "premium"
)

// Booking is one row of the booking ledger.
type Booking struct {
	ID                int64                `json:"id"`
	PickupAt          time.Time            `json:"pickupAt"`
	PickupTime        string               `json:"pickupTime"`
	ReturnAt          time.Time            `json:"returnAt"`
	ReturnTime        string               `json:"returnTime"`
	TotalPrice        decimal.Decimal      `json:"totalPrice"`
	InsuranceOption   string               `json:"insuranceOption"`
	AdditionalDrivers int                  `json:"additionalDrivers"`
	SpecialRequests   string               `json:"specialRequests"`
	AgreeToTerms      bool                 `json:"agreeToTerms"`
	Status            domain.BookingStatus `json:"status"`
	CarID             int64                `json:"carId"`
	TenantID          int64                `json:"tenantId"`
	HostID            int64                `json:"hostId"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// CarSummary is the display slice of a car joined into booking reads.
type CarSummary struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	ImageURL string `json:"imageUrl"`
}

// BookingListItem is a booking as shown in "my bookings".
type BookingListItem struct {
	Booking
	Car CarSummary `json:"car"`
}

// BookingDetail is a booking with car, both parties and its payment.
type BookingDetail struct {
	Booking
	Car             CarSummary `json:"car"`
	HostFirstName   string     `json:"hostFirstName"`
	HostLastName    string     `json:"hostLastName"`
	TenantFirstName string     `json:"tenantFirstName"`
	TenantLastName  string     `json:"tenantLastName"`
	Payment         *Payment   `json:"payment"`
}

// CreateBookingInput is the client request for a new booking.
type CreateBookingInput struct {
	PickupDate        string          `json:"pickupDate"`
	PickupTime        string          `json:"pickupTime"`
	ReturnDate        string          `json:"returnDate"`
	ReturnTime        string          `json:"returnTime"`
	InsuranceOption   string          `json:"insuranceOption"`
	AdditionalDrivers int             `json:"additionalDrivers"`
	SpecialRequests   string          `json:"specialRequests"`
	AgreeToTerms      bool            `json:"agreeToTerms"`
	CarID             int64           `json:"carId"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	Payment           *PaymentInput   `json:"payment"`
}

// PaymentInput carries card details. CVV is validated and then dropped.
type PaymentInput struct {
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	SaveCard   bool   `json:"saveCard"`
}

// CreateBookingResult is returned after the booking transaction commits.
type CreateBookingResult struct {
	BookingID int64                `json:"bookingId"`
	Status    domain.BookingStatus `json:"status"`
}

// StatusChangeResult is returned after a status transition commits.
type StatusChangeResult struct {
	BookingID int64                `json:"bookingId"`
	Status    domain.BookingStatus `json:"status"`
}

// HostSummary aggregates a host's bookings for reporting.
type HostSummary struct {
	HostID           int64                        `json:"hostId"`
	Counts           map[domain.BookingStatus]int `json:"counts"`
	TotalBookings    int                          `json:"totalBookings"`
	CompletedRevenue decimal.Decimal              `json:"completedRevenue"`
}
