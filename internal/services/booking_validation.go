package services

import (
	"regexp"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/domain/models"
	"carrental/internal/utils"

	"github.com/shopspring/decimal"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
)

// validatedBooking is a create request that passed every input check.
type validatedBooking struct {
	pickupAt          time.Time
	pickupTime        string
	returnAt          time.Time
	returnTime        string
	carID             int64
	total             decimal.Decimal
	insurance         string
	additionalDrivers int
	specialRequests   string
	cardNumber        string
	cardName          string
	expiry            string
	saveCard          bool
}

func invalid(code, field, msg string) error {
	return domain.ValidationError{Code: code, Field: field, Msg: msg}
}

// ValidateCreateBooking checks a create request in a fixed order and stops at the first failure.
// It never touches storage; car existence and ownership are checked by the caller afterwards.
func ValidateCreateBooking(in models.CreateBookingInput) (validatedBooking, error) {
	var v validatedBooking

	pickupDate := strings.TrimSpace(in.PickupDate)
	pickupTime := strings.TrimSpace(in.PickupTime)
	returnDate := strings.TrimSpace(in.ReturnDate)
	returnTime := strings.TrimSpace(in.ReturnTime)
	if pickupDate == "" || pickupTime == "" || returnDate == "" || returnTime == "" || in.CarID <= 0 {
		return v, invalid(domain.CodeMissingFields, "booking", "Missing required booking information")
	}

	pickupAt, err := utils.CombineDateClock(pickupDate, pickupTime)
	if err != nil {
		return v, invalid(domain.CodeInvalidDate, "pickupDate", "Invalid date format")
	}
	returnAt, err := utils.CombineDateClock(returnDate, returnTime)
	if err != nil {
		return v, invalid(domain.CodeInvalidDate, "returnDate", "Invalid date format")
	}

	// the range is judged on calendar dates; times are only validated and stored
	pickupDay, _ := utils.ParseDate(pickupDate)
	returnDay, _ := utils.ParseDate(returnDate)
	if !pickupDay.Before(returnDay) {
		return v, invalid(domain.CodeInvalidDateRange, "returnDate", "Return date must be after pickup date")
	}

	if !in.AgreeToTerms {
		return v, invalid(domain.CodeTermsNotAccepted, "agreeToTerms", "You must agree to the terms and conditions")
	}

	p := in.Payment
	if p == nil ||
		strings.TrimSpace(p.CardNumber) == "" ||
		strings.TrimSpace(p.CardName) == "" ||
		strings.TrimSpace(p.ExpiryDate) == "" ||
		strings.TrimSpace(p.CVV) == "" {
		return v, invalid(domain.CodeMissingPaymentInfo, "payment", "Missing required payment information")
	}

	cardNumber := utils.StripSpaces(p.CardNumber)
	if !cardNumberRe.MatchString(cardNumber) {
		return v, invalid(domain.CodeInvalidCardNumber, "payment.cardNumber", "Invalid card number")
	}

	expiry := strings.TrimSpace(p.ExpiryDate)
	if !expiryRe.MatchString(expiry) {
		return v, invalid(domain.CodeInvalidExpiry, "payment.expiryDate", "Invalid expiry date format. Use MM/YY")
	}

	if !cvvRe.MatchString(strings.TrimSpace(p.CVV)) {
		return v, invalid(domain.CodeInvalidCVV, "payment.cvv", "Invalid CVV")
	}

	if !in.TotalCost.IsPositive() {
		return v, invalid(domain.CodeInvalidTotal, "totalCost", "Total cost must be greater than zero")
	}

	insurance := strings.ToLower(strings.TrimSpace(in.InsuranceOption))
	switch insurance {
	case "":
		insurance = models.InsuranceBasic
	case models.InsuranceBasic, models.InsurancePremium:
	default:
		return v, invalid(domain.CodeInvalidInsurance, "insuranceOption", "Insurance option must be basic or premium")
	}

	if in.AdditionalDrivers < 0 {
		return v, invalid(domain.CodeInvalidDrivers, "additionalDrivers", "Additional drivers cannot be negative")
	}

	return validatedBooking{
		pickupAt:          pickupAt,
		pickupTime:        pickupTime,
		returnAt:          returnAt,
		returnTime:        returnTime,
		carID:             in.CarID,
		total:             in.TotalCost,
		insurance:         insurance,
		additionalDrivers: in.AdditionalDrivers,
		specialRequests:   strings.TrimSpace(in.SpecialRequests),
		cardNumber:        cardNumber,
		cardName:          utils.NormalizeSpace(p.CardName),
		expiry:            expiry,
		saveCard:          p.SaveCard,
	}, nil
}
