package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"carrental/internal/domain/models"
	"carrental/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders PDF documents for bookings.
type DocsService struct {
	DB        *sql.DB
	RequestID string
	Now       func() time.Time
	Loader    func(ctx context.Context, userID, bookingID int64) (models.BookingDetail, error)
}

// GenerateReceipt renders the receipt of a booking the user is a party to.
func (s DocsService) GenerateReceipt(ctx context.Context, userID, bookingID int64) ([]byte, string, error) {
	d, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", fmt.Sprintf("booking=%d user=%d", bookingID, userID))

	issued := time.Now()
	if s.Now != nil {
		issued = s.Now()
	}
	return buildReceiptPDF(d, issued)
}

func (s DocsService) load(ctx context.Context, userID, bookingID int64) (models.BookingDetail, error) {
	if s.Loader != nil {
		return s.Loader(ctx, userID, bookingID)
	}
	return BookingService{DB: s.DB, RequestID: s.RequestID}.GetForUser(ctx, userID, bookingID)
}

func buildReceiptPDF(d models.BookingDetail, issued time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Booking      : #%d", d.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued       : "+utils.FormatDateTime(issued))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Status       : "+string(d.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Vehicle")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	car := strings.TrimSpace(fmt.Sprintf("%d %s %s", d.Car.Year, d.Car.Make, d.Car.Model))
	lines := []string{
		"Car          : " + safe(car, "-"),
		"Host         : " + safe(d.HostFirstName+" "+d.HostLastName, "-"),
		"Renter       : " + safe(d.TenantFirstName+" "+d.TenantLastName, "-"),
		"Pickup       : " + utils.FormatDateTime(d.PickupAt),
		"Return       : " + utils.FormatDateTime(d.ReturnAt),
		"Insurance    : " + safe(d.InsuranceOption, "-"),
		fmt.Sprintf("Extra drivers: %d", d.AdditionalDrivers),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	if strings.TrimSpace(d.SpecialRequests) != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, 6, "Requests: "+d.SpecialRequests, "", "", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payment")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	if d.Payment != nil {
		pdf.Cell(0, 7, "Reference    : "+safe(d.Payment.TransactionID, "-"))
		pdf.Ln(7)
		pdf.Cell(0, 7, "Method       : "+safe(d.Payment.PaymentMethod, "-"))
		pdf.Ln(7)
		pdf.Cell(0, 7, "Status       : "+string(d.Payment.Status))
		pdf.Ln(9)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Total: "+utils.FormatUSD(d.TotalPrice))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Card details are never printed on receipts. Keep this document for your records.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%d_%s.pdf", d.ID, safeFilenamePart(d.Car.Make+"_"+d.Car.Model))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "_")
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
