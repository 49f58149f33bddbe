package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/utils"
)

// DocsService renders the booking receipt PDF.
type DocsService struct {
	Bookings  BookingStore
	RequestID string
}

func (s DocsService) GenerateReceipt(ctx context.Context, actorID int64, actorRole string, bookingID int64) ([]byte, string, error) {
	svc := BookingService{Bookings: s.Bookings, RequestID: s.RequestID}
	detail, err := svc.Get(ctx, actorID, actorRole, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", fmt.Sprintf("booking_id=%d", bookingID))
	return buildReceiptPDF(detail)
}

func buildReceiptPDF(d models.BookingDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RETURNVEHICLE BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Code  : %s", safe(d.Code, "-")),
		fmt.Sprintf("Status        : %s", strings.ToUpper(string(d.Status))),
		fmt.Sprintf("Contact       : %s (%s)", safe(d.ContactName, "-"), safe(d.ContactPhone, "-")),
		fmt.Sprintf("Route         : %s -> %s", safe(d.RouteFrom, "-"), safe(d.RouteTo, "-")),
		fmt.Sprintf("Journey Date  : %s", safe(d.JourneyDate, "-")),
		fmt.Sprintf("Category      : %s", safe(string(d.Category), "-")),
		fmt.Sprintf("Vehicle       : %s", safe(d.VehicleModel, "-")),
		fmt.Sprintf("Seats         : %d", d.Seats),
		fmt.Sprintf("Price / Seat  : %s", utils.FormatTaka(d.PricePerSeat)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Total: "+utils.FormatTaka(d.TotalPrice))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Printed "+time.Now().Format("2006-01-02 15:04")+". Please show this receipt to the driver before departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%s.pdf", safeFilenamePart(d.Code))
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func safeFilenamePart(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "booking"
	}
	return string(out)
}
