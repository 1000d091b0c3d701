// Package receipts renders PDF receipts for completed rent payments.
package receipts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"rentpay-backend/internal/models"
	"rentpay-backend/internal/timeutil"
)

// Renderer draws A4 receipts. Currency is printed next to every amount.
type Renderer struct {
	Currency string
}

func NewRenderer(currency string) *Renderer {
	return &Renderer{Currency: strings.ToUpper(currency)}
}

// Render implements services.ReceiptRenderer.
func (r *Renderer) Render(payment *models.Payment, payer *models.Identity) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Rent Payment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Rent Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Payment", "1", 1, "L", true, 0, "")

	last4 := "-"
	if payment.PaymentMethodLast4 != nil {
		last4 = "**** " + *payment.PaymentMethodLast4
	}
	r.row(pdf, "Receipt #", payment.ID)
	r.row(pdf, "Date", timeutil.Local(payment.PaymentDate).Format(timeutil.DisplayLayout))
	r.row(pdf, "Paid by", payer.Email)
	r.row(pdf, "Card", last4)
	r.row(pdf, "Reference", payment.StripePaymentIntentID)
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Property", "1", 1, "L", true, 0, "")
	if payment.Property != nil {
		r.row(pdf, "Title", payment.Property.Title)
		r.row(pdf, "Address", payment.Property.Address)
	} else {
		r.row(pdf, "Property", payment.PropertyID)
	}
	pdf.Ln(5)

	pdf.SetFillColor(200, 255, 200)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Amount Paid: %s %.2f", r.Currency, payment.Amount), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(50, 7, label, "LB", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(140, 7, value, "RB", 1, "L", false, 0, "")
}
