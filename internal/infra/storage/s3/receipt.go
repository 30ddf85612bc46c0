package s3

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainbooking "propertyhub/internal/domain/booking"
	"propertyhub/internal/domain/shared/daterange"
)

type receiptLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Receipt is the archived copy of the quote a guest saw when requesting a booking.
type Receipt struct {
	BookingID   string          `json:"booking_id"`
	RequestID   string          `json:"request_id"`
	Status      string          `json:"status"`
	PropertyID  string          `json:"property_id"`
	GuestID     string          `json:"guest_id"`
	GuestName   string          `json:"guest_name"`
	GuestEmail  string          `json:"guest_email"`
	CheckIn     string          `json:"check_in"`
	CheckOut    string          `json:"check_out"`
	Nights      int             `json:"nights"`
	Guests      int             `json:"guests"`
	Units       int             `json:"units"`
	Currency    string          `json:"currency"`
	Lines       []receiptLine   `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	RequestedAt time.Time       `json:"requested_at"`
}

func BuildReceipt(req domainbooking.Request, conf domainbooking.Confirmation) Receipt {
	lines := make([]receiptLine, 0, len(req.Quote.Lines))
	for _, l := range req.Quote.Lines {
		lines = append(lines, receiptLine{Name: l.Name, Amount: l.Amount.Amount})
	}
	return Receipt{
		BookingID:   conf.BookingID,
		RequestID:   req.ID,
		Status:      string(conf.Status),
		PropertyID:  string(req.PropertyID),
		GuestID:     req.GuestID,
		GuestName:   req.Contact.Name,
		GuestEmail:  req.Contact.Email,
		CheckIn:     daterange.Key(req.Range.CheckIn),
		CheckOut:    daterange.Key(req.Range.CheckOut),
		Nights:      req.Quote.Nights,
		Guests:      req.Guests,
		Units:       req.Units,
		Currency:    req.Quote.Total.Currency,
		Lines:       lines,
		Subtotal:    req.Quote.Subtotal.Amount,
		TaxAmount:   req.Quote.TaxAmount.Amount,
		Total:       req.Quote.Total.Amount,
		RequestedAt: req.RequestedAt.UTC(),
	}
}

// ObjectKey is receipts/<property>/<booking>.json with path separators removed
// from both parts.
func ObjectKey(property, booking string) string {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	}
	return fmt.Sprintf("receipts/%s/%s.json", clean(property), clean(booking))
}
