package booking

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/pricing"
	"propertyhub/internal/domain/shared/daterange"
)

var (
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrNameRequired    = errors.New("booking: contact name required")
	ErrInvalidEmail    = errors.New("booking: contact email is invalid")
	ErrInvalidPhone    = errors.New("booking: contact phone must have 7 to 15 digits")
	ErrRequestTooLarge = errors.New("booking: special requests too long")
)

const maxSpecialRequests = 1000

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Contact is how the host reaches the guest.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Validate applies the guest-details step of the booking form.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(c.Email))
	if err != nil || !strings.Contains(addr.Address, "@") {
		return ErrInvalidEmail
	}
	digits := 0
	for _, r := range c.Phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return ErrInvalidPhone
		}
	}
	if digits < 7 || digits > 15 {
		return ErrInvalidPhone
	}
	return nil
}

// Request is what the booking service receives to create a reservation. The
// price is the client-side quote; the service may reprice.
type Request struct {
	ID              string
	PropertyID      availability.PropertyID
	GuestID         string
	Range           daterange.DateRange
	Guests          int
	Units           int
	Contact         Contact
	SpecialRequests string
	Quote           pricing.Result
	RequestedAt     time.Time
}

func (r Request) Validate() error {
	if r.PropertyID == "" {
		return availability.ErrPropertyRequired
	}
	if r.GuestID == "" {
		return ErrGuestRequired
	}
	if r.Guests <= 0 {
		return ErrInvalidGuests
	}
	if err := r.Range.Validate(); err != nil {
		return err
	}
	if len(r.SpecialRequests) > maxSpecialRequests {
		return ErrRequestTooLarge
	}
	return r.Contact.Validate()
}

// Confirmation is the booking service's acknowledgement.
type Confirmation struct {
	BookingID string
	Status    Status
}
