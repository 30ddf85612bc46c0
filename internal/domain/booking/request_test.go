package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

func validRequest() Request {
	return Request{
		ID:         "req-1",
		PropertyID: "p-1",
		GuestID:    "u-1",
		Range:      daterange.DateRange{CheckIn: day(2025, 3, 3), CheckOut: day(2025, 3, 5)},
		Guests:     2,
		Units:      1,
		Contact:    Contact{Name: "Asha Rao", Email: "asha@example.com", Phone: "+91 98765-43210"},
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{name: "valid", mutate: func(*Request) {}},
		{name: "no property", mutate: func(r *Request) { r.PropertyID = "" }, want: availability.ErrPropertyRequired},
		{name: "no guest", mutate: func(r *Request) { r.GuestID = "" }, want: ErrGuestRequired},
		{name: "no guests", mutate: func(r *Request) { r.Guests = 0 }, want: ErrInvalidGuests},
		{name: "inverted range", mutate: func(r *Request) { r.Range.CheckOut = r.Range.CheckIn }, want: daterange.ErrInvalidRange},
		{name: "blank name", mutate: func(r *Request) { r.Contact.Name = "  " }, want: ErrNameRequired},
		{name: "email without at", mutate: func(r *Request) { r.Contact.Email = "asha.example.com" }, want: ErrInvalidEmail},
		{name: "short phone", mutate: func(r *Request) { r.Contact.Phone = "12345" }, want: ErrInvalidPhone},
		{name: "letters in phone", mutate: func(r *Request) { r.Contact.Phone = "98765abc10" }, want: ErrInvalidPhone},
		{name: "huge special requests", mutate: func(r *Request) { r.SpecialRequests = string(make([]byte, 1001)) }, want: ErrRequestTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			err := req.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
