package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propertyhub/internal/app/commands"
	"propertyhub/internal/app/dto"
	bookingapp "propertyhub/internal/app/handlers/booking"
	domainbooking "propertyhub/internal/domain/booking"
)

type BookingHandler struct {
	Commands commands.Bus
}

type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type createBookingRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	rangeRequest
	termsRequest
	Guests          int            `json:"guests" binding:"omitempty,min=1"`
	Contact         contactRequest `json:"contact"`
	SpecialRequests string         `json:"special_requests"`
}

// Create serves POST /bookings.
func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dr, err := req.parse()
	if err != nil {
		respondError(c, err)
		return
	}
	contact := domainbooking.Contact(req.Contact)
	if contact.Name == "" {
		contact.Name = user.Name
	}
	if contact.Email == "" {
		contact.Email = user.Email
	}
	idemKey := c.GetHeader("Idempotency-Key")
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       bookingRequestID(user.ID, idemKey),
		PropertyID:      req.PropertyID,
		GuestID:         user.ID,
		CheckIn:         dr.CheckIn,
		CheckOut:        dr.CheckOut,
		Terms:           req.terms(),
		Guests:          req.Guests,
		Contact:         contact,
		SpecialRequests: req.SpecialRequests,
		IdempotencyKeyV: idemKey,
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.BookingConfirmation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// bookingRequestID is stable for a guest and Idempotency-Key pair, so a retry
// reaches the booking service under the same key.
func bookingRequestID(guest, idemKey string) string {
	if idemKey == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(guest+"\n"+idemKey)).String()
}

var _ BookingHTTP = BookingHandler{}
