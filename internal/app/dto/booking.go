package dto

type BookingConfirmation struct {
	BookingID  string `json:"booking_id"`
	Status     string `json:"status"`
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Quote      Quote  `json:"quote"`
	ReceiptKey string `json:"receipt_key,omitempty"`
}
