package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"propertyhub/internal/app/policies"
	domainavailability "propertyhub/internal/domain/availability"
	domainbooking "propertyhub/internal/domain/booking"
	"propertyhub/internal/domain/shared/daterange"
)

var (
	_ policies.BookingCreator = (*Client)(nil)
	_ policies.IntervalSource = (*Client)(nil)
)

// Client talks to the booking service that owns reservations. It serves both
// the booked-dates read side and booking creation.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
	Logger  *slog.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Logger:  logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type availableResponse struct {
	BookedDates []string `json:"bookedDates"`
}

type createRequest struct {
	BookingID       string `json:"bookingId"`
	PropertyID      string `json:"propertyId"`
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	UserEmail       string `json:"userEmail"`
	UserPhone       string `json:"userPhone,omitempty"`
	CheckInDate     string `json:"checkInDate"`
	CheckOutDate    string `json:"checkOutDate"`
	NumberOfGuests  int    `json:"numberOfGuests"`
	Units           int    `json:"units"`
	Subtotal        string `json:"subtotal"`
	TaxAmount       string `json:"taxAmount"`
	TotalAmount     string `json:"totalAmount"`
	Currency        string `json:"currency"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

type createResponse struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
	Status  string `json:"status"`
}

type conflictResponse struct {
	Message          string   `json:"message"`
	ConflictingDates []string `json:"conflictingDates"`
}

// BookedIntervals fetches the booked dates of a property and folds runs of
// consecutive dates into intervals.
func (c *Client) BookedIntervals(ctx context.Context, q domainavailability.Query) ([]domainavailability.BookedInterval, error) {
	endpoint := fmt.Sprintf("%s/api/bookings/property/%s/available", c.BaseURL, url.PathEscape(string(q.PropertyID)))
	params := url.Values{}
	params.Set("startDate", daterange.Key(q.Horizon.CheckIn))
	params.Set("endDate", daterange.Key(q.Horizon.CheckOut))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var payload availableResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return foldDates(payload.BookedDates)
}

// CreateBooking posts the request. A 409 answer becomes a ConflictError.
func (c *Client) CreateBooking(ctx context.Context, in domainbooking.Request) (domainbooking.Confirmation, error) {
	body, err := json.Marshal(createRequest{
		BookingID:       in.ID,
		PropertyID:      string(in.PropertyID),
		UserID:          in.GuestID,
		UserName:        in.Contact.Name,
		UserEmail:       in.Contact.Email,
		UserPhone:       in.Contact.Phone,
		CheckInDate:     daterange.Key(in.Range.CheckIn),
		CheckOutDate:    daterange.Key(in.Range.CheckOut),
		NumberOfGuests:  in.Guests,
		Units:           in.Units,
		Subtotal:        in.Quote.Subtotal.Amount.String(),
		TaxAmount:       in.Quote.TaxAmount.Amount.String(),
		TotalAmount:     in.Quote.Total.Amount.String(),
		Currency:        in.Quote.Total.Currency,
		SpecialRequests: in.SpecialRequests,
	})
	if err != nil {
		return domainbooking.Confirmation{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/bookings/special/create", bytes.NewReader(body))
	if err != nil {
		return domainbooking.Confirmation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if in.ID != "" {
		req.Header.Set("Idempotency-Key", in.ID)
	}

	var created createResponse
	err = c.do(req, &created)
	var conflict *conflictStatus
	if errors.As(err, &conflict) {
		return domainbooking.Confirmation{}, &policies.ConflictError{
			Range:       in.Range,
			ConflictsOn: conflict.body.ConflictingDates,
			Message:     conflict.body.Message,
		}
	}
	if err != nil {
		return domainbooking.Confirmation{}, err
	}

	id := created.ID
	if id == "" {
		id = created.MongoID
	}
	if id == "" {
		return domainbooking.Confirmation{}, fmt.Errorf("%w: response without booking id", policies.ErrUpstreamUnavailable)
	}
	return domainbooking.Confirmation{BookingID: id, Status: mapStatus(created.Status)}, nil
}

type conflictStatus struct {
	body conflictResponse
}

func (e *conflictStatus) Error() string { return "booking service returned 409: " + e.body.Message }

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logError("booking service request failed", req, err)
		return fmt.Errorf("%w: %v", policies.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", policies.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode == http.StatusConflict {
		var body conflictResponse
		_ = json.Unmarshal(raw, &body)
		return &conflictStatus{body: body}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		snippet := raw
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		err := fmt.Errorf("%w: status %d: %s", policies.ErrUpstreamUnavailable, resp.StatusCode, string(snippet))
		c.logError("booking service returned error", req, err)
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", policies.ErrUpstreamUnavailable, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", policies.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (c *Client) logError(msg string, req *http.Request, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "method", req.Method, "path", req.URL.Path, "error", err)
}

// foldDates turns a list of booked calendar dates into intervals, one per run
// of consecutive days. Duplicates are ignored.
func foldDates(values []string) ([]domainavailability.BookedInterval, error) {
	days := make([]time.Time, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		d, err := daterange.ParseDay(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", policies.ErrUpstreamUnavailable, err)
		}
		key := daterange.Key(d)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var out []domainavailability.BookedInterval
	for i := 0; i < len(days); {
		start := days[i]
		end := start.AddDate(0, 0, 1)
		i++
		for i < len(days) && days[i].Equal(end) {
			end = end.AddDate(0, 0, 1)
			i++
		}
		out = append(out, domainavailability.BookedInterval{
			ID:    "remote:" + daterange.Key(start),
			Range: daterange.DateRange{CheckIn: start, CheckOut: end},
		})
	}
	return out, nil
}

func mapStatus(raw string) domainbooking.Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed":
		return domainbooking.StatusConfirmed
	case "cancelled", "canceled":
		return domainbooking.StatusCancelled
	default:
		return domainbooking.StatusPending
	}
}
