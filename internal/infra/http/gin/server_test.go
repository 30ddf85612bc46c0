package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyhub/internal/app/commands"
	"propertyhub/internal/app/dto"
	availabilityapp "propertyhub/internal/app/handlers/availability"
	bookingapp "propertyhub/internal/app/handlers/booking"
	pricingapp "propertyhub/internal/app/handlers/pricing"
	"propertyhub/internal/app/middleware"
	"propertyhub/internal/app/outbox"
	"propertyhub/internal/app/queries"
	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
	"propertyhub/internal/domain/shared/money"
	"propertyhub/internal/infra/obs"
	"propertyhub/internal/infra/security"
	"propertyhub/internal/infra/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	router   *gin.Engine
	ledger   *memory.BookingLedger
	events   *recordingPublisher
	verifier *security.TokenVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	ledger := memory.NewBookingLedger(false)
	ledger.Seed("villa-1", domainavailability.BookedInterval{ID: "b-1", Range: daterange.DateRange{CheckIn: day(2025, 4, 1), CheckOut: day(2025, 4, 5)}})
	events := &recordingPublisher{}
	box := &memory.Outbox{Publisher: events}
	checker := &availabilityapp.Checker{Source: ledger, Now: now}
	pricer := pricingapp.Pricer{DefaultTaxPercent: decimal.NewFromInt(18), Currency: money.INR}

	qbus := queries.NewInMemoryBus()
	queries.RegisterHandler[availabilityapp.GetBookedDatesQuery, dto.BookedDates](qbus, &availabilityapp.GetBookedDatesHandler{Checker: checker})
	queries.RegisterHandler[availabilityapp.CheckAvailabilityQuery, dto.AvailabilityDecision](qbus, &availabilityapp.CheckAvailabilityHandler{Checker: checker})
	queries.RegisterHandler[pricingapp.GetQuoteQuery, dto.Quote](qbus, &pricingapp.GetQuoteHandler{Checker: checker, Pricer: pricer})

	cbus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.RequestBookingCommand, *dto.BookingConfirmation](cbus, &bookingapp.RequestBookingHandler{
		Checker: checker, Pricer: pricer, Creator: ledger, Outbox: box, Now: now,
	})
	chained := middleware.ChainCommands(cbus,
		middleware.OutboxFlush(box, nil),
		middleware.Authorization(middleware.GuestAuthorizer{}),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil, now),
	)

	verifier := security.NewTokenVerifier("test-secret", "")
	router := NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Availability:   AvailabilityHandler{Queries: qbus},
		Quote:          QuoteHandler{Queries: qbus},
		Booking:        BookingHandler{Commands: chained},
		AuthMiddleware: AuthMiddleware{Verifier: verifier}.Handle,
	})
	return &testEnv{router: router, ledger: ledger, events: events, verifier: verifier}
}

type recordingPublisher struct {
	names []string
}

func (p *recordingPublisher) PublishRecord(_ context.Context, rec outbox.EventRecord) error {
	p.names = append(p.names, rec.Name)
	return nil
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bearer(t *testing.T) map[string]string {
	t.Helper()
	return e.bearerFor(t, security.Principal{ID: "guest-1", Name: "Asha", Email: "asha@example.com"})
}

func (e *testEnv) bearerFor(t *testing.T, p security.Principal) map[string]string {
	t.Helper()
	token, err := e.verifier.Issue(p, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestBookedDatesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/properties/villa-1/booked-dates?from=2025-03-30&to=2025-04-03", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, []any{"2025-04-01", "2025-04-02"}, body["dates"])

	w = env.do(t, http.MethodGet, "/api/v1/properties/villa-1/booked-dates?from=04/01/2025", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/properties/villa-1/availability", gin.H{"check_in": "2025-04-03", "check_out": "2025-04-06"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["available"])
	assert.Equal(t, "CONFLICT", body["kind"])
	assert.Equal(t, "2025-04-03", body["conflict_date"])

	w = env.do(t, http.MethodPost, "/api/v1/properties/villa-1/availability", gin.H{"check_in": "2025-04-05", "check_out": "2025-04-07"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["available"])

	w = env.do(t, http.MethodPost, "/api/v1/properties/villa-1/availability", gin.H{"check_in": "2025-04-05"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/properties/villa-1/quote", gin.H{
		"check_in": "2025-03-10", "check_out": "2025-03-13", "rate_per_night": 2000, "units": 1,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, map[string]any{"amount": "7080", "currency": "INR"}, body["total"])
	assert.Equal(t, map[string]any{"amount": "1080", "currency": "INR"}, body["tax_amount"])

	w = env.do(t, http.MethodPost, "/api/v1/properties/villa-1/quote", gin.H{
		"check_in": "2025-04-02", "check_out": "2025-04-04", "rate_per_night": 2000,
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/properties/villa-1/quote", gin.H{
		"check_in": "2025-02-10", "check_out": "2025-02-12", "rate_per_night": 2000,
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]any{"kind": "INVALID", "reason": "checkin-in-past"}, decode(t, w)["decision"])

	w = env.do(t, http.MethodPost, "/api/v1/properties/villa-1/quote", gin.H{
		"check_in": "2025-03-10", "check_out": "2025-03-13", "rate_per_night": -5,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func bookingBody() gin.H {
	return gin.H{
		"property_id":    "villa-1",
		"check_in":       "2025-03-10",
		"check_out":      "2025-03-13",
		"rate_per_night": "2000",
		"units":          1,
		"guests":         2,
		"contact":        gin.H{"phone": "+91 98765 43210"},
	}
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/bookings", bookingBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/bookings", bookingBody(), map[string]string{"Authorization": "Bearer junk"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	headers := env.bearer(t)
	headers["Idempotency-Key"] = "req-1"

	w := env.do(t, http.MethodPost, "/api/v1/bookings", bookingBody(), headers)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	first := decode(t, w)
	assert.Equal(t, "pending", first["status"])
	assert.NotEmpty(t, first["booking_id"])

	// Same key replays the stored confirmation.
	w = env.do(t, http.MethodPost, "/api/v1/bookings", bookingBody(), headers)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, first["booking_id"], decode(t, w)["booking_id"])

	// A fresh key for the same nights now conflicts in the advisory check.
	headers["Idempotency-Key"] = "req-2"
	w = env.do(t, http.MethodPost, "/api/v1/bookings", bookingBody(), headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Equal(t, []string{"booking.requested", "availability.conflict_detected"}, env.events.names)
}

func TestCreateBookingKeyIsPerGuest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.bearer(t)
	alice["Idempotency-Key"] = "k1"
	w := env.do(t, http.MethodPost, "/api/v1/bookings", bookingBody(), alice)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	// Another guest reusing the header is processed on its own and hits the
	// nights alice already holds.
	mallory := env.bearerFor(t, security.Principal{ID: "guest-2", Name: "Mal", Email: "mal@example.com"})
	mallory["Idempotency-Key"] = "k1"
	w = env.do(t, http.MethodPost, "/api/v1/bookings", bookingBody(), mallory)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.NotContains(t, decode(t, w), "booking_id")
}

func TestBookingRequestIDIsStablePerGuestAndKey(t *testing.T) {
	assert.Equal(t, bookingRequestID("guest-1", "k1"), bookingRequestID("guest-1", "k1"))
	assert.NotEqual(t, bookingRequestID("guest-1", "k1"), bookingRequestID("guest-2", "k1"))
	assert.NotEqual(t, bookingRequestID("guest-1", ""), bookingRequestID("guest-1", ""))
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)
	body := bookingBody()
	body["contact"] = gin.H{"phone": "12"}
	w := env.do(t, http.MethodPost, "/api/v1/bookings", body, env.bearer(t))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body = bookingBody()
	body["check_out"] = "2025-13-01"
	w = env.do(t, http.MethodPost, "/api/v1/bookings", body, env.bearer(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingRejectsMalformedFieldsAtBinding(t *testing.T) {
	env := newTestEnv(t)

	body := bookingBody()
	body["contact"] = gin.H{"email": "not-an-email", "phone": "+91 98765 43210"}
	w := env.do(t, http.MethodPost, "/api/v1/bookings", body, env.bearer(t))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	body = bookingBody()
	body["guests"] = -2
	w = env.do(t, http.MethodPost, "/api/v1/bookings", body, env.bearer(t))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	body = bookingBody()
	body["units"] = -1
	w = env.do(t, http.MethodPost, "/api/v1/bookings", body, env.bearer(t))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	assert.Empty(t, env.events.names)
}
