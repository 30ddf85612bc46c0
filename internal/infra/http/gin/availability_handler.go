package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"propertyhub/internal/app/dto"
	availabilityapp "propertyhub/internal/app/handlers/availability"
	"propertyhub/internal/app/queries"
	"propertyhub/internal/domain/shared/daterange"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

type rangeRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
}

func (r rangeRequest) parse() (daterange.DateRange, error) {
	return daterange.Parse(r.CheckIn, r.CheckOut)
}

// BookedDates serves GET /properties/:id/booked-dates?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h AvailabilityHandler) BookedDates(c *gin.Context) {
	query := availabilityapp.GetBookedDatesQuery{PropertyID: c.Param("id")}
	if raw := c.Query("from"); raw != "" {
		from, err := daterange.ParseDay(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		query.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := daterange.ParseDay(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		query.To = to
	}
	result, err := queries.Ask[availabilityapp.GetBookedDatesQuery, dto.BookedDates](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Check serves POST /properties/:id/availability. Conflicts and invalid
// ranges are answered with 200 and the decision body.
func (h AvailabilityHandler) Check(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dr, err := req.parse()
	if err != nil {
		respondError(c, err)
		return
	}
	query := availabilityapp.CheckAvailabilityQuery{PropertyID: c.Param("id"), Range: dr}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.AvailabilityDecision](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
