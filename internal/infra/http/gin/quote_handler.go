package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"propertyhub/internal/app/dto"
	pricingapp "propertyhub/internal/app/handlers/pricing"
	"propertyhub/internal/app/queries"
	domainpricing "propertyhub/internal/domain/pricing"
)

type QuoteHandler struct {
	Queries queries.Bus
}

type surchargeRequest struct {
	Name     string          `json:"name"`
	PerNight decimal.Decimal `json:"per_night"`
	Quantity int             `json:"quantity"`
}

type termsRequest struct {
	RatePerNight decimal.Decimal    `json:"rate_per_night"`
	Units        int                `json:"units" binding:"omitempty,min=0"`
	TaxPercent   *decimal.Decimal   `json:"tax_percent"`
	Surcharges   []surchargeRequest `json:"surcharges"`
}

func (t termsRequest) terms() pricingapp.Terms {
	out := pricingapp.Terms{RatePerNight: t.RatePerNight, Units: t.Units, TaxPercent: t.TaxPercent}
	for _, s := range t.Surcharges {
		out.Surcharges = append(out.Surcharges, domainpricing.Surcharge{Name: s.Name, PerNight: s.PerNight, Quantity: s.Quantity})
	}
	return out
}

type quoteRequest struct {
	rangeRequest
	termsRequest
}

// Quote serves POST /properties/:id/quote.
func (h QuoteHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dr, err := req.parse()
	if err != nil {
		respondError(c, err)
		return
	}
	query := pricingapp.GetQuoteQuery{PropertyID: c.Param("id"), Range: dr, Terms: req.terms()}
	result, err := queries.Ask[pricingapp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ QuoteHTTP = QuoteHandler{}
