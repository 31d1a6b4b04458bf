package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/quartzsec/armora/internal/pricing/domain"
)

type quoteRequest struct {
	PlanID   string `json:"plan_id"`
	Quantity int32  `json:"quantity"`
	Tier     string `json:"tier"`
}

// Quote prices a plan without creating anything. It is the estimate the
// purchase form shows before an order is filed.
func (s *Server) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tier, ok := pricingdomain.ParseTier(strings.TrimSpace(req.Tier))
	if !ok {
		AbortWithError(c, pricingdomain.ErrInvalidTier)
		return
	}

	plan, _, err := s.catalogSvc.GetPlan(c.Request.Context(), strings.TrimSpace(req.PlanID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	planPricing, err := plan.Pricing()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	quote, err := s.pricingSvc.Quote(pricingdomain.QuoteRequest{
		Pricing:  planPricing,
		Quantity: req.Quantity,
		Tier:     tier,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quote})
}
